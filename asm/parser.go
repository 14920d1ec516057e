// This file is part of crobots - https://github.com/db47h/crobots
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/db47h/crobots/vm"
)

const maxErrors = 10

func isIdentRune(ch rune, i int) bool {
	return unicode.IsLetter(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch) || unicode.IsDigit(ch)
}

type labelSite struct {
	pos     scanner.Position
	address int
}

// fixup is an instruction operand that names something defined later.
type fixup struct {
	pos  scanner.Position
	pc   int
	name string
}

type parser struct {
	s        scanner.Scanner
	name     string
	code     []vm.Instruction
	funcs    []vm.Function
	funcPos  map[string]scanner.Position
	labels   map[string]labelSite
	consts   map[string]vm.Cell
	branches []fixup
	calls    []fixup
	ext      int
	extPos   scanner.Position
	errs     ErrAsm

	// one token lookahead
	back    bool
	tok     string
	tokPos  scanner.Position
	tokDone bool
}

func newParser() *parser {
	return &parser{
		funcPos: make(map[string]scanner.Position),
		labels:  make(map[string]labelSite),
		consts:  make(map[string]vm.Cell),
	}
}

func (p *parser) error(pos scanner.Position, msg string) {
	if !pos.IsValid() {
		pos.Filename = p.name
	}
	if len(p.errs) < maxErrors {
		p.errs = append(p.errs, Error{Pos: pos, Msg: msg})
	}
}

// next returns the next token, skipping comments. ok is false at EOF.
func (p *parser) next() (tok string, pos scanner.Position, ok bool) {
	if p.back {
		p.back = false
		return p.tok, p.tokPos, !p.tokDone
	}
	for {
		t := p.s.Scan()
		if t == scanner.EOF {
			p.tok, p.tokPos, p.tokDone = "", p.s.Pos(), true
			return "", p.tokPos, false
		}
		tok, pos = p.s.TokenText(), p.s.Position
		if t != scanner.Ident {
			p.error(pos, "unexpected character "+strconv.Quote(tok))
			continue
		}
		if tok == "(" {
			p.skipComment(pos)
			continue
		}
		p.tok, p.tokPos, p.tokDone = tok, pos, false
		return tok, pos, true
	}
}

func (p *parser) unread() { p.back = true }

func (p *parser) skipComment(start scanner.Position) {
	for {
		t := p.s.Scan()
		if t == scanner.EOF {
			p.error(start, "unterminated comment")
			return
		}
		if t == scanner.Ident && p.s.TokenText() == ")" {
			return
		}
	}
}

// arg returns the argument of the directive or instruction what.
func (p *parser) arg(what string) (string, scanner.Position, bool) {
	tok, pos, ok := p.next()
	if !ok {
		p.error(pos, what+": missing argument")
		return "", pos, false
	}
	if tok[0] == ':' || tok[0] == '.' {
		p.error(pos, what+": unexpected "+tok+" as argument")
		return "", pos, false
	}
	return tok, pos, true
}

// number converts an integer literal, char literal or constant name.
func (p *parser) number(s string) (vm.Cell, bool) {
	if n, err := strconv.ParseInt(s, 0, 32); err == nil {
		return vm.Cell(n), true
	}
	if len(s) > 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		r, _, tail, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
		if err == nil && tail == "" {
			return vm.Cell(r), true
		}
	}
	v, ok := p.consts[s]
	return v, ok
}

func (p *parser) intArg(what string) (int, bool) {
	s, pos, ok := p.arg(what)
	if !ok {
		return 0, false
	}
	v, ok := p.number(s)
	if !ok {
		p.error(pos, what+": expected integer, got "+s)
	}
	return int(v), ok
}

func parseVar(s string) (vm.VarRef, bool) {
	if len(s) < 2 {
		return vm.VarRef{}, false
	}
	var scope vm.Scope
	switch s[0] {
	case 'l':
		scope = vm.Local
	case 'x':
		scope = vm.External
	default:
		return vm.VarRef{}, false
	}
	n, err := strconv.ParseInt(s[1:], 10, 16)
	if err != nil || n < 0 {
		return vm.VarRef{}, false
	}
	return vm.VarRef{Scope: scope, Offset: int16(n)}, true
}

// assignOper parses an assignment operator: = += -= *= /= %= <<= >>= &= |= ^=
func assignOper(s string) (vm.Operator, bool) {
	if s == "=" {
		return vm.Assign, true
	}
	if len(s) < 2 || !strings.HasSuffix(s, "=") {
		return 0, false
	}
	o, ok := vm.OperatorIndex[s[:len(s)-1]]
	if !ok || o < vm.Add || o > vm.Xor {
		return 0, false
	}
	return o, true
}

func (p *parser) emit(in vm.Instruction, pos scanner.Position) {
	if len(p.funcs) == 0 {
		p.error(pos, "instruction outside of a function")
	}
	p.code = append(p.code, in)
}

func (p *parser) defineLabel(s string, pos scanner.Position) {
	n := s[1:]
	if len(n) == 0 {
		p.error(pos, "empty label name")
		return
	}
	if l, ok := p.labels[n]; ok {
		p.error(pos, "label redefinition: "+n+", previous definition here: "+l.pos.String())
		return
	}
	p.labels[n] = labelSite{pos, len(p.code)}
}

func (p *parser) directive(s string, pos scanner.Position) {
	switch s {
	case ".ext":
		n, ok := p.intArg(s)
		if !ok {
			return
		}
		if p.extPos.IsValid() {
			p.error(pos, ".ext: redefinition, previous definition here: "+p.extPos.String())
			return
		}
		if n < 0 {
			p.error(pos, ".ext: negative pool size")
			return
		}
		p.ext, p.extPos = n, pos
	case ".func":
		name, npos, ok := p.arg(s)
		if !ok {
			return
		}
		par, ok := p.intArg(s)
		if !ok {
			return
		}
		vars, ok := p.intArg(s)
		if !ok {
			return
		}
		if _, ok := vm.BuiltinIndex[name]; ok {
			p.error(npos, ".func: "+name+" is a builtin")
			return
		}
		if prev, ok := p.funcPos[name]; ok {
			p.error(npos, ".func: redefinition of "+name+", previous definition here: "+prev.String())
			return
		}
		f, err := vm.NewFunction(name, len(p.code), vars, par)
		if err != nil {
			p.error(npos, err.Error())
			return
		}
		p.funcPos[name] = npos
		p.funcs = append(p.funcs, f)
	case ".equ":
		name, npos, ok := p.arg(s)
		if !ok {
			return
		}
		v, ok := p.intArg(s)
		if !ok {
			return
		}
		if _, ok := p.consts[name]; ok {
			p.error(npos, ".equ: redefinition of "+name)
			return
		}
		p.consts[name] = vm.Cell(v)
	default:
		p.error(pos, "unknown directive: "+s)
	}
}

func (p *parser) instruction(s string, pos scanner.Position) {
	op, ok := vm.OpcodeIndex[s]
	if !ok {
		p.error(pos, "unknown instruction: "+s)
		return
	}
	in := vm.Instruction{Op: op}
	switch op {
	case vm.OpConst:
		a, apos, ok := p.arg(s)
		if !ok {
			return
		}
		k, ok := p.number(a)
		if !ok {
			p.error(apos, "const: expected integer, got "+a)
			return
		}
		in.K = k
	case vm.OpFetch, vm.OpStore:
		a, apos, ok := p.arg(s)
		if !ok {
			return
		}
		if in.Var, ok = parseVar(a); !ok {
			p.error(apos, s+": invalid variable "+a)
			return
		}
		if op == vm.OpStore {
			if t, _, ok := p.next(); ok {
				if o, ok := assignOper(t); ok {
					in.Oper = o
				} else {
					p.unread()
				}
			}
		}
	case vm.OpBinop:
		a, apos, ok := p.arg(s)
		if !ok {
			return
		}
		o, ok := vm.OperatorIndex[a]
		if !ok || o == vm.Assign {
			p.error(apos, "binop: invalid operator "+a)
			return
		}
		in.Oper = o
	case vm.OpFcall:
		a, apos, ok := p.arg(s)
		if !ok {
			return
		}
		if b, ok := vm.BuiltinIndex[a]; ok {
			in.Fn = vm.FuncRef{Builtin: true, Index: int16(b)}
		} else {
			p.calls = append(p.calls, fixup{apos, len(p.code), a})
		}
	case vm.OpBranch:
		a, apos, ok := p.arg(s)
		if !ok {
			return
		}
		if n, err := strconv.ParseInt(a, 0, 32); err == nil {
			in.Target = int(n)
		} else {
			p.branches = append(p.branches, fixup{apos, len(p.code), a})
		}
	}
	p.emit(in, pos)
}

// Parse does the parsing and compiling.
func (p *parser) Parse(name string, r io.Reader) (*vm.Program, error) {
	p.name = name
	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) {
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.error(pos, msg)
	}
	p.s.IsIdentRune = isIdentRune
	p.s.Mode = scanner.ScanIdents
	p.s.Filename = name

	for len(p.errs) < maxErrors {
		tok, pos, ok := p.next()
		if !ok {
			break
		}
		switch tok[0] {
		case ':':
			p.defineLabel(tok, pos)
		case '.':
			p.directive(tok, pos)
		default:
			p.instruction(tok, pos)
		}
	}

	for _, f := range p.branches {
		l, ok := p.labels[f.name]
		if !ok {
			p.error(f.pos, "undefined label "+f.name)
			continue
		}
		p.code[f.pc].Target = l.address
	}
	prog := &vm.Program{Code: p.code, Funcs: p.funcs, ExtCount: p.ext}
	for _, f := range p.calls {
		n := prog.Lookup(f.name)
		if n < 0 {
			p.error(f.pos, "undefined function "+f.name)
			continue
		}
		p.code[f.pc].Fn = vm.FuncRef{Index: int16(n)}
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	if prog.Main = prog.Lookup("main"); prog.Main < 0 {
		p.error(scanner.Position{}, "missing main function")
		return nil, p.errs
	}
	if err := prog.Check(0); err != nil {
		p.error(scanner.Position{}, err.Error())
		return nil, p.errs
	}
	return prog, nil
}
