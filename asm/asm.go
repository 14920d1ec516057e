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
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/db47h/crobots/internal/iox"
	"github.com/db47h/crobots/vm"
)

// Error is an assembly error.
type Error struct {
	Pos scanner.Position
	Msg string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// ErrAsm lists the errors found while assembling a program.
type ErrAsm []Error

func (e ErrAsm) Error() string {
	var b strings.Builder
	for i := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e[i].Error())
	}
	return b.String()
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting program and error if any.
//
// The name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value that
// will contain up to 10 entries.
func Assemble(name string, r io.Reader) (*vm.Program, error) {
	return newParser().Parse(name, r)
}

// Disassemble writes a disassembly of the instruction at position pc to the
// specified io.Writer and returns the position of the next instruction and any
// write error.
func Disassemble(p *vm.Program, pc int, w io.Writer) (next int, err error) {
	ew := iox.NewErrWriter(w)
	in := &p.Code[pc]
	io.WriteString(ew, in.Op.String())
	switch in.Op {
	case vm.OpConst:
		io.WriteString(ew, " "+strconv.Itoa(int(in.K)))
	case vm.OpFetch:
		io.WriteString(ew, " "+in.Var.String())
	case vm.OpStore:
		io.WriteString(ew, " "+in.Var.String())
		if in.Oper != vm.Assign {
			io.WriteString(ew, " "+in.Oper.String()+"=")
		}
	case vm.OpBinop:
		io.WriteString(ew, " "+in.Oper.String())
	case vm.OpFcall:
		switch {
		case in.Fn.Builtin:
			io.WriteString(ew, " "+vm.Builtin(in.Fn.Index).String())
		case in.Fn.Index >= 0 && int(in.Fn.Index) < len(p.Funcs):
			io.WriteString(ew, " "+p.Funcs[in.Fn.Index].Name)
		default:
			io.WriteString(ew, " ???")
		}
	case vm.OpBranch:
		io.WriteString(ew, " "+strconv.Itoa(in.Target))
	}
	return pc + 1, ew.Err
}

// DisassembleAll writes a disassembly of the whole program to the specified
// io.Writer, with function headers written as .func directives. It will return
// any write error.
func DisassembleAll(p *vm.Program, w io.Writer) error {
	ew := iox.NewErrWriter(w)
	if p.ExtCount > 0 {
		fmt.Fprintf(ew, ".ext %d\n", p.ExtCount)
	}
	for pc := 0; pc < len(p.Code); {
		for _, f := range p.Funcs {
			if f.Entry == pc {
				fmt.Fprintf(ew, ".func %s %d %d\n", f.Name, f.ParCount, f.VarCount)
			}
		}
		fmt.Fprintf(ew, "% 10d\t", pc)
		pc, _ = Disassemble(p, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
