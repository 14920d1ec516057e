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

package vm

import "github.com/pkg/errors"

func (i *Instance) fault(k FaultKind) {
	panic(&Fault{Kind: k, PC: i.PC})
}

func (i *Instance) push(v Cell) {
	if i.sp >= len(i.stack) {
		i.fault(StackOverflow)
	}
	i.stack[i.sp] = v
	i.sp++
}

func (i *Instance) pop() Cell {
	if i.sp <= i.local+i.nloc {
		i.fault(StackUnderflow)
	}
	i.sp--
	return i.stack[i.sp]
}

// variable returns a pointer to the variable addressed by v.
func (i *Instance) variable(v VarRef) *Cell {
	n := int(v.Offset)
	switch v.Scope {
	case External:
		if n >= 0 && n < len(i.ext) {
			return &i.ext[n]
		}
	case Local:
		if n >= 0 && n < i.nloc {
			return &i.stack[i.local+n]
		}
	}
	i.fault(BadVariable)
	return nil
}

func (i *Instance) jump(target int) {
	if target < 0 || target >= len(i.prog.Code) {
		i.fault(BadAddress)
	}
	i.PC = target
}

// call enters user function n. The pending frame on top of the frame stack
// becomes a call frame.
func (i *Instance) call(n int) {
	if n < 0 || n >= len(i.prog.Funcs) {
		i.fault(BadFunction)
	}
	f := &i.prog.Funcs[n]
	if i.fp == 0 || i.frames[i.fp-1].call {
		i.fault(FrameUnderflow)
	}
	fr := &i.frames[i.fp-1]
	base := i.sp - f.ParCount
	if base < fr.mark {
		i.fault(StackUnderflow)
	}
	if base+f.VarCount > len(i.stack) {
		i.fault(StackOverflow)
	}
	for n := i.sp; n < base+f.VarCount; n++ {
		i.stack[n] = 0
	}
	fr.ret, fr.local, fr.nloc, fr.call = i.PC, i.local, i.nloc, true
	i.sp = base + f.VarCount
	i.local, i.nloc = base, f.VarCount
	i.jump(f.Entry)
}

// callBuiltin runs builtin b with the arguments above the pending frame mark.
func (i *Instance) callBuiltin(b Builtin) error {
	if !b.Valid() || i.builtins[b] == nil {
		i.fault(BadFunction)
	}
	if i.fp == 0 || i.frames[i.fp-1].call {
		i.fault(FrameUnderflow)
	}
	mark := i.frames[i.fp-1].mark
	if i.sp-b.Arity() < mark {
		i.fault(StackUnderflow)
	}
	v, err := i.builtins[b](i, i.stack[i.sp-b.Arity():i.sp])
	if err != nil {
		return err
	}
	i.fp--
	i.sp = mark
	i.push(v)
	i.yield = b.Yields()
	return nil
}

func (i *Instance) ret() {
	v := i.pop()
	if i.fp == 0 {
		// return from main
		i.halted = true
		return
	}
	fr := &i.frames[i.fp-1]
	if !fr.call {
		i.fault(FrameUnderflow)
	}
	i.fp--
	i.sp = fr.mark
	i.local, i.nloc = fr.local, fr.nloc
	i.PC = fr.ret + 1
	i.push(v)
}

// Run executes at most budget instructions. It returns early if the program
// halts or after a yielding builtin has been executed; Yielded and Halted
// tell which.
//
// If an error occurs, the PC will point to the instruction that triggered the
// error. Program faults are returned as errors with a *Fault cause. The
// instance should be Reset before being run again after a fault.
func (i *Instance) Run(budget int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case *Fault:
				err = errors.WithStack(e)
			case error:
				err = errors.Wrapf(&Fault{Kind: BadAddress, PC: i.PC}, "recovered error @pc=%d/%d, stack %d/%d, frames %d/%d: %v",
					i.PC, len(i.prog.Code), i.sp, len(i.stack), i.fp, len(i.frames), e)
			default:
				panic(e)
			}
		}
	}()
	i.yield = false
	code := i.prog.Code
	for n := 0; n < budget && !i.halted; n++ {
		if i.PC < 0 || i.PC >= len(code) {
			i.fault(BadAddress)
		}
		in := &code[i.PC]
		i.insCount++
		switch in.Op {
		case OpNop:
			i.halted = true
		case OpFetch:
			i.push(*i.variable(in.Var))
			i.PC++
		case OpStore:
			v := i.pop()
			p := i.variable(in.Var)
			if in.Oper != Assign {
				i.checkOper(in.Oper)
				r, ok := in.Oper.apply(*p, v)
				if !ok {
					i.fault(DivideByZero)
				}
				v = r
			}
			*p = v
			i.push(v)
			i.PC++
		case OpConst:
			i.push(in.K)
			i.PC++
		case OpBinop:
			i.checkOper(in.Oper)
			rhs := i.pop()
			lhs := i.pop()
			r, ok := in.Oper.apply(lhs, rhs)
			if !ok {
				i.fault(DivideByZero)
			}
			i.push(r)
			i.PC++
		case OpFcall:
			if in.Fn.Builtin {
				if err = i.callBuiltin(Builtin(in.Fn.Index)); err != nil {
					return err
				}
				i.PC++
				if i.yield {
					return nil
				}
			} else {
				i.call(int(in.Fn.Index))
			}
		case OpRetsub:
			i.ret()
		case OpBranch:
			if i.pop() == 0 {
				i.jump(in.Target)
			} else {
				i.PC++
			}
		case OpChop:
			i.pop()
			i.PC++
		case OpFrame:
			if i.fp >= len(i.frames) {
				i.fault(FrameOverflow)
			}
			i.frames[i.fp] = frame{mark: i.sp}
			i.fp++
			i.PC++
		default:
			i.fault(BadOpcode)
		}
	}
	return nil
}

func (i *Instance) checkOper(o Operator) {
	if o == Assign || !o.Valid() {
		i.fault(BadOpcode)
	}
}
