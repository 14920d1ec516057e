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

import (
	"strconv"

	"github.com/pkg/errors"
)

// Cell is the raw type of values manipulated by robot programs.
type Cell int32

// MaxNameLen is the maximum length in bytes of a function name.
const MaxNameLen = 7

// Scope tells whether a variable reference addresses the external pool or the
// locals of the current call.
type Scope uint8

// Variable scopes.
const (
	Local Scope = iota
	External
)

// VarRef addresses a variable.
type VarRef struct {
	Scope  Scope
	Offset int16
}

func (v VarRef) String() string {
	if v.Scope == External {
		return "x" + strconv.Itoa(int(v.Offset))
	}
	return "l" + strconv.Itoa(int(v.Offset))
}

// FuncRef addresses either a user function in Program.Funcs or a builtin.
type FuncRef struct {
	Builtin bool
	Index   int16
}

// Instruction is a single robot CPU instruction. Which operand is meaningful
// depends on Op:
//
//	OpConst		K
//	OpFetch		Var
//	OpStore		Var, Oper
//	OpBinop		Oper
//	OpFcall		Fn
//	OpBranch	Target
type Instruction struct {
	Op     Opcode
	K      Cell
	Var    VarRef
	Oper   Operator
	Fn     FuncRef
	Target int
}

// Function is a function header.
type Function struct {
	Name     string
	Entry    int // index of the first instruction
	VarCount int // number of locals, parameters included
	ParCount int
}

// NewFunction returns a function header after checking its name and counts.
func NewFunction(name string, entry, varCount, parCount int) (Function, error) {
	if len(name) == 0 || len(name) > MaxNameLen {
		return Function{}, errors.Errorf("invalid function name %q: length must be 1 to %d", name, MaxNameLen)
	}
	if entry < 0 || varCount < 0 || parCount < 0 {
		return Function{}, errors.Errorf("function %s: negative entry point or counts", name)
	}
	if varCount < parCount {
		varCount = parCount
	}
	return Function{Name: name, Entry: entry, VarCount: varCount, ParCount: parCount}, nil
}

// Program is the compiled form of a robot program. It is never modified by the
// VM and can be shared between instances.
type Program struct {
	Code     []Instruction
	Funcs    []Function
	ExtCount int // size of the external variable pool
	Main     int // index of main in Funcs
}

// Check verifies that the program is runnable: it must have a main function
// and fit in maxInstr instructions (0 means no limit). It does not validate
// individual instructions, which are checked at run time.
func (p *Program) Check(maxInstr int) error {
	if p == nil {
		return errors.New("nil program")
	}
	if len(p.Code) == 0 {
		return errors.New("empty program")
	}
	if maxInstr > 0 && len(p.Code) > maxInstr {
		return errors.Errorf("program too large: %d instructions, limit is %d", len(p.Code), maxInstr)
	}
	if p.Main < 0 || p.Main >= len(p.Funcs) {
		return errors.Errorf("invalid main function index %d", p.Main)
	}
	if e := p.Funcs[p.Main].Entry; e >= len(p.Code) {
		return errors.Errorf("main entry point %d out of range", e)
	}
	if p.ExtCount < 0 || p.ExtCount > 0x7fff {
		return errors.Errorf("invalid external pool size %d", p.ExtCount)
	}
	return nil
}

// Lookup returns the index of the named function in p.Funcs or -1.
func (p *Program) Lookup(name string) int {
	for i := range p.Funcs {
		if p.Funcs[i].Name == name {
			return i
		}
	}
	return -1
}
