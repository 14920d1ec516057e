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

// Opcode identifies the kind of an Instruction.
type Opcode uint8

// Robot CPU opcodes.
const (
	OpNop Opcode = iota
	OpFetch
	OpStore
	OpConst
	OpBinop
	OpFcall
	OpRetsub
	OpBranch
	OpChop
	OpFrame
	opCount
)

var opcodes = [...]string{
	"nop",
	"fetch",
	"store",
	"const",
	"binop",
	"fcall",
	"retsub",
	"branch",
	"chop",
	"frame",
}

func (op Opcode) String() string {
	if op < opCount {
		return opcodes[op]
	}
	return "op?"
}

// OpcodeIndex maps mnemonics to opcodes.
var OpcodeIndex = make(map[string]Opcode)

// Operator is the operator of a binop instruction or the assignment operator
// of a store instruction.
type Operator uint8

// Operators. Assign is only valid in store instructions. Neg, Not and Compl are
// unary: they ignore their left operand.
const (
	Assign Operator = iota
	Add
	Sub
	Mul
	Div
	Mod
	Shl
	Shr
	And
	Or
	Xor
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	LAnd
	LOr
	Neg
	Not
	Compl
	operCount
)

var operators = [...]string{
	"=",
	"+",
	"-",
	"*",
	"/",
	"%",
	"<<",
	">>",
	"&",
	"|",
	"^",
	"<",
	">",
	"<=",
	">=",
	"==",
	"!=",
	"&&",
	"||",
	"neg",
	"!",
	"~",
}

func (o Operator) String() string {
	if o < operCount {
		return operators[o]
	}
	return "oper?"
}

// Valid returns true if o is a known operator.
func (o Operator) Valid() bool { return o < operCount }

// OperatorIndex maps operator symbols to operators.
var OperatorIndex = make(map[string]Operator)

func init() {
	for i, v := range opcodes {
		OpcodeIndex[v] = Opcode(i)
	}
	for i, v := range operators {
		OperatorIndex[v] = Operator(i)
	}
}

// apply computes x o y. The ok result is false on division by zero or if o is
// not a binary operator.
func (o Operator) apply(x, y Cell) (r Cell, ok bool) {
	switch o {
	case Add:
		return x + y, true
	case Sub:
		return x - y, true
	case Mul:
		return x * y, true
	case Div:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case Mod:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case Shl:
		return x << uint(y&31), true
	case Shr:
		return x >> uint(y&31), true
	case And:
		return x & y, true
	case Or:
		return x | y, true
	case Xor:
		return x ^ y, true
	case Lt:
		return truth(x < y), true
	case Gt:
		return truth(x > y), true
	case Le:
		return truth(x <= y), true
	case Ge:
		return truth(x >= y), true
	case Eq:
		return truth(x == y), true
	case Ne:
		return truth(x != y), true
	case LAnd:
		return truth(x != 0 && y != 0), true
	case LOr:
		return truth(x != 0 || y != 0), true
	case Neg:
		return -y, true
	case Not:
		return truth(y == 0), true
	case Compl:
		return ^y, true
	}
	return 0, false
}

func truth(b bool) Cell {
	if b {
		return 1
	}
	return 0
}
