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

// Package asm provides utility functions to assemble and disassemble robot CPU
// code.
//
// It is mostly used to write test programs and hand tuned robots without going
// through the robot language compiler.
//
// Supported mnemonics:
//
//	asm	argument		example
//	------	-------------------	-----------------
//	nop				nop
//	fetch	variable		fetch l0
//	store	variable [operator]	store x1 +=
//	const	integer			const 42
//	binop	operator		binop <=
//	frame				frame
//	fcall	function or builtin	fcall scan
//	retsub				retsub
//	branch	label or address	branch loop
//	chop				chop
//
// Variables are written lN for the Nth local of the current function
// (parameters come first) and xN for the Nth external variable. The optional
// store operator is one of = += -= *= /= %= <<= >>= &= |= ^=.
//
// The binop operators are the C ones: + - * / % << >> & | ^ < > <= >= == != &&
// ||, plus the unary neg ! and ~ which only use the right operand. The
// compiler pushes a dummy left operand for those.
//
// Comments:
//
// Comments are placed between parentheses, i.e. '(' and ')'. The body of the
// comment must be separated from the enclosing parentheses by a space:
//
//	( this is a valid comment )
//	( this is a
//	  multiline comment )
//
// Literals:
//
// Integer arguments can be Go integer literals (see strconv.ParseInt), Go
// character literals between single quotes, or names defined with .equ.
//
// Labels:
//
// Labels are defined by prefixing them with a colon (:) and are used without
// it as branch targets. Forward references are ok:
//
//	:loop	fetch l0
//		branch done	( exit when l0 == 0 )
//		const 0
//		branch loop
//	:done	nop
//
// Directives:
//
//	.ext <count>
//
// sets the size of the external variable pool.
//
//	.func <name> <params> <vars>
//
// starts a function whose entry point is the next instruction. vars is the
// number of locals, parameters included. Names are at most 7 bytes long and
// every program must have a main function. Functions can be called before
// being defined.
//
//	.equ <name> <value>
//
// defines a constant usable wherever an integer is expected.
package asm
