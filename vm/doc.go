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

// Package vm implements the robot CPU: a small stack machine executing the
// instruction stream produced by the robot language compiler.
//
// Each robot owns one Instance. An Instance holds the external variable pool
// (robot globals), a bounded expression stack in which the local variables of
// the current call live, and a bounded frame stack used for call/return
// linkage. The instruction set is the one of the original CROBOTS machine:
//
//	op	operand		stack		description
//	------	-------------	-------------	-------------------------------------------------
//	nop			-		end of code: halts the program
//	fetch	var		-n		push the value of a local or external variable
//	store	var, oper	n-n		var = n (or var = var oper n), push the result
//	const	k		-k		push a constant
//	binop	oper		xy-z		z = x oper y
//	frame			-		mark the stack pointer for the next call
//	fcall	func		args-r		call a user function or builtin
//	retsub			r-		return from a user function
//	branch	target		n-		jump to target if n == 0
//	chop			n-		drop TOS
//
// Builtins are bound to an Instance with the BindBuiltin option. A builtin
// marked as yielding (drive, scan and cannon) ends the current Run after its
// result has been pushed, which is how robots hand their actions over to the
// simulation.
//
// Program faults (stack or frame overflow/underflow, invalid variable or
// function references, division by zero, ...) never panic out of Run: they are
// returned as errors whose cause is a *Fault.
package vm
