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

// FaultKind classifies program faults.
type FaultKind uint8

// Program fault kinds.
const (
	StackOverflow FaultKind = iota + 1
	StackUnderflow
	FrameOverflow
	FrameUnderflow
	BadVariable
	BadFunction
	BadAddress
	DivideByZero
	BadOpcode
)

var faultNames = [...]string{
	"",
	"stack overflow",
	"stack underflow",
	"frame overflow",
	"frame underflow",
	"invalid variable",
	"invalid function",
	"invalid address",
	"division by zero",
	"invalid opcode",
}

func (k FaultKind) String() string {
	if int(k) < len(faultNames) && k > 0 {
		return faultNames[k]
	}
	return "fault " + strconv.Itoa(int(k))
}

// Fault is a run-time violation confined to a single program.
type Fault struct {
	Kind FaultKind
	PC   int
}

func (f *Fault) Error() string {
	return f.Kind.String() + " @pc=" + strconv.Itoa(f.PC)
}

// IsFault returns true if the cause of err is a *Fault.
func IsFault(err error) bool {
	_, ok := errors.Cause(err).(*Fault)
	return ok
}

// FaultOf returns the kind of the fault that caused err, or 0 if err was not
// caused by a fault.
func FaultOf(err error) FaultKind {
	if f, ok := errors.Cause(err).(*Fault); ok {
		return f.Kind
	}
	return 0
}
