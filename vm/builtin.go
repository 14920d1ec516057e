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

// Builtin identifies an intrinsic function. The numbering is part of the
// compiled program format: an fcall instruction with a builtin FuncRef uses it
// as its Index.
type Builtin int16

// Robot builtins.
const (
	Scan Builtin = iota
	Cannon
	Drive
	Damage
	Speed
	LocX
	LocY
	Rand
	Sqrt
	Sin
	Cos
	Tan
	Atan
	builtinCount
)

var builtins = [...]struct {
	name  string
	arity int
	yield bool
}{
	{"scan", 2, true},
	{"cannon", 2, true},
	{"drive", 2, true},
	{"damage", 0, false},
	{"speed", 0, false},
	{"loc_x", 0, false},
	{"loc_y", 0, false},
	{"rand", 1, false},
	{"sqrt", 1, false},
	{"sin", 1, false},
	{"cos", 1, false},
	{"tan", 1, false},
	{"atan", 1, false},
}

// BuiltinIndex maps builtin names to their id.
var BuiltinIndex = make(map[string]Builtin)

func init() {
	for i, b := range builtins {
		BuiltinIndex[b.name] = Builtin(i)
	}
}

// Valid returns true if b is a known builtin.
func (b Builtin) Valid() bool { return b >= 0 && b < builtinCount }

func (b Builtin) String() string {
	if b.Valid() {
		return builtins[b].name
	}
	return "builtin?"
}

// Arity returns the number of arguments expected by b.
func (b Builtin) Arity() int {
	if b.Valid() {
		return builtins[b].arity
	}
	return 0
}

// Yields returns true if calling b ends the current Run.
func (b Builtin) Yields() bool {
	return b.Valid() && builtins[b].yield
}

// BuiltinHandler is the function prototype for builtin handlers. args holds
// exactly Arity() values, in call order. The returned value is pushed on the
// stack. A non-nil error aborts Run and is returned as is.
type BuiltinHandler func(i *Instance, args []Cell) (Cell, error)

// BindBuiltin binds the provided handler to the given builtin. Calling an
// unbound builtin raises a BadFunction fault.
func BindBuiltin(b Builtin, h BuiltinHandler) Option {
	return func(i *Instance) error {
		if !b.Valid() {
			return errors.Errorf("unknown builtin %d", b)
		}
		i.builtins[b] = h
		return nil
	}
}
