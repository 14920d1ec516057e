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

const (
	// DefaultStackSize is the default size in cells of the expression stack.
	DefaultStackSize = 500
	// DefaultFrameDepth is the default maximum call depth.
	DefaultFrameDepth = 64
)

// frame is a call frame. It is pushed by a frame instruction with only mark
// set, then completed by fcall.
type frame struct {
	mark  int // stack pointer when the frame was opened
	ret   int // caller PC
	local int // caller locals
	nloc  int
	call  bool
}

// Instance represents a robot CPU.
type Instance struct {
	PC       int // Program Counter (aka. Instruction Pointer)
	prog     *Program
	ext      []Cell
	stack    []Cell
	sp       int // number of cells in use on the stack, locals included
	local    int // first local of the current call
	nloc     int
	frames   []frame
	fp       int
	insCount int64
	builtins [builtinCount]BuiltinHandler
	yield    bool
	halted   bool
}

// Option interface
type Option func(*Instance) error

// StackSize sets the size of the expression stack. Locals are allocated on this
// stack too. It will not erase the stack, but fails if the current content
// does not fit. The default is DefaultStackSize cells.
func StackSize(size int) Option {
	return func(i *Instance) error {
		if size <= 0 || size < i.sp {
			return errors.Errorf("invalid stack size %d", size)
		}
		t := make([]Cell, size)
		copy(t, i.stack[:i.sp])
		i.stack = t
		return nil
	}
}

// FrameDepth sets the maximum number of nested calls. It fails if the current
// call depth is larger. The default is DefaultFrameDepth.
func FrameDepth(depth int) Option {
	return func(i *Instance) error {
		if depth <= 0 || depth < i.fp {
			return errors.Errorf("invalid frame depth %d", depth)
		}
		t := make([]frame, depth)
		copy(t, i.frames[:i.fp])
		i.frames = t
		return nil
	}
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new CPU instance for the given program and resets it so that
// the next call to Run starts executing main.
//
// Options will be set by calling SetOptions.
func New(prog *Program, opts ...Option) (*Instance, error) {
	if err := prog.Check(0); err != nil {
		return nil, err
	}
	i := &Instance{
		prog:   prog,
		ext:    make([]Cell, prog.ExtCount),
		stack:  make([]Cell, DefaultStackSize),
		frames: make([]frame, DefaultFrameDepth),
	}
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	if n := prog.Funcs[prog.Main].VarCount; n > len(i.stack) {
		return nil, errors.Errorf("main needs %d locals, stack size is %d", n, len(i.stack))
	}
	i.Reset()
	return i, nil
}

// Reset restarts the program at main. The expression and frame stacks are
// cleared but the external variable pool is left untouched.
func (i *Instance) Reset() {
	main := &i.prog.Funcs[i.prog.Main]
	i.fp = 0
	i.local = 0
	i.nloc = main.VarCount
	for n := 0; n < i.nloc; n++ {
		i.stack[n] = 0
	}
	i.sp = i.nloc
	i.PC = main.Entry
	i.yield = false
	i.halted = false
}

// Program returns the program run by this instance.
func (i *Instance) Program() *Program { return i.prog }

// Data returns the stack, locals of all active calls included. Note that value
// changes will be reflected in the instance's stack, but re-slicing will not
// affect it.
func (i *Instance) Data() []Cell {
	return i.stack[:i.sp]
}

// Locals returns the local variables of the current call.
func (i *Instance) Locals() []Cell {
	return i.stack[i.local : i.local+i.nloc]
}

// External returns the external variable pool.
func (i *Instance) External() []Cell {
	return i.ext
}

// Depth returns the number of values on the expression stack of the current
// call, locals excluded.
func (i *Instance) Depth() int {
	return i.sp - i.local - i.nloc
}

// Frames returns the number of frames on the frame stack, pending frames
// included.
func (i *Instance) Frames() int {
	return i.fp
}

// Halted returns true if the program has reached its end, either by executing
// a nop instruction or by returning from main. A halted instance does nothing
// until Reset is called.
func (i *Instance) Halted() bool {
	return i.halted
}

// Yielded returns true if the last call to Run ended because a yielding
// builtin was called.
func (i *Instance) Yielded() bool {
	return i.yield
}

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Push pushes the argument on top of the data stack.
func (i *Instance) Push(v Cell) error {
	if i.sp >= len(i.stack) {
		return &Fault{Kind: StackOverflow, PC: i.PC}
	}
	i.push(v)
	return nil
}

// Pop pops the value on top of the data stack and returns it. Locals cannot be
// popped.
func (i *Instance) Pop() (Cell, error) {
	if i.sp <= i.local+i.nloc {
		return 0, &Fault{Kind: StackUnderflow, PC: i.PC}
	}
	return i.pop(), nil
}
