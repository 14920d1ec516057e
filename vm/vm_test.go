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

package vm_test

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/db47h/crobots/vm"
	"github.com/pkg/errors"
)

func TestVM_yield(t *testing.T) {
	var got C
	scan := func(i *vm.Instance, args []vm.Cell) (vm.Cell, error) {
		got = append(C(nil), args...)
		return 42, nil
	}
	i := setup(t, "yield", `
	.ext 1
	.func main 0 0
	frame
	const 90
	const 10
	fcall scan
	store x0
	nop
`, vm.BindBuiltin(vm.Scan, scan))
	if err := i.Run(100); err != nil {
		t.Fatalf("%+v", err)
	}
	if !i.Yielded() || i.Halted() {
		t.Fatalf("expected a yield, got halted=%v", i.Halted())
	}
	if !reflect.DeepEqual(got, C{90, 10}) {
		t.Errorf("bad builtin args %v", got)
	}
	assertEqualI(t, "pc", 4, i.PC)
	assertEqualI(t, "depth", 1, i.Depth())
	assertEqualI(t, "frames", 0, i.Frames())
	check(t, "yield", i, C{42})
	assertEqualI(t, "x0", 42, int(i.External()[0]))
	if i.Yielded() {
		t.Error("Yielded should be reset by Run")
	}
}

func TestVM_nonYieldingBuiltin(t *testing.T) {
	calls := 0
	rnd := func(i *vm.Instance, args []vm.Cell) (vm.Cell, error) {
		calls++
		return args[0] - 1, nil
	}
	i := setup(t, "rand", ".func main 0 0 frame const 10 fcall rand frame const 5 fcall rand binop + nop",
		vm.BindBuiltin(vm.Rand, rnd))
	check(t, "rand", i, C{13})
	assertEqualI(t, "calls", 2, calls)
}

func TestVM_builtinError(t *testing.T) {
	boom := errors.New("boom")
	i := setup(t, "error", ".func main 0 0 frame const 1 const 2 fcall drive nop",
		vm.BindBuiltin(vm.Drive, func(*vm.Instance, []vm.Cell) (vm.Cell, error) { return 0, boom }))
	err := i.Run(100)
	if errors.Cause(err) != boom {
		t.Errorf("expected handler error, got %v", err)
	}
	if vm.IsFault(err) {
		t.Error("handler errors are not faults")
	}
}

func TestVM_budget(t *testing.T) {
	i := setup(t, "budget", ".func main 0 0 :l const 0 branch l")
	for n := 1; n <= 3; n++ {
		if err := i.Run(10); err != nil {
			t.Fatalf("%+v", err)
		}
		assertEqualI(t, "InstructionCount", n*10, int(i.InstructionCount()))
	}
	if i.Halted() || i.Yielded() {
		t.Error("an infinite loop should neither halt nor yield")
	}
	assertEqualI(t, "pc", 0, i.PC)
}

func TestVM_halted(t *testing.T) {
	i := setup(t, "halted", ".func main 0 0 const 1 nop")
	check(t, "halted", i, C{1})
	n := i.InstructionCount()
	if err := i.Run(100); err != nil {
		t.Fatal(err)
	}
	assertEqualI(t, "InstructionCount", int(n), int(i.InstructionCount()))
}

func TestVM_Reset(t *testing.T) {
	i := setup(t, "reset", `
	.ext 1
	.func main 0 1
	const 7 store l0 chop
	const 1 store x0 +=
	frame
	const 1
	const 0
	binop /
`)
	err := i.Run(100)
	if vm.FaultOf(err) != vm.DivideByZero {
		t.Fatalf("expected division by zero, got %v", err)
	}
	assertEqualI(t, "frames", 1, i.Frames())
	i.Reset()
	assertEqualI(t, "pc", 0, i.PC)
	assertEqualI(t, "frames", 0, i.Frames())
	assertEqualI(t, "depth", 0, i.Depth())
	assertEqualI(t, "l0", 0, int(i.Locals()[0]))
	assertEqualI(t, "x0", 1, int(i.External()[0]))
	i.Run(100)
	assertEqualI(t, "x0", 2, int(i.External()[0]))
}

func TestVM_PushPop(t *testing.T) {
	i := setup(t, "pushpop", ".func main 0 2 nop", vm.StackSize(3))
	if _, err := i.Pop(); vm.FaultOf(err) != vm.StackUnderflow {
		t.Errorf("locals should not be popped, got %v", err)
	}
	if err := i.Push(5); err != nil {
		t.Fatal(err)
	}
	if err := i.Push(6); vm.FaultOf(err) != vm.StackOverflow {
		t.Errorf("expected stack overflow, got %v", err)
	}
	v, err := i.Pop()
	if err != nil || v != 5 {
		t.Errorf("expected 5, got %d, %v", v, err)
	}
}

func TestVM_options(t *testing.T) {
	p := assemble(t, "options", ".func main 0 10 nop")
	if _, err := vm.New(p, vm.StackSize(5)); err == nil {
		t.Error("expected an error: main locals do not fit")
	}
	if _, err := vm.New(p, vm.StackSize(0)); err == nil {
		t.Error("expected an error on zero stack size")
	}
	if _, err := vm.New(p, vm.FrameDepth(-1)); err == nil {
		t.Error("expected an error on negative frame depth")
	}
	if _, err := vm.New(p, vm.BindBuiltin(vm.Builtin(100), nil)); err == nil {
		t.Error("expected an error on unknown builtin")
	}
	if _, err := vm.New(nil); err == nil {
		t.Error("expected an error on nil program")
	}
	i, err := vm.New(p)
	if err != nil {
		t.Fatal(err)
	}
	i.Push(1)
	i.Push(2)
	if err = i.SetOptions(vm.StackSize(11)); err == nil {
		t.Error("expected an error when shrinking the stack below its content")
	}
	if err = i.SetOptions(vm.StackSize(12)); err != nil {
		t.Error(err)
	}
	assertEqualI(t, "depth", 2, i.Depth())
}

func TestProgram_Check(t *testing.T) {
	p := assemble(t, "check", ".func main 0 0 const 1 const 2 nop")
	if err := p.Check(3); err != nil {
		t.Error(err)
	}
	if err := p.Check(2); err == nil {
		t.Error("expected program too large")
	}
	p.Main = 3
	if err := p.Check(0); err == nil {
		t.Error("expected invalid main")
	}
	if err := (&vm.Program{Funcs: []vm.Function{{Name: "main"}}}).Check(0); err == nil {
		t.Error("expected empty program")
	}
	assertEqualI(t, "Lookup", -1, p.Lookup("nope"))
}

func TestNewFunction(t *testing.T) {
	if _, err := vm.NewFunction("longname", 0, 0, 0); err == nil {
		t.Error("names longer than 7 bytes must be rejected")
	}
	if _, err := vm.NewFunction("", 0, 0, 0); err == nil {
		t.Error("empty names must be rejected")
	}
	f, err := vm.NewFunction("f", 3, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	assertEqualI(t, "VarCount", 2, f.VarCount)
}

func TestImage(t *testing.T) {
	p := assemble(t, "image", fibRec)
	var b1, b2 bytes.Buffer
	if err := vm.Encode(&b1, p); err != nil {
		t.Fatal(err)
	}
	if err := vm.Encode(&b2, p); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Error("encoding is not deterministic")
	}
	q, err := vm.Decode(&b1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p, q) {
		t.Errorf("decoded program differs:\n%+v\n%+v", p, q)
	}

	fn := filepath.Join(t.TempDir(), "fib.crb")
	if err = vm.Save(fn, p); err != nil {
		t.Fatal(err)
	}
	if q, err = vm.Load(fn); err != nil {
		t.Fatal(err)
	}
	i, err := vm.New(q)
	if err != nil {
		t.Fatal(err)
	}
	check(t, "image", i, C{fibFunc(20)})
}

func TestImage_errors(t *testing.T) {
	if _, err := vm.Decode(bytes.NewReader([]byte{0xff, 0x00})); err == nil {
		t.Error("expected a decoding error")
	}
	if _, err := vm.Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error on missing file")
	}
	fn := filepath.Join(t.TempDir(), "bad", "dir")
	if err := vm.Save(fn, &vm.Program{}); err == nil {
		t.Error("expected an error on invalid path")
	}
}
