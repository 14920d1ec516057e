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
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

const (
	imageMagic   = "CROBOTS"
	imageVersion = 1
)

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

type imageInstr struct {
	_       struct{} `cbor:",toarray"`
	Op      Opcode
	K       Cell
	Scope   Scope
	Offset  int16
	Oper    Operator
	Builtin bool
	Index   int16
	Target  int
}

type imageFunc struct {
	_        struct{} `cbor:",toarray"`
	Name     string
	Entry    int
	VarCount int
	ParCount int
}

type image struct {
	Magic    string       `cbor:"1,keyasint"`
	Version  int          `cbor:"2,keyasint"`
	ExtCount int          `cbor:"3,keyasint"`
	Main     int          `cbor:"4,keyasint"`
	Funcs    []imageFunc  `cbor:"5,keyasint"`
	Code     []imageInstr `cbor:"6,keyasint"`
}

// Encode writes the compiled program p to w in canonical CBOR form. Encoding
// the same program twice yields the same bytes.
func Encode(w io.Writer, p *Program) error {
	img := image{
		Magic:    imageMagic,
		Version:  imageVersion,
		ExtCount: p.ExtCount,
		Main:     p.Main,
		Funcs:    make([]imageFunc, len(p.Funcs)),
		Code:     make([]imageInstr, len(p.Code)),
	}
	for n, f := range p.Funcs {
		img.Funcs[n] = imageFunc{Name: f.Name, Entry: f.Entry, VarCount: f.VarCount, ParCount: f.ParCount}
	}
	for n, in := range p.Code {
		img.Code[n] = imageInstr{
			Op:      in.Op,
			K:       in.K,
			Scope:   in.Var.Scope,
			Offset:  in.Var.Offset,
			Oper:    in.Oper,
			Builtin: in.Fn.Builtin,
			Index:   in.Fn.Index,
			Target:  in.Target,
		}
	}
	return errors.Wrap(imageEncMode.NewEncoder(w).Encode(&img), "encode failed")
}

// Decode reads a compiled program from r. Function headers are checked with
// NewFunction, the rest of the program is returned as is.
func Decode(r io.Reader) (*Program, error) {
	var img image
	if err := cbor.NewDecoder(r).Decode(&img); err != nil {
		return nil, errors.Wrap(err, "decode failed")
	}
	if img.Magic != imageMagic {
		return nil, errors.Errorf("not a program image")
	}
	if img.Version != imageVersion {
		return nil, errors.Errorf("unsupported program image version %d", img.Version)
	}
	p := &Program{
		ExtCount: img.ExtCount,
		Main:     img.Main,
		Funcs:    make([]Function, len(img.Funcs)),
		Code:     make([]Instruction, len(img.Code)),
	}
	for n, f := range img.Funcs {
		fn, err := NewFunction(f.Name, f.Entry, f.VarCount, f.ParCount)
		if err != nil {
			return nil, err
		}
		p.Funcs[n] = fn
	}
	for n, in := range img.Code {
		p.Code[n] = Instruction{
			Op:     in.Op,
			K:      in.K,
			Var:    VarRef{Scope: in.Scope, Offset: in.Offset},
			Oper:   in.Oper,
			Fn:     FuncRef{Builtin: in.Builtin, Index: in.Index},
			Target: in.Target,
		}
	}
	return p, nil
}

// Load loads a compiled program from file fileName.
func Load(fileName string) (*Program, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	p, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	return p, nil
}

// Save saves a compiled program to file fileName.
func Save(fileName string, p *Program) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	w := bufio.NewWriter(f)
	defer func() {
		if ferr := w.Flush(); err == nil {
			err = errors.Wrap(ferr, "write failed")
		}
		f.Close()
		// delete file on error
		if err != nil {
			os.Remove(fileName)
		}
	}()
	return Encode(w, p)
}
