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

package asm_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/db47h/crobots/asm"
)

func ExampleAssemble() {
	code := `
		.ext 1
		.equ RANGE 700	( a constant definition. Does not generate any code )

		.func main 0 1
:loop	frame
		const 90
		const 10
		fcall scan		( builtins are called like user functions )
		store l0
		chop
		frame
		const 90
		const RANGE
		fcall cannon
		chop
		frame
		const 'A'
		fcall twice		( forward reference )
		store x0 +=
		chop
		const 0
		branch loop		( unconditional branch )

		.func twice 1 1
		fetch l0
		const 2
		binop *
		retsub
`

	p, err := asm.Assemble("raw_string", strings.NewReader(code))
	if err != nil {
		fmt.Println(err)
		return
	}

	asm.DisassembleAll(p, os.Stdout)

	// Output:
	// .ext 1
	// .func main 0 1
	//          0	frame
	//          1	const 90
	//          2	const 10
	//          3	fcall scan
	//          4	store l0
	//          5	chop
	//          6	frame
	//          7	const 90
	//          8	const 700
	//          9	fcall cannon
	//         10	chop
	//         11	frame
	//         12	const 65
	//         13	fcall twice
	//         14	store x0 +=
	//         15	chop
	//         16	const 0
	//         17	branch 0
	// .func twice 1 1
	//         18	fetch l0
	//         19	const 2
	//         20	binop *
	//         21	retsub
}

func ExampleErrAsm() {
	_, err := asm.Assemble("bad.s", strings.NewReader(".func main 0 0\n\tbranch nowhere\n\tfcall nothing\n"))
	for _, e := range err.(asm.ErrAsm) {
		fmt.Println(e.Pos, e.Msg)
	}

	// Output:
	// bad.s:2:9 undefined label nowhere
	// bad.s:3:8 undefined function nothing
}
