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

package telemetry

import (
	"fmt"
	"io"
	"strconv"

	"github.com/db47h/crobots/internal/iox"
	"github.com/db47h/crobots/vm"
)

func dumpSlice(w io.Writer, name string, a []vm.Cell) {
	b := make([]byte, 0, 16)
	b = append(b, name...)
	b = append(b, ':')
	for _, v := range a {
		b = append(b, ' ')
		b = strconv.AppendInt(b, int64(v), 10)
	}
	b = append(b, '\n')
	w.Write(b)
}

// DumpCPU dumps the registers, stack, current locals and external variables
// of a robot CPU to w.
func DumpCPU(w io.Writer, i *vm.Instance) error {
	ew := iox.NewErrWriter(w)
	fmt.Fprintf(ew, "pc: %d frames: %d depth: %d halted: %t instructions: %d\n",
		i.PC, i.Frames(), i.Depth(), i.Halted(), i.InstructionCount())
	dumpSlice(ew, "stack", i.Data())
	dumpSlice(ew, "locals", i.Locals())
	dumpSlice(ew, "external", i.External())
	return ew.Err
}
