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

package main

import (
	"fmt"
	"io"

	"github.com/db47h/crobots/arena"
	"github.com/db47h/crobots/internal/iox"
	"github.com/db47h/crobots/telemetry"
)

// dumpRobots dumps the CPU of every robot in a to w, along with its last
// program fault.
func dumpRobots(w io.Writer, a *arena.Arena) error {
	ew := iox.NewErrWriter(w)
	s := a.Snapshot()
	for i, r := range s.Robots {
		fmt.Fprintf(ew, "robot %d (%s) %v, %d faults, %d turns\n", i+1, r.Name, r.Status, r.Faults, a.Turns(i))
		if err := a.LastFault(i); err != nil {
			fmt.Fprintf(ew, "last fault: %v\n", err)
		}
		telemetry.DumpCPU(ew, a.CPU(i))
	}
	return ew.Err
}
