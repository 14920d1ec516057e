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
	"bytes"
	"fmt"
	"io"

	"github.com/db47h/crobots/arena"
	"github.com/db47h/crobots/config"
	"github.com/db47h/crobots/internal/iox"
)

// Render writes a text rendition of snapshot s to w: a summary of the active
// robots and of the actions taken since cycle from, followed by a bordered
// grid of cfg.GridSize cells per side where robots are drawn as their 1-based
// id and missiles as '*'. The grid's Y axis points up.
func Render(w io.Writer, s *arena.Snapshot, from int64, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	ew := iox.NewErrWriter(w)
	fmt.Fprintf(ew, "CYCLE %d | Interval %d-%d\n\n", s.Cycle, from, s.Cycle)
	for _, r := range s.Robots {
		if r.Status != arena.Active {
			continue
		}
		fmt.Fprintf(ew, "[%d] %-12s dmg=%d  spd=%3d  hdg=%3d  (%d,%d)\n", r.ID+1, r.Name, r.Damage, r.Speed, r.Heading, r.X, r.Y)
	}
	sep := "\nActions: "
	for id, acts := range s.Actions {
		for _, a := range acts {
			fmt.Fprintf(ew, "%s[%d] %s(%d,%d)", sep, id+1, a.Kind, a.Heading, a.Param)
			sep = "  "
		}
	}
	if sep == "  " {
		io.WriteString(ew, "\n")
	}
	io.WriteString(ew, "\n")
	ew.Write(Grid(s, cfg.GridSize, cfg.FieldSize))
	io.WriteString(ew, "\n")
	return ew.Err
}

// Grid returns the bordered battlefield grid of s, size cells per side, for a
// field of fieldSize meters.
func Grid(s *arena.Snapshot, size, fieldSize int) []byte {
	cells := bytes.Repeat([]byte{' '}, size*size)
	cell := func(x, y int) int {
		gx, gy := x*size/fieldSize, y*size/fieldSize
		if x < 0 || y < 0 || gx >= size || gy >= size {
			return -1
		}
		return (size-1-gy)*size + gx
	}
	for _, r := range s.Robots {
		if r.Status != arena.Active {
			continue
		}
		if c := cell(r.X, r.Y); c >= 0 {
			cells[c] = byte('1' + r.ID)
		}
	}
	for _, m := range s.Missiles {
		if c := cell(m.X, m.Y); c >= 0 && cells[c] == ' ' {
			cells[c] = '*'
		}
	}

	border := append(append([]byte{'+'}, bytes.Repeat([]byte{'-'}, size)...), '+', '\n')
	b := make([]byte, 0, (size+3)*(size+2))
	b = append(b, border...)
	for row := 0; row < size; row++ {
		b = append(b, '|')
		b = append(b, cells[row*size:(row+1)*size]...)
		b = append(b, '|', '\n')
	}
	return append(b, border...)
}
