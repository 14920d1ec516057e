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

// Package telemetry exports the state of a running match: a plain text
// snapshot log, an ASCII rendition of the battlefield, per-robot rewards and a
// binary CBOR encoding of snapshots.
//
// All functions take arena snapshots as input, so that they can be used as
// arena observers:
//
//	rec := telemetry.NewRecorder(f, cfg)
//	rec.Begin(uuid.New())
//	a, err := arena.New(cfg, entrants, arena.OnInterval(rec.Observe))
package telemetry

import (
	"fmt"
	"io"

	"github.com/db47h/crobots/arena"
	"github.com/db47h/crobots/config"
	"github.com/db47h/crobots/internal/iox"
	"github.com/google/uuid"
)

// Header is the first line of a snapshot log.
const Header = "CROBOTS SNAPSHOT LOG"

// Recorder writes the snapshot log of one or more matches.
//
// Each interval is written as an INTERVAL line with the start and end cycles,
// the ROBOT and MISSILE lines of the state at the start of the interval, the
// ACTION and REWARD lines of the interval, the ROBOT and MISSILE lines of the
// state at the end of the interval and a "---" separator. Robot ids are
// 1-based. The first snapshot of a match only sets the starting state.
//
// Write errors are sticky and reported by Err.
type Recorder struct {
	w       *iox.ErrWriter
	header  bool
	rewards bool
	prev    *arena.Snapshot
}

// NewRecorder returns a new Recorder writing to w. REWARD lines are written
// only if cfg.LogDamage is set. A nil cfg means config.Default().
func NewRecorder(w io.Writer, cfg *config.Config) *Recorder {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Recorder{w: iox.NewErrWriter(w), rewards: cfg.LogDamage}
}

// Begin starts a new match. The log header is written before the first match
// only.
func (r *Recorder) Begin(id uuid.UUID) error {
	if !r.header {
		fmt.Fprintln(r.w, Header)
		r.header = true
	}
	fmt.Fprintf(r.w, "MATCH %s\n", id)
	r.prev = nil
	return r.w.Err
}

// Observe records snapshot s. It has the signature of an arena.Observer.
func (r *Recorder) Observe(s *arena.Snapshot) {
	if r.prev == nil {
		r.prev = s
		return
	}
	fmt.Fprintf(r.w, "INTERVAL %d %d\n", r.prev.Cycle, s.Cycle)
	r.writeState(r.prev)
	for id, acts := range s.Actions {
		if s.Robots[id].Status != arena.Active {
			continue
		}
		for _, a := range acts {
			fmt.Fprintf(r.w, "ACTION %d %s %d %d\n", id+1, a.Kind, a.Heading, a.Param)
		}
	}
	if r.rewards {
		for id := range s.Robots {
			fmt.Fprintf(r.w, "REWARD %d %d\n", id+1, Reward(s, id))
		}
	}
	r.writeState(s)
	io.WriteString(r.w, "---\n")
	r.prev = s
}

func (r *Recorder) writeState(s *arena.Snapshot) {
	for _, rs := range s.Robots {
		if rs.Status != arena.Active {
			continue
		}
		fmt.Fprintf(r.w, "ROBOT %d %s %d %d %d %d %d\n", rs.ID+1, rs.Name, rs.X, rs.Y, rs.Heading, rs.Speed, rs.Damage)
	}
	for _, m := range s.Missiles {
		fmt.Fprintf(r.w, "MISSILE %d.%d %s %d %d %d %d 0\n", m.Owner+1, m.Slot, m.Status, m.X, m.Y, m.Heading, m.Remaining)
	}
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	return r.w.Err
}

// Reward returns the reward of robot id over the interval of snapshot s: the
// damage it dealt minus the damage it took.
func Reward(s *arena.Snapshot, id int) int {
	n := 0
	for _, e := range s.Damage {
		if e.Attacker == id {
			n += e.Amount
		}
		if e.Victim == id {
			n -= e.Amount
		}
	}
	return n
}
