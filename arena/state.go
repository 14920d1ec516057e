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

package arena

// RobotState is the exported state of a robot. Positions are in meters.
type RobotState struct {
	ID      int
	Name    string
	Status  Status
	X, Y    int
	Heading int
	Speed   int
	Damage  int
	Scan    int
	Reload  int
	Faults  int
}

// MissileState is the exported state of a missile slot in use. Positions and
// remaining range are in meters.
type MissileState struct {
	Owner     int
	Slot      int
	Status    MissileStatus
	X, Y      int
	Heading   int
	Remaining int
}

// Snapshot is a read-only copy of the arena state and of the logs of the
// current interval.
type Snapshot struct {
	Cycle    int64
	Robots   []RobotState
	Missiles []MissileState
	Actions  [][]Action // per robot, in issue order
	Damage   []DamageEvent
	Dropped  int // log entries dropped for lack of room
}

// Snapshot returns a copy of the current state.
func (a *Arena) Snapshot() *Snapshot {
	s := &Snapshot{
		Cycle:   a.cycle,
		Robots:  make([]RobotState, len(a.robots)),
		Actions: make([][]Action, len(a.robots)),
		Damage:  append([]DamageEvent(nil), a.damage.events...),
		Dropped: a.damage.dropped,
	}
	for i := range a.robots {
		r := &a.robots[i]
		s.Robots[i] = RobotState{
			ID:      i,
			Name:    r.name,
			Status:  r.status,
			X:       r.x / Click,
			Y:       r.y / Click,
			Heading: r.heading,
			Speed:   r.speed,
			Damage:  r.damage,
			Scan:    r.scan,
			Reload:  r.reload,
			Faults:  r.faults,
		}
		s.Actions[i] = append([]Action(nil), r.actions.entries...)
		s.Dropped += r.actions.dropped
		for j := range a.missiles[i] {
			m := &a.missiles[i][j]
			if m.status == Avail {
				continue
			}
			s.Missiles = append(s.Missiles, MissileState{
				Owner:     i,
				Slot:      j,
				Status:    m.status,
				X:         m.x / Click,
				Y:         m.y / Click,
				Heading:   m.head,
				Remaining: (m.rang - m.dist) / Click,
			})
		}
	}
	return s
}

// Alive returns the number of active robots in s.
func (s *Snapshot) Alive() int {
	n := 0
	for i := range s.Robots {
		if s.Robots[i].Status == Active {
			n++
		}
	}
	return n
}
