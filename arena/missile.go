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

// MissileStatus is the status of a missile slot.
type MissileStatus int

// Missile statuses.
const (
	Avail MissileStatus = iota
	Flying
	Exploding
)

var missileNames = [...]string{"AVAIL", "FLYING", "EXPLODING"}

func (s MissileStatus) String() string {
	if s >= 0 && int(s) < len(missileNames) {
		return missileNames[s]
	}
	return "MISSILE?"
}

// missile positions and distances are in clicks.
type missile struct {
	status     MissileStatus
	begX, begY int
	x, y       int
	head       int
	rang       int
	dist       int
	count      int
}

// detonation is a missile that reached its range during the current motion
// cycle.
type detonation struct {
	owner int
	x, y  int
}

// launch fires a missile from slot m.
func (m *missile) launch(x, y, head, rang int) {
	*m = missile{
		status: Flying,
		begX:   x,
		begY:   y,
		x:      x,
		y:      y,
		head:   head,
		rang:   rang,
	}
}

// freeSlot returns the first available slot in ms or -1.
func freeSlot(ms []missile) int {
	for i := range ms {
		if ms[i].status == Avail {
			return i
		}
	}
	return -1
}
