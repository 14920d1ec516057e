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

// move runs one motion cycle: robots first, then missiles, both in index
// order. Detonations and wall hits are recorded for resolve.
func (a *Arena) move() {
	for i := range a.robots {
		r := &a.robots[i]
		if !r.active() {
			continue
		}
		a.moveRobot(r)
	}
	for i := range a.robots {
		for j := range a.missiles[i] {
			a.moveMissile(i, &a.missiles[i][j])
		}
	}
}

func (a *Arena) moveRobot(r *robot) {
	switch {
	case r.speed < r.dSpeed:
		r.speed = min(r.speed+r.accel, r.dSpeed)
	case r.speed > r.dSpeed:
		r.speed = max(r.speed-r.accel, r.dSpeed)
	}

	if r.heading != r.dHeading {
		// distance turning in the increasing direction
		d := norm360(r.dHeading - r.heading)
		if d <= 180 {
			d = min(d, MaxTurn)
		} else {
			d = -min(360-d, MaxTurn)
		}
		r.heading = norm360(r.heading + d)
		r.orgX, r.orgY, r.travel = r.x, r.y, 0
	}

	r.travel += r.speed * RobotSpeed / Click
	dx, dy := project(r.heading, r.travel)
	r.x, r.y = r.orgX+dx, r.orgY+dy

	x, y := clamp(r.x, 0, a.maxX), clamp(r.y, 0, a.maxY)
	if x != r.x || y != r.y {
		r.x, r.y = x, y
		r.stop()
		r.hitWall = true
	}

	if r.reload > 0 {
		r.reload--
	}
}

func (a *Arena) moveMissile(owner int, m *missile) {
	switch m.status {
	case Flying:
		m.dist = min(m.dist+MisSpeed, m.rang)
		dx, dy := project(m.head, m.dist)
		m.x, m.y = m.begX+dx, m.begY+dy
		x, y := clamp(m.x, 0, a.maxX), clamp(m.y, 0, a.maxY)
		if x != m.x || y != m.y {
			m.x, m.y = x, y
			m.dist = m.rang
		}
		if m.dist >= m.rang {
			m.status = Exploding
			m.count = ExpCount
			a.detonations = append(a.detonations, detonation{owner: owner, x: m.x, y: m.y})
		}
	case Exploding:
		m.count--
		if m.count <= 0 {
			m.status = Avail
		}
	}
}
