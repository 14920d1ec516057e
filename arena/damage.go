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

var brackets = [...]struct {
	r2     int64 // squared range in clicks
	amount int
}{
	{DirectRange * Click * DirectRange * Click, DirectHit},
	{NearRange * Click * NearRange * Click, NearHit},
	{FarRange * Click * FarRange * Click, FarHit},
}

// resolve applies the damage caused by the last motion cycle: detonations in
// the order they happened, then robot to robot collisions, then walls.
func (a *Arena) resolve() {
	for _, d := range a.detonations {
		for i := range a.robots {
			r := &a.robots[i]
			if !r.active() {
				continue
			}
			dx, dy := int64(r.x-d.x), int64(r.y-d.y)
			d2 := dx*dx + dy*dy
			for _, b := range brackets {
				if d2 < b.r2 {
					a.hurt(i, d.owner, b.amount)
					break
				}
			}
		}
	}
	a.detonations = a.detonations[:0]

	for i := range a.robots {
		for j := i + 1; j < len(a.robots); j++ {
			ri, rj := &a.robots[i], &a.robots[j]
			if !ri.active() || !rj.active() {
				continue
			}
			if abs(ri.x-rj.x) < Click && abs(ri.y-rj.y) < Click {
				ri.stop()
				rj.stop()
				a.hurt(i, NoAttacker, Collision)
				a.hurt(j, NoAttacker, Collision)
			}
		}
	}

	for i := range a.robots {
		r := &a.robots[i]
		if r.hitWall {
			r.hitWall = false
			a.hurt(i, NoAttacker, Collision)
		}
	}
}

// hurt applies damage to an active robot, logs it and handles its death.
func (a *Arena) hurt(victim, attacker, amount int) {
	r := &a.robots[victim]
	if !r.active() {
		return
	}
	amount = min(amount, MaxDamage-r.damage)
	r.damage += amount
	if a.cfg.LogDamage {
		a.damage.add(DamageEvent{Victim: victim, Attacker: attacker, Amount: amount})
	}
	if r.damage >= MaxDamage {
		r.status = Dead
		r.pending = action{}
		log.Infof("cycle %d: %s (%d) destroyed", a.cycle, r.name, victim)
	}
}
