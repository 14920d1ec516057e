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

// scan returns the distance in meters to the nearest active robot other than
// robot i within width degrees of heading, or NoTarget. Ties go to the lowest
// index.
func (a *Arena) scan(i, heading, width int) int {
	heading = norm360(heading)
	width = min(abs(width), ScanLimit)
	r := &a.robots[i]
	found := false
	var best int64
	for j := range a.robots {
		t := &a.robots[j]
		if j == i || !t.active() {
			continue
		}
		dx, dy := t.x-r.x, t.y-r.y
		d := abs(bearing(dx, dy) - heading)
		if d > 180 {
			d = 360 - d
		}
		if d > width {
			continue
		}
		d2 := int64(dx)*int64(dx) + int64(dy)*int64(dy)
		if !found || d2 < best {
			found, best = true, d2
		}
	}
	if !found {
		return NoTarget
	}
	return int(isqrt(best) / Click)
}
