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

import "math"

// trigScale is the fixed-point scale of the trig tables and of the sin, cos,
// tan and atan builtins.
const trigScale = 100000

var sinTab, cosTab [360]int64

func init() {
	for d := range sinTab {
		r := float64(d) * math.Pi / 180
		sinTab[d] = int64(math.Round(math.Sin(r) * trigScale))
		cosTab[d] = int64(math.Round(math.Cos(r) * trigScale))
	}
}

// norm360 brings d in the range [0, 360).
func norm360(d int) int {
	d %= 360
	if d < 0 {
		d += 360
	}
	return d
}

// project returns the offset of a point dist clicks away along heading.
func project(heading, dist int) (dx, dy int) {
	h := norm360(heading)
	return int(cosTab[h] * int64(dist) / trigScale), int(sinTab[h] * int64(dist) / trigScale)
}

// isqrt returns the integer square root of n, n >= 0.
func isqrt(n int64) int64 {
	if n < 2 {
		return n
	}
	x := int64(math.Sqrt(float64(n)))
	for x*x > n {
		x--
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}

// bearing returns the direction of (dx, dy) rounded down to whole degrees, in
// [0, 360).
func bearing(dx, dy int) int {
	return norm360(int(math.Floor(math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
