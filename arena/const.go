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

// Battlefield units. Positions are stored in clicks and exported in meters.
const (
	Click = 10 // clicks per meter
)

// Robot limits and motion.
const (
	MaxRobots  = 4
	MaxNameLen = 13  // robot name length in bytes
	MaxSpeed   = 100 // percent
	RobotSpeed = 7   // clicks per motion cycle and per 10% of speed
	MaxTurn    = 50  // degrees per motion cycle
	Accel      = 10  // speed change per motion cycle
	MaxDamage  = 100
)

// Missiles.
const (
	MissilesPerRobot = 2
	MisSpeed         = 500 // clicks per motion cycle
	Reload           = 15  // motion cycles between shots
	ExpCount         = 5   // motion cycles an explosion lasts
)

// Damage brackets, ranges in meters.
const (
	DirectRange = 5
	NearRange   = 20
	FarRange    = 40
	DirectHit   = 10
	NearHit     = 5
	FarHit      = 3
	Collision   = 2
)

// Scan and log limits.
const (
	ScanLimit       = 10 // maximum scan half width in degrees
	NoTarget        = 0  // scan result when nothing is found
	NoAttacker      = -1
	MaxActions      = 100 // per robot and interval
	MaxDamageEvents = 50  // per interval
)

// ActionKind identifies a robot action.
type ActionKind int

// Action kinds.
const (
	Drive ActionKind = iota + 1
	Scan
	Cannon
)

var actionNames = [...]string{"NONE", "DRIVE", "SCAN", "CANNON"}

func (k ActionKind) String() string {
	if k >= 0 && int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "ACTION?"
}
