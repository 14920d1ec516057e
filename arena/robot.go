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

import "github.com/db47h/crobots/vm"

// Status is the status of a robot.
type Status int

// Robot statuses.
const (
	Dead Status = iota
	Active
)

func (s Status) String() string {
	if s == Active {
		return "ACTIVE"
	}
	return "DEAD"
}

// action is a request handed over by a yielding builtin. It is applied by the
// scheduler once every robot has been dispatched.
type action struct {
	kind       ActionKind
	head, parm int
}

type robot struct {
	status Status
	name   string

	// position and motion, in clicks
	x, y       int
	orgX, orgY int
	travel     int
	hitWall    bool

	speed, dSpeed     int
	heading, dHeading int
	accel             int
	damage            int
	scan              int
	reload            int

	cpu       *vm.Instance
	pending   action
	actions   actionLog
	faults    int
	lastFault error
	restart   bool
	turns     int64
}

// stop halts the robot where it stands.
func (r *robot) stop() {
	r.speed, r.dSpeed = 0, 0
	r.orgX, r.orgY, r.travel = r.x, r.y, 0
}

func (r *robot) active() bool { return r.status == Active }
