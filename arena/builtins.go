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

import (
	"math"

	"github.com/db47h/crobots/vm"
)

// builtins returns the options binding the robot builtins of robot id.
//
// Handlers never touch the physical state: yielding builtins compute their
// result against the current state and leave a pending action that the
// scheduler applies once every robot has run.
func (a *Arena) builtins(id int) []vm.Option {
	r := &a.robots[id]
	cell := func(v int) vm.Cell { return vm.Cell(v) }
	return []vm.Option{
		vm.BindBuiltin(vm.Scan, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			h, w := int(args[0]), int(args[1])
			r.pending = action{Scan, h, w}
			return cell(a.scan(id, h, w)), nil
		}),
		vm.BindBuiltin(vm.Cannon, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			r.pending = action{Cannon, int(args[0]), int(args[1])}
			if a.canFire(id) {
				return 1, nil
			}
			return 0, nil
		}),
		vm.BindBuiltin(vm.Drive, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			r.pending = action{Drive, int(args[0]), int(args[1])}
			return 1, nil
		}),
		vm.BindBuiltin(vm.Damage, func(*vm.Instance, []vm.Cell) (vm.Cell, error) {
			return cell(r.damage), nil
		}),
		vm.BindBuiltin(vm.Speed, func(*vm.Instance, []vm.Cell) (vm.Cell, error) {
			return cell(r.speed), nil
		}),
		vm.BindBuiltin(vm.LocX, func(*vm.Instance, []vm.Cell) (vm.Cell, error) {
			return cell(r.x / Click), nil
		}),
		vm.BindBuiltin(vm.LocY, func(*vm.Instance, []vm.Cell) (vm.Cell, error) {
			return cell(r.y / Click), nil
		}),
		vm.BindBuiltin(vm.Rand, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			if args[0] <= 0 {
				return 0, nil
			}
			return vm.Cell(a.rng.Int64N(int64(args[0]))), nil
		}),
		vm.BindBuiltin(vm.Sqrt, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			return vm.Cell(isqrt(abs64(int64(args[0])))), nil
		}),
		vm.BindBuiltin(vm.Sin, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			return vm.Cell(sinTab[norm360(int(args[0]))]), nil
		}),
		vm.BindBuiltin(vm.Cos, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			return vm.Cell(cosTab[norm360(int(args[0]))]), nil
		}),
		vm.BindBuiltin(vm.Tan, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			d := norm360(int(args[0]))
			s, c := sinTab[d], cosTab[d]
			if c == 0 {
				if s < 0 {
					return math.MinInt32, nil
				}
				return math.MaxInt32, nil
			}
			t := s * trigScale / c
			return vm.Cell(max(min(t, math.MaxInt32), math.MinInt32)), nil
		}),
		vm.BindBuiltin(vm.Atan, func(_ *vm.Instance, args []vm.Cell) (vm.Cell, error) {
			return vm.Cell(math.Atan(float64(args[0])/trigScale) * 180 / math.Pi), nil
		}),
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// canFire returns true if robot id can launch a missile now.
func (a *Arena) canFire(id int) bool {
	return a.robots[id].reload == 0 && freeSlot(a.missiles[id][:]) >= 0
}

// apply applies the pending actions of all robots in index order.
func (a *Arena) apply() {
	for i := range a.robots {
		r := &a.robots[i]
		p := r.pending
		r.pending = action{}
		if p.kind == 0 || !r.active() {
			continue
		}
		switch p.kind {
		case Drive:
			r.dHeading = norm360(p.head)
			r.dSpeed = clamp(p.parm, 0, MaxSpeed)
			a.logAction(r, Action{Drive, r.dHeading, r.dSpeed})
		case Scan:
			r.scan = norm360(p.head)
			a.logAction(r, Action{Scan, r.scan, min(abs(p.parm), ScanLimit)})
		case Cannon:
			if !a.canFire(i) {
				continue
			}
			head := norm360(p.head)
			rang := clamp(p.parm, 0, a.cfg.MisRange())
			a.missiles[i][freeSlot(a.missiles[i][:])].launch(r.x, r.y, head, rang*Click)
			r.reload = Reload
			a.logAction(r, Action{Cannon, head, rang})
		}
	}
}

func (a *Arena) logAction(r *robot, act Action) {
	if a.cfg.LogActions {
		r.actions.add(act)
	}
}
