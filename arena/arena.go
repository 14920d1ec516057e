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

// Package arena implements the CROBOTS simulation: robots run their programs
// in a shared battlefield, one cycle at a time and in a fixed robot order.
//
// Each cycle, every active robot runs its CPU for a fixed instruction budget.
// Builtins such as drive, scan and cannon do not change the world directly:
// they record a pending action that is applied once every robot has run, so
// that all robots of a cycle see the same state. Every MotionCycles cycles,
// robots and missiles move and damage is resolved. Every Interval cycles, the
// registered observers receive a Snapshot, then the action and damage logs
// are cleared.
//
// Given the same programs and configuration, a match always plays the same.
package arena

import (
	"context"
	"math/rand/v2"

	"github.com/db47h/crobots/config"
	"github.com/db47h/crobots/vm"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("crobots.arena")

// Position is a battlefield position in meters.
type Position struct {
	X, Y int
}

// Entrant is a robot entering a match.
type Entrant struct {
	Name    string
	Program *vm.Program
	At      *Position // start position, random in the robot's quadrant if nil
}

// Observer receives the state of the arena at the end of each interval. The
// snapshot belongs to the observer.
type Observer func(*Snapshot)

// Result is the outcome of a match.
type Result struct {
	Cycles int64
	Winner int // index of the last robot standing or -1
	Alive  []int
	Damage []int
}

// Arena is a match in progress. It is not safe for concurrent use.
type Arena struct {
	cfg         *config.Config
	maxX, maxY  int // in clicks
	robots      []robot
	missiles    [][MissilesPerRobot]missile
	detonations []detonation
	damage      damageLog
	cycle       int64
	rng         *rand.Rand
	observers   []Observer
}

// Option interface
type Option func(*Arena) error

// OnInterval registers an observer called at each interval boundary.
// Observers are called in registration order.
func OnInterval(o Observer) Option {
	return func(a *Arena) error {
		if o == nil {
			return errors.New("nil observer")
		}
		a.observers = append(a.observers, o)
		return nil
	}
}

// New creates a new match for the given robots.
//
// The configuration must not be modified while the match is running.
// Options will be set by calling SetOptions.
func New(cfg *config.Config, entrants []Entrant, opts ...Option) (*Arena, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(entrants) < 1 || len(entrants) > MaxRobots {
		return nil, errors.Errorf("invalid number of robots %d: must be 1 to %d", len(entrants), MaxRobots)
	}
	a := &Arena{
		cfg:      cfg,
		maxX:     cfg.MaxX()*Click - 1,
		maxY:     cfg.MaxY()*Click - 1,
		robots:   make([]robot, len(entrants)),
		missiles: make([][MissilesPerRobot]missile, len(entrants)),
		rng:      rand.New(rand.NewPCG(uint64(cfg.Seed), 0x637a6f627473)),
	}
	half := cfg.FieldSize / 2
	for i, e := range entrants {
		if len(e.Name) == 0 || len(e.Name) > MaxNameLen {
			return nil, errors.Errorf("robot %d: invalid name %q: length must be 1 to %d", i, e.Name, MaxNameLen)
		}
		if err := e.Program.Check(cfg.MaxInstr); err != nil {
			return nil, errors.Wrapf(err, "robot %d (%s)", i, e.Name)
		}
		r := &a.robots[i]
		r.status = Active
		r.name = e.Name
		r.accel = Accel
		if e.At != nil {
			if e.At.X < 0 || e.At.X >= cfg.MaxX() || e.At.Y < 0 || e.At.Y >= cfg.MaxY() {
				return nil, errors.Errorf("robot %d (%s): start position %v out of bounds", i, e.Name, *e.At)
			}
			r.x, r.y = e.At.X*Click, e.At.Y*Click
		} else {
			// quadrants: 0 bottom left, 1 bottom right, 2 top left, 3 top right
			r.x = (a.rng.IntN(half) + half*(i%2)) * Click
			r.y = (a.rng.IntN(half) + half*(i/2)) * Click
		}
		r.orgX, r.orgY = r.x, r.y
		vmOpts := append([]vm.Option{vm.StackSize(cfg.StackSize), vm.FrameDepth(cfg.FrameDepth)}, a.builtins(i)...)
		cpu, err := vm.New(e.Program, vmOpts...)
		if err != nil {
			return nil, errors.Wrapf(err, "robot %d (%s)", i, e.Name)
		}
		r.cpu = cpu
	}
	if err := a.SetOptions(opts...); err != nil {
		return nil, err
	}
	return a, nil
}

// SetOptions sets the provided options.
func (a *Arena) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return err
		}
	}
	return nil
}

// Cycle returns the number of cycles run so far.
func (a *Arena) Cycle() int64 { return a.cycle }

// Robots returns the number of robots in the match, dead ones included.
func (a *Arena) Robots() int { return len(a.robots) }

// Alive returns the number of active robots.
func (a *Arena) Alive() int {
	n := 0
	for i := range a.robots {
		if a.robots[i].active() {
			n++
		}
	}
	return n
}

// CPU returns the CPU of robot i.
func (a *Arena) CPU(i int) *vm.Instance { return a.robots[i].cpu }

// Turns returns the number of cycles robot i has been dispatched.
func (a *Arena) Turns(i int) int64 { return a.robots[i].turns }

// LastFault returns the last program fault of robot i, or nil.
func (a *Arena) LastFault(i int) error { return a.robots[i].lastFault }

// Done returns true when the match is over: the cycle limit is reached or at
// most one robot is still active.
func (a *Arena) Done() bool {
	return a.cycle >= a.cfg.CycleLimit || a.Alive() <= 1
}

// dispatch runs the CPU of every active robot for one cycle.
func (a *Arena) dispatch() {
	for i := range a.robots {
		r := &a.robots[i]
		if !r.active() {
			continue
		}
		r.turns++
		if r.restart {
			r.restart = false
			r.cpu.Reset()
		}
		if r.cpu.Halted() {
			continue
		}
		if err := r.cpu.Run(a.cfg.CycleBudget); err != nil {
			r.faults++
			r.lastFault = err
			r.restart = true
			r.pending = action{}
			log.Warningf("cycle %d: %s (%d): %v, restarting", a.cycle, r.name, i, err)
		}
	}
}

// Step runs one cycle.
func (a *Arena) Step() {
	a.dispatch()
	a.apply()
	a.cycle++
	if a.cycle%int64(a.cfg.MotionCycles) == 0 {
		a.move()
		a.resolve()
	}
	if a.cycle%int64(a.cfg.Interval) == 0 {
		a.boundary()
	}
}

// boundary hands the current state over to the observers and clears the
// logs.
func (a *Arena) boundary() {
	for _, o := range a.observers {
		o(a.Snapshot())
	}
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("cycle %d: %d robots alive, %d damage events", a.cycle, a.Alive(), len(a.damage.events))
	}
	for i := range a.robots {
		a.robots[i].actions.clear()
	}
	a.damage.clear()
}

// Run steps the match until it is over, flushes the last incomplete interval
// to the observers and returns the result.
func (a *Arena) Run() Result {
	res, _ := a.RunContext(context.Background())
	return res
}

// RunContext is like Run but also stops at the first interval boundary after
// ctx is done, in which case it returns the result so far along with
// ctx.Err().
func (a *Arena) RunContext(ctx context.Context) (Result, error) {
	var err error
	for !a.Done() {
		a.Step()
		if a.cycle%int64(a.cfg.Interval) == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
	}
	if a.cycle%int64(a.cfg.Interval) != 0 {
		a.boundary()
	}
	res := Result{Cycles: a.cycle, Winner: -1, Damage: make([]int, len(a.robots))}
	for i := range a.robots {
		res.Damage[i] = a.robots[i].damage
		if a.robots[i].active() {
			res.Alive = append(res.Alive, i)
		}
	}
	if len(res.Alive) == 1 {
		res.Winner = res.Alive[0]
	}
	if err != nil {
		log.Infof("match stopped after %d cycles: %v", res.Cycles, err)
		return res, err
	}
	log.Infof("match over after %d cycles, winner %d", res.Cycles, res.Winner)
	return res, nil
}
