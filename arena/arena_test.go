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

package arena_test

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/db47h/crobots/arena"
	"github.com/db47h/crobots/asm"
	"github.com/db47h/crobots/config"
	"github.com/db47h/crobots/vm"
)

const idle = ".func main 0 0 :l const 0 branch l"

func prog(t testing.TB, code string) *vm.Program {
	t.Helper()
	p, err := asm.Assemble(t.Name(), strings.NewReader(code))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func entrant(t testing.TB, name, code string, at *arena.Position) arena.Entrant {
	return arena.Entrant{Name: name, Program: prog(t, code), At: at}
}

func newArena(t testing.TB, cfg *config.Config, es []arena.Entrant, opts ...arena.Option) *arena.Arena {
	t.Helper()
	a, err := arena.New(cfg, es, opts...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return a
}

func budget(n int) *config.Config {
	c := config.Default()
	c.CycleBudget = n
	return c
}

func steps(a *arena.Arena, n int) {
	for ; n > 0; n-- {
		a.Step()
	}
}

func assertEqualI(t *testing.T, name string, expected, got int) {
	t.Helper()
	if expected != got {
		t.Errorf("%s: expected %d, got %d", name, expected, got)
	}
}

func TestNew_errors(t *testing.T) {
	p := prog(t, idle)
	big := prog(t, ".func main 0 0 "+strings.Repeat("nop ", 1001))
	five := make([]arena.Entrant, 5)
	for i := range five {
		five[i] = arena.Entrant{Name: "r", Program: p}
	}
	bad := config.Default()
	bad.FieldSize = 0
	data := []struct {
		name string
		cfg  *config.Config
		es   []arena.Entrant
		msg  string
	}{
		{"none", nil, nil, "invalid number of robots"},
		{"five", nil, five, "invalid number of robots"},
		{"name", nil, []arena.Entrant{{Name: "a_very_long_name", Program: p}}, "invalid name"},
		{"noname", nil, []arena.Entrant{{Program: p}}, "invalid name"},
		{"size", nil, []arena.Entrant{{Name: "big", Program: big}}, "program too large"},
		{"noprog", nil, []arena.Entrant{{Name: "nil"}}, "nil program"},
		{"at", nil, []arena.Entrant{{Name: "out", Program: p, At: &arena.Position{X: 1024, Y: 0}}}, "out of bounds"},
		{"config", bad, []arena.Entrant{{Name: "r", Program: p}}, "field-size"},
	}
	for _, d := range data {
		_, err := arena.New(d.cfg, d.es)
		if err == nil || !strings.Contains(err.Error(), d.msg) {
			t.Errorf("%s: expected error %q, got %v", d.name, d.msg, err)
		}
	}
	if _, err := arena.New(nil, []arena.Entrant{{Name: "r", Program: p}}, arena.OnInterval(nil)); err == nil {
		t.Error("expected an error on nil observer")
	}
}

func TestNew_quadrants(t *testing.T) {
	es := make([]arena.Entrant, 4)
	for i := range es {
		es[i] = entrant(t, "r", idle, nil)
	}
	s := newArena(t, nil, es).Snapshot()
	for i, r := range s.Robots {
		if (r.X >= 512) != (i%2 == 1) || (r.Y >= 512) != (i/2 == 1) {
			t.Errorf("robot %d at (%d, %d) is not in its quadrant", i, r.X, r.Y)
		}
		if r.Status != arena.Active || r.Damage != 0 || r.Speed != 0 {
			t.Errorf("robot %d: bad initial state %+v", i, r)
		}
	}
}

func TestMotion_accelTurn(t *testing.T) {
	data := []struct {
		name      string
		head, spd int
		h15, h30  int
		s15, s30  int
		x30, y30  int
	}{
		{"north", 90, 100, 50, 90, 10, 20, 512, 513},
		{"tie", 180, 0, 50, 100, 0, 0, 512, 512},
		{"back", 300, 30, 310, 300, 10, 20, 513, 510},
		{"straight", 0, 100, 0, 0, 10, 20, 514, 512},
	}
	for _, d := range data {
		code := ".func main 0 0 frame const " + strconv.Itoa(d.head) + " const " + strconv.Itoa(d.spd) + " fcall drive chop " + idle[len(".func main 0 0 "):]
		a := newArena(t, budget(10), []arena.Entrant{entrant(t, "mover", code, &arena.Position{X: 512, Y: 512})})
		steps(a, 15)
		r := a.Snapshot().Robots[0]
		assertEqualI(t, d.name+" heading@15", d.h15, r.Heading)
		assertEqualI(t, d.name+" speed@15", d.s15, r.Speed)
		steps(a, 15)
		r = a.Snapshot().Robots[0]
		assertEqualI(t, d.name+" heading@30", d.h30, r.Heading)
		assertEqualI(t, d.name+" speed@30", d.s30, r.Speed)
		assertEqualI(t, d.name+" x@30", d.x30, r.X)
		assertEqualI(t, d.name+" y@30", d.y30, r.Y)
	}
}

func TestMotion_wall(t *testing.T) {
	var snaps []*arena.Snapshot
	code := ".func main 0 0 frame const 0 const 100 fcall drive chop " + idle[len(".func main 0 0 "):]
	a := newArena(t, budget(10), []arena.Entrant{entrant(t, "crash", code, &arena.Position{X: 1023, Y: 512})},
		arena.OnInterval(func(s *arena.Snapshot) { snaps = append(snaps, s) }))
	steps(a, 30)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	r := snaps[0].Robots[0]
	assertEqualI(t, "x", 1023, r.X)
	assertEqualI(t, "speed", 0, r.Speed)
	assertEqualI(t, "damage", arena.Collision, r.Damage)
	expected := []arena.DamageEvent{{Victim: 0, Attacker: arena.NoAttacker, Amount: arena.Collision}}
	if !reflect.DeepEqual(snaps[0].Damage, expected) {
		t.Errorf("expected damage events %v, got %v", expected, snaps[0].Damage)
	}
}

func TestMissile_flight(t *testing.T) {
	code := ".func main 0 0 frame const 0 const 300 fcall cannon chop " + idle[len(".func main 0 0 "):]
	a := newArena(t, budget(10), []arena.Entrant{entrant(t, "gunner", code, &arena.Position{X: 100, Y: 500})})
	for k := 1; k <= 11; k++ {
		steps(a, 15)
		ms := a.Snapshot().Missiles
		switch {
		case k <= 5:
			if len(ms) != 1 || ms[0].Status != arena.Flying {
				t.Fatalf("motion %d: expected a flying missile, got %+v", k, ms)
			}
			assertEqualI(t, "remaining", (3000-500*k)/arena.Click, ms[0].Remaining)
			assertEqualI(t, "x", 100+50*k, ms[0].X)
		case k <= 10:
			if len(ms) != 1 || ms[0].Status != arena.Exploding {
				t.Fatalf("motion %d: expected an exploding missile, got %+v", k, ms)
			}
			assertEqualI(t, "remaining", 0, ms[0].Remaining)
			assertEqualI(t, "x", 400, ms[0].X)
		default:
			if len(ms) != 0 {
				t.Fatalf("motion %d: expected no missile, got %+v", k, ms)
			}
		}
	}
}

func TestMissile_wall(t *testing.T) {
	code := ".func main 0 0 frame const 0 const 300 fcall cannon chop " + idle[len(".func main 0 0 "):]
	a := newArena(t, budget(10), []arena.Entrant{entrant(t, "gunner", code, &arena.Position{X: 1000, Y: 500})})
	steps(a, 15)
	s := a.Snapshot()
	if len(s.Missiles) != 1 || s.Missiles[0].Status != arena.Exploding {
		t.Fatalf("expected an exploding missile, got %+v", s.Missiles)
	}
	assertEqualI(t, "x", 1023, s.Missiles[0].X)
	assertEqualI(t, "y", 500, s.Missiles[0].Y)
	assertEqualI(t, "remaining", 0, s.Missiles[0].Remaining)
	// the detonation 23.9 m away hurts the gunner
	expected := []arena.DamageEvent{{Victim: 0, Attacker: 0, Amount: arena.FarHit}}
	if !reflect.DeepEqual(s.Damage, expected) {
		t.Errorf("expected %v, got %v", expected, s.Damage)
	}
}

const actor = `
	.func main 0 0
	frame const 90 const 50 fcall drive chop
	frame const 45 const 10 fcall scan chop
	frame const 0 const 300 fcall cannon chop
:l	const 0 branch l
`

func TestLogActions(t *testing.T) {
	for _, on := range []bool{true, false} {
		cfg := budget(10)
		cfg.LogActions = on
		a := newArena(t, cfg, []arena.Entrant{
			entrant(t, "actor", actor, &arena.Position{X: 100, Y: 100}),
			entrant(t, "actor", actor, &arena.Position{X: 900, Y: 900}),
		})
		steps(a, 3)
		s := a.Snapshot()
		if len(s.Missiles) != 2 || s.Robots[0].Scan != 45 {
			t.Fatalf("actions not applied: %+v", s)
		}
		n := 0
		if on {
			n = 3
		}
		for i := range s.Actions {
			assertEqualI(t, "log size", n, len(s.Actions[i]))
		}
	}
}

func TestCannon_reload(t *testing.T) {
	code := `
	.ext 1
	.func main 0 0
:l	frame const 0 const 300 fcall cannon store x0 += chop
	const 0 branch l
`
	var fired []int
	a := newArena(t, budget(10), []arena.Entrant{entrant(t, "gunner", code, &arena.Position{X: 100, Y: 500})},
		arena.OnInterval(func(s *arena.Snapshot) { fired = append(fired, len(s.Actions[0])) }))
	a.Step()
	assertEqualI(t, "reload", arena.Reload, a.Snapshot().Robots[0].Reload)
	steps(a, 224)
	assertEqualI(t, "accepted", 1, int(a.CPU(0).External()[0]))
	assertEqualI(t, "reload", 0, a.Snapshot().Robots[0].Reload)
	a.Step()
	assertEqualI(t, "reload", arena.Reload, a.Snapshot().Robots[0].Reload)
	a.Step()
	assertEqualI(t, "accepted", 2, int(a.CPU(0).External()[0]))
	if !reflect.DeepEqual(fired, []int{1, 0, 0, 0, 0, 0, 0}) {
		t.Errorf("unexpected cannon log sizes %v", fired)
	}
}

func TestScan_program(t *testing.T) {
	code := `
	.ext 4
	.func main 0 0
	frame const 0 const 10 fcall scan store x0 chop
	frame const 355 const 10 fcall scan store x1 chop
	frame const 90 const 10 fcall scan store x2 chop
	frame const 20 const -50 fcall scan store x3 chop
	nop
`
	a := newArena(t, budget(10), []arena.Entrant{
		entrant(t, "scanner", code, &arena.Position{X: 500, Y: 500}),
		entrant(t, "target", idle, &arena.Position{X: 600, Y: 500}),
	})
	steps(a, 5)
	x := a.CPU(0).External()
	for i, v := range []vm.Cell{100, 100, arena.NoTarget, arena.NoTarget} {
		if x[i] != v {
			t.Errorf("scan %d: expected %d, got %d", i, v, x[i])
		}
	}
	s := a.Snapshot()
	assertEqualI(t, "scan direction", 20, s.Robots[0].Scan)
	expected := []arena.Action{{Kind: arena.Scan, Heading: 0, Param: 10}, {Kind: arena.Scan, Heading: 355, Param: 10},
		{Kind: arena.Scan, Heading: 90, Param: 10}, {Kind: arena.Scan, Heading: 20, Param: 10}}
	if !reflect.DeepEqual(s.Actions[0], expected) {
		t.Errorf("expected actions %v, got %v", expected, s.Actions[0])
	}
}

func TestBuiltins(t *testing.T) {
	code := `
	.ext 10
	.func main 0 0
	frame fcall loc_x store x0 chop
	frame fcall loc_y store x1 chop
	frame const -1000000 fcall sqrt store x2 chop
	frame const 30 fcall sin store x3 chop
	frame const 420 fcall cos store x4 chop
	frame const 45 fcall tan store x5 chop
	frame const 50000 fcall atan store x6 chop
	frame const 10 fcall rand store x7 chop
	frame const 90 fcall tan store x8 chop
	frame fcall speed store x9 chop
	nop
`
	a := newArena(t, budget(1000), []arena.Entrant{entrant(t, "math", code, &arena.Position{X: 123, Y: 456})})
	a.Step()
	x := a.CPU(0).External()
	for i, v := range []vm.Cell{123, 456, 1000, 50000, 50000, 100000, 26, -1, 2147483647, 0} {
		if v == -1 {
			if x[i] < 0 || x[i] >= 10 {
				t.Errorf("rand out of range: %d", x[i])
			}
			continue
		}
		if x[i] != v {
			t.Errorf("x%d: expected %d, got %d", i, v, x[i])
		}
	}
	if !a.CPU(0).Halted() {
		t.Error("program should have halted")
	}
}

func TestFaultPolicy(t *testing.T) {
	code := ".ext 1 .func main 0 0 const 1 store x0 += chop const 1 const 0 binop / nop"
	a := newArena(t, budget(10), []arena.Entrant{
		entrant(t, "faulty", code, nil),
		entrant(t, "idle", idle, nil),
	})
	steps(a, 5)
	s := a.Snapshot()
	assertEqualI(t, "faults", 5, s.Robots[0].Faults)
	assertEqualI(t, "x0", 5, int(a.CPU(0).External()[0]))
	if s.Robots[0].Status != arena.Active {
		t.Error("a faulty robot must stay active")
	}
	if vm.FaultOf(a.LastFault(0)) != vm.DivideByZero {
		t.Errorf("unexpected last fault %v", a.LastFault(0))
	}
	assertEqualI(t, "turns", 5, int(a.Turns(1)))
	assertEqualI(t, "idle faults", 0, s.Robots[1].Faults)
}

func TestFairness(t *testing.T) {
	code := ".func main 0 0 :l frame const 0 const 0 fcall drive chop const 0 branch l"
	var counts [][2]int
	a := newArena(t, budget(10), []arena.Entrant{entrant(t, "a", code, nil), entrant(t, "b", code, nil)},
		arena.OnInterval(func(s *arena.Snapshot) {
			counts = append(counts, [2]int{len(s.Actions[0]), len(s.Actions[1])})
		}))
	steps(a, 1000)
	assertEqualI(t, "turns a", 1000, int(a.Turns(0)))
	assertEqualI(t, "turns b", 1000, int(a.Turns(1)))
	assertEqualI(t, "intervals", 33, len(counts))
	for i, c := range counts {
		if c[0] != 30 || c[1] != 30 {
			t.Errorf("interval %d: unequal or missing actions %v", i, c)
		}
	}
}

// one stationary robot in the center fires at an opponent 100 m east, the
// missile lands 5 m short.
func TestEndToEnd_nearHit(t *testing.T) {
	code := ".func main 0 0 frame const 0 const 95 fcall cannon chop " + idle[len(".func main 0 0 "):]
	var snaps []*arena.Snapshot
	a := newArena(t, nil, []arena.Entrant{
		entrant(t, "shooter", code, &arena.Position{X: 512, Y: 512}),
		entrant(t, "target", idle, &arena.Position{X: 612, Y: 512}),
	}, arena.OnInterval(func(s *arena.Snapshot) { snaps = append(snaps, s) }))
	steps(a, 30)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	assertEqualI(t, "target damage", arena.NearHit, s.Robots[1].Damage)
	assertEqualI(t, "shooter damage", 0, s.Robots[0].Damage)
	expected := []arena.DamageEvent{{Victim: 1, Attacker: 0, Amount: arena.NearHit}}
	if !reflect.DeepEqual(s.Damage, expected) {
		t.Errorf("expected %v, got %v", expected, s.Damage)
	}
	if len(s.Missiles) != 1 || s.Missiles[0].Status != arena.Exploding || s.Missiles[0].X != 607 {
		t.Errorf("unexpected missiles %+v", s.Missiles)
	}
	// logs are cleared at the boundary
	if s = a.Snapshot(); len(s.Damage) != 0 || len(s.Actions[0]) != 0 {
		t.Errorf("logs not cleared: %+v", s)
	}
}

const brawler = `
	.func main 0 0
:l	frame frame const 360 fcall rand const 100 fcall drive chop
	frame frame const 360 fcall rand frame const 700 fcall rand fcall cannon chop
	frame frame const 360 fcall rand const 10 fcall scan chop
	const 0 branch l
`

func brawl(t *testing.T, cycles int, check func(*arena.Snapshot)) *arena.Arena {
	cfg := budget(10)
	cfg.Seed = 42
	es := make([]arena.Entrant, 4)
	for i := range es {
		es[i] = entrant(t, "brawler", brawler, nil)
	}
	a := newArena(t, cfg, es)
	for n := 0; n < cycles; n++ {
		a.Step()
		if a.Cycle()%int64(cfg.MotionCycles) == 0 && check != nil {
			check(a.Snapshot())
		}
	}
	return a
}

func TestInvariants(t *testing.T) {
	prev := make([]arena.RobotState, 4)
	deaths := make([]int, 4)
	for i := range prev {
		prev[i].Status = arena.Active
	}
	brawl(t, 20000, func(s *arena.Snapshot) {
		for i, r := range s.Robots {
			if r.Damage < 0 || r.Damage > 100 || r.Speed < 0 || r.Speed > 100 || r.Heading < 0 || r.Heading >= 360 {
				t.Fatalf("cycle %d: robot %d out of bounds: %+v", s.Cycle, i, r)
			}
			if r.X < 0 || r.X >= 1024 || r.Y < 0 || r.Y >= 1024 {
				t.Fatalf("cycle %d: robot %d off the field: %+v", s.Cycle, i, r)
			}
			if r.Damage < prev[i].Damage {
				t.Fatalf("cycle %d: robot %d damage decreased", s.Cycle, i)
			}
			if (r.Status == arena.Dead) != (r.Damage == 100) {
				t.Fatalf("cycle %d: robot %d status %v with damage %d", s.Cycle, i, r.Status, r.Damage)
			}
			if prev[i].Status == arena.Active && r.Status == arena.Dead {
				deaths[i]++
			}
			if prev[i].Status == arena.Dead && r.Status == arena.Active {
				t.Fatalf("cycle %d: robot %d resurrected", s.Cycle, i)
			}
		}
		for _, m := range s.Missiles {
			if m.Remaining < 0 || m.X < 0 || m.X >= 1024 || m.Y < 0 || m.Y >= 1024 {
				t.Fatalf("cycle %d: bad missile %+v", s.Cycle, m)
			}
		}
		for _, e := range s.Damage {
			if e.Amount <= 0 {
				t.Fatalf("cycle %d: bad damage event %+v", s.Cycle, e)
			}
		}
		copy(prev, s.Robots)
	})
	for i, d := range deaths {
		if d > 1 {
			t.Errorf("robot %d died %d times", i, d)
		}
	}
}

func TestDeterminism(t *testing.T) {
	s1 := brawl(t, 5000, nil).Snapshot()
	s2 := brawl(t, 5000, nil).Snapshot()
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("replay differs:\n%+v\n%+v", s1, s2)
	}
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.CycleLimit = 100
	var cycles []int64
	a := newArena(t, cfg, []arena.Entrant{entrant(t, "a", idle, nil), entrant(t, "b", idle, nil)},
		arena.OnInterval(func(s *arena.Snapshot) { cycles = append(cycles, s.Cycle) }))
	res := a.Run()
	if res.Cycles != 100 || res.Winner != -1 || !reflect.DeepEqual(res.Alive, []int{0, 1}) {
		t.Errorf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(cycles, []int64{30, 60, 90, 100}) {
		t.Errorf("unexpected boundaries %v", cycles)
	}
	if !a.Done() {
		t.Error("match should be over")
	}
}

func TestRunContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var cycles []int64
	a := newArena(t, nil, []arena.Entrant{entrant(t, "a", idle, nil), entrant(t, "b", idle, nil)},
		arena.OnInterval(func(s *arena.Snapshot) {
			cycles = append(cycles, s.Cycle)
			if s.Cycle == 60 {
				cancel()
			}
		}))
	res, err := a.RunContext(ctx)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Cycles != 60 || len(res.Alive) != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(cycles, []int64{30, 60}) {
		t.Errorf("unexpected boundaries %v", cycles)
	}
}

func TestHalt(t *testing.T) {
	a := newArena(t, nil, []arena.Entrant{entrant(t, "lazy", ".func main 0 0 nop", nil), entrant(t, "b", idle, nil)})
	steps(a, 10)
	if !a.CPU(0).Halted() || a.Snapshot().Robots[0].Status != arena.Active {
		t.Error("a halted robot stays in the game")
	}
	assertEqualI(t, "instructions", 1, int(a.CPU(0).InstructionCount()))
}
