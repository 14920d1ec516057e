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

// Action is an action log entry. Heading is the requested heading; Param is
// the speed for drive, the scan width for scan and the range for cannon.
type Action struct {
	Kind    ActionKind
	Heading int
	Param   int
}

// DamageEvent records damage applied to a robot. Attacker is NoAttacker for
// collisions.
type DamageEvent struct {
	Victim   int
	Attacker int
	Amount   int
}

// actionLog is a bounded per-robot action log. Entries past MaxActions are
// dropped until the log is cleared.
type actionLog struct {
	entries []Action
	dropped int
}

func (l *actionLog) add(a Action) {
	if len(l.entries) >= MaxActions {
		l.dropped++
		return
	}
	l.entries = append(l.entries, a)
}

func (l *actionLog) clear() {
	l.entries = l.entries[:0]
	l.dropped = 0
}

type damageLog struct {
	events  []DamageEvent
	dropped int
}

func (l *damageLog) add(e DamageEvent) {
	if len(l.events) >= MaxDamageEvents {
		l.dropped++
		return
	}
	l.events = append(l.events, e)
}

func (l *damageLog) clear() {
	l.events = l.events[:0]
	l.dropped = 0
}
