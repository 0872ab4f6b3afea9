// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

// Generator delivers events of a fixed weight to a target synapse label
// on the cell it is attached to, at the times given by its Schedule.
type Generator struct {
	Target   Label
	Weight   float32
	Schedule Schedule
}

// NewGenerator returns a generator targeting the given synapse label.
func NewGenerator(target string, weight float32, sched Schedule) Generator {
	return Generator{Target: NewLabel(target), Weight: weight, Schedule: sched}
}

// Events returns the events in [t0, t1) for target lid tgt.
func (gn *Generator) Events(tgt CellMember, t0, t1 float64) []Event {
	ts := gn.Schedule.Events(t0, t1)
	evs := make([]Event, len(ts))
	for i, t := range ts {
		evs[i] = Event{Target: tgt, Time: t, Weight: gn.Weight}
	}
	return evs
}

// Reset resets the schedule.
func (gn *Generator) Reset() {
	gn.Schedule.Reset()
}
