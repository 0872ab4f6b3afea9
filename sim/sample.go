// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/emer/cable/cable"
	"github.com/emer/cable/event"
)

// ProbeID addresses probe Index of cell Gid, as returned by recipe Probes.
type ProbeID struct {
	Gid   int
	Index int
}

func (pi ProbeID) String() string {
	return fmt.Sprintf("(%d, %d)", pi.Gid, pi.Index)
}

// Handle identifies a sampling association made with Simulation.Sample.
type Handle int

// Trace holds the samples taken of one probed quantity.
type Trace struct {
	Probe ProbeID

	// description of what is sampled, e.g., the location
	Meta string

	// sample times, ms
	Times []float64

	// sampled values
	Values []float32
}

// Len returns the number of samples.
func (tr *Trace) Len() int {
	return len(tr.Times)
}

// sampleAssoc is a probe sampled on a schedule
type sampleAssoc struct {
	handle   Handle
	probe    ProbeID
	sched    event.Schedule
	samplers []cable.Sampler
	traces   []Trace
}

func (sa *sampleAssoc) record(t float64) {
	for i, sm := range sa.samplers {
		tr := &sa.traces[i]
		tr.Times = append(tr.Times, t)
		tr.Values = append(tr.Values, sm.Value())
	}
}

func (sa *sampleAssoc) reset() {
	sa.sched.Reset()
	for i := range sa.traces {
		sa.traces[i].Times = nil
		sa.traces[i].Values = nil
	}
}

func (sa *sampleAssoc) setSamplers(sms []cable.Sampler) {
	sa.samplers = sms
	sa.traces = make([]Trace, len(sms))
	for i, sm := range sms {
		sa.traces[i] = Trace{Probe: sa.probe, Meta: sm.Meta}
	}
}
