// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"math"
	"math/rand"
	"sort"
)

// Schedule generates a sequence of event times. Events returns the times
// in [t0, t1) in increasing order; successive calls must use
// non-overlapping, increasing intervals until Reset.
type Schedule interface {
	Events(t0, t1 float64) []float64
	Reset()
}

// Regular is a schedule with events at T0, T0+Dt, T0+2Dt ... before Tstop.
type Regular struct {

	// time of first event, ms
	T0 float64

	// interval between events, ms
	Dt float64

	// no events at or after this time, ms
	Tstop float64
}

// NewRegular returns a regular schedule; use math.Inf(1) for tstop for no end.
func NewRegular(t0, dt, tstop float64) *Regular {
	return &Regular{T0: t0, Dt: dt, Tstop: tstop}
}

func (rs *Regular) Events(t0, t1 float64) []float64 {
	if rs.Dt <= 0 {
		return nil
	}
	t0 = math.Max(t0, rs.T0)
	t1 = math.Min(t1, rs.Tstop)
	if t0 >= t1 {
		return nil
	}
	var ts []float64
	n := math.Ceil((t0 - rs.T0) / rs.Dt)
	for t := rs.T0 + n*rs.Dt; t < t1; t = rs.T0 + n*rs.Dt {
		ts = append(ts, t)
		n++
	}
	return ts
}

func (rs *Regular) Reset() {}

// Explicit is a schedule given by a fixed list of times.
type Explicit struct {
	Times []float64
}

// NewExplicit returns an explicit schedule; the times are sorted.
func NewExplicit(times ...float64) *Explicit {
	ts := append([]float64(nil), times...)
	sort.Float64s(ts)
	return &Explicit{Times: ts}
}

func (es *Explicit) Events(t0, t1 float64) []float64 {
	lo := sort.SearchFloat64s(es.Times, t0)
	hi := sort.SearchFloat64s(es.Times, t1)
	if lo >= hi {
		return nil
	}
	return append([]float64(nil), es.Times[lo:hi]...)
}

func (es *Explicit) Reset() {}

// Poisson is a schedule with exponentially distributed intervals at
// rate RateKHz (events per ms) starting at T0. The same Seed always
// gives the same sequence.
type Poisson struct {
	T0      float64
	RateKHz float64
	Seed    int64

	rnd  *rand.Rand
	next float64
}

// NewPoisson returns a Poisson schedule.
func NewPoisson(t0, rateKHz float64, seed int64) *Poisson {
	ps := &Poisson{T0: t0, RateKHz: rateKHz, Seed: seed}
	ps.Reset()
	return ps
}

func (ps *Poisson) Reset() {
	ps.rnd = rand.New(rand.NewSource(ps.Seed))
	ps.next = ps.T0
	ps.step()
}

func (ps *Poisson) step() {
	if ps.RateKHz <= 0 {
		ps.next = math.Inf(1)
		return
	}
	ps.next += ps.rnd.ExpFloat64() / ps.RateKHz
}

func (ps *Poisson) Events(t0, t1 float64) []float64 {
	for ps.next < t0 {
		ps.step()
	}
	var ts []float64
	for ps.next < t1 {
		ts = append(ts, ps.next)
		ps.step()
	}
	return ts
}
