// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"sort"

	"github.com/emer/cable/cable"
	"github.com/emer/cable/event"
	"github.com/emer/cable/recipe"
)

// CellGroup is a set of cells of one kind that are updated together.
// Methods other than Advance are called from one goroutine only.
type CellGroup interface {

	// Kind of cells in the group
	Kind() recipe.CellKind

	// Gids of the cells, in order
	Gids() []int

	// Advance integrates all cells from t0 to t1 with time step dt,
	// collecting generated spikes
	Advance(t0, t1, dt float64)

	// Spikes returns the spikes generated since ClearSpikes
	Spikes() []event.Spike

	// ClearSpikes empties the spike buffer
	ClearSpikes()

	// Enqueue queues an event on cell idx of the group
	Enqueue(idx int, ev event.Event)

	// AddSampler attaches a sampling association for probe address addr on cell idx
	AddSampler(idx int, sa *sampleAssoc, addr any) error

	// Reset restores the initial state
	Reset()

	// Bytes estimates the memory used by cell state
	Bytes() int
}

// labeled cell descriptions resolve source and target labels to lids
type labeled interface {
	Targets(label string) (cable.LidRange, bool)
	Sources(label string) (cable.LidRange, bool)
}

// lidResolver picks lids for labels, keeping round-robin state per cell and label
type lidResolver struct {
	rr map[string]int
}

func newLidResolver() *lidResolver {
	return &lidResolver{rr: map[string]int{}}
}

func (lr *lidResolver) resolve(gid int, what string, lab recipe.Label, rng cable.LidRange, ok bool) (int, error) {
	if !ok || rng.Len() == 0 {
		return 0, fmt.Errorf("%w: no %s labeled %q on gid %d", recipe.ErrBadLabel, what, lab.Tag, gid)
	}
	if lab.Policy == event.AssertUnivalent {
		if rng.Len() != 1 {
			return 0, fmt.Errorf("%w: %s label %q on gid %d has %d items, not one", recipe.ErrBadLabel, what, lab.Tag, gid, rng.Len())
		}
		return rng.Begin, nil
	}
	key := fmt.Sprintf("%s/%d/%s", what, gid, lab.Tag)
	i := lr.rr[key]
	lr.rr[key] = i + 1
	return rng.Begin + i%rng.Len(), nil
}

// genTarget is an event generator with its target resolved
type genTarget struct {
	gen event.Generator
	tgt event.CellMember
}

// groupBase holds the parts common to all cell groups
type groupBase struct {
	kind    recipe.CellKind
	gids    []int
	gens    [][]genTarget
	samples [][]*sampleAssoc
	spikes  []event.Spike
}

func newGroupBase(kind recipe.CellKind, gids []int) groupBase {
	return groupBase{kind: kind, gids: gids, gens: make([][]genTarget, len(gids)), samples: make([][]*sampleAssoc, len(gids))}
}

func (gb *groupBase) Kind() recipe.CellKind { return gb.kind }
func (gb *groupBase) Gids() []int           { return gb.gids }
func (gb *groupBase) Spikes() []event.Spike { return gb.spikes }
func (gb *groupBase) ClearSpikes()          { gb.spikes = gb.spikes[:0] }

// addGenerators resolves the target labels of the generators of cell idx
func (gb *groupBase) addGenerators(idx int, lb labeled, gens []event.Generator, res *lidResolver) error {
	gid := gb.gids[idx]
	for _, gn := range gens {
		rng, ok := lb.Targets(gn.Target.Tag)
		lid, err := res.resolve(gid, "target", gn.Target, rng, ok)
		if err != nil {
			return err
		}
		gb.gens[idx] = append(gb.gens[idx], genTarget{gen: gn, tgt: event.CellMember{Gid: gid, Index: lid}})
	}
	return nil
}

// generate returns the generator events of cell idx in [t0, t1)
func (gb *groupBase) generate(idx int, t0, t1 float64) []event.Event {
	var evs []event.Event
	for i := range gb.gens[idx] {
		gt := &gb.gens[idx][i]
		evs = append(evs, gt.gen.Events(gt.tgt, t0, t1)...)
	}
	return evs
}

// sampleTime is a sample due at time t
type sampleTime struct {
	t  float64
	sa *sampleAssoc
}

// advanceCell advances cell idx from t0 to t1 with advanceTo, stopping at
// each sample time to record its samplers.
func (gb *groupBase) advanceCell(idx int, t0, t1 float64, advanceTo func(t float64)) {
	var sts []sampleTime
	for _, sa := range gb.samples[idx] {
		for _, t := range sa.sched.Events(t0, t1) {
			sts = append(sts, sampleTime{t: t, sa: sa})
		}
	}
	sort.SliceStable(sts, func(i, j int) bool { return sts[i].t < sts[j].t })
	for _, st := range sts {
		advanceTo(st.t)
		st.sa.record(st.t)
	}
	advanceTo(t1)
}

// resetBase resets generators and sample associations
func (gb *groupBase) resetBase() {
	for _, gts := range gb.gens {
		for i := range gts {
			gts[i].gen.Reset()
		}
	}
	for _, sas := range gb.samples {
		for _, sa := range sas {
			sa.reset()
		}
	}
	gb.spikes = gb.spikes[:0]
}
