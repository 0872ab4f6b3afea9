// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/cable/cable"
	"github.com/emer/cable/event"
	"github.com/emer/cable/morph"
	"github.com/emer/cable/recipe"
)

// chainRecipe is a spike source driving a chain of LIF cells, repeated in
// blocks of 3 cells: source, lif, lif.
type chainRecipe struct {
	ncells   int
	times    []float64
	weight   float32
	delay    float64
	gens     map[int][]event.Generator
	extra    map[int][]recipe.Connection
	kindOver map[int]recipe.CellKind
}

func newChainRecipe(ncells int) *chainRecipe {
	return &chainRecipe{ncells: ncells, times: []float64{1, 5}, weight: 250, delay: 2}
}

func (cr *chainRecipe) NumCells() int { return cr.ncells }

func (cr *chainRecipe) CellKind(gid int) recipe.CellKind {
	if k, ok := cr.kindOver[gid]; ok {
		return k
	}
	if gid%3 == 0 {
		return recipe.SpikeSource
	}
	return recipe.LIF
}

func (cr *chainRecipe) CellDescription(gid int) any {
	if gid%3 == 0 {
		return NewSpikeSourceCell("src", event.NewExplicit(cr.times...))
	}
	return NewLIFCell("src", "tgt")
}

func (cr *chainRecipe) ConnectionsOn(gid int) []recipe.Connection {
	var cns []recipe.Connection
	switch gid % 3 {
	case 1:
		cns = append(cns, recipe.NewConnection(gid-1, "src", "tgt", cr.weight, cr.delay))
	case 2:
		cns = append(cns, recipe.NewConnection(gid-1, "src", "tgt", cr.weight, cr.delay/2))
	}
	return append(cns, cr.extra[gid]...)
}

func (cr *chainRecipe) EventGenerators(gid int) []event.Generator {
	return cr.gens[gid]
}

func (cr *chainRecipe) Probes(gid int) []recipe.ProbeInfo {
	if gid%3 == 0 {
		return nil
	}
	return []recipe.ProbeInfo{{Tag: 0, Address: LIFVoltage{}}}
}

func (cr *chainRecipe) GlobalProperties(kind recipe.CellKind) any {
	return nil
}

func newSim(t *testing.T, rec recipe.Recipe, ctx *Context, hints PartitionHintMap) *Simulation {
	t.Helper()
	dc, err := PartitionLoadBalance(rec, ctx, hints)
	if err != nil {
		t.Fatal(err)
	}
	sm, err := NewSimulation(rec, dc, ctx)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sm.Close)
	return sm
}

type spikeAt struct {
	gid int
	t   float64
}

func checkSpikes(t *testing.T, sps []event.Spike, want []spikeAt) {
	t.Helper()
	if len(sps) != len(want) {
		t.Fatalf("got %d spikes, want %d: %v", len(sps), len(want), sps)
	}
	for i, sp := range sps {
		if sp.Source.Gid != want[i].gid || math.Abs(sp.Time-want[i].t) > 1e-9 {
			t.Errorf("spike %d: got %v, want gid %d at %g", i, sp, want[i].gid, want[i].t)
		}
	}
}

func TestPartition(t *testing.T) {
	rec := newChainRecipe(10)
	ctx := NewDryRunContext(2, 5)
	dc, err := PartitionLoadBalance(rec, ctx, PartitionHintMap{recipe.LIF: {GroupSize: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if dc.NumDomains != 2 || dc.NumLocalCells != 5 || dc.NumGlobalCells != 10 {
		t.Errorf("decomposition: %+v", dc)
	}
	// local gids 0..4: sources 0, 3; lif 1, 2, 4
	if len(dc.Groups) != 4 {
		t.Fatalf("groups: %v", dc.Groups)
	}
	if dc.Groups[0].Kind != recipe.LIF || len(dc.Groups[0].Gids) != 2 || dc.Groups[1].Gids[0] != 4 {
		t.Errorf("lif groups: %v", dc.Groups)
	}
	if dc.Groups[2].Kind != recipe.SpikeSource || dc.Groups[2].Gids[0] != 0 || dc.Groups[3].Gids[0] != 3 {
		t.Errorf("source groups: %v", dc.Groups)
	}
	if dc.GidDomain(4) != 0 || dc.GidDomain(5) != 1 || !dc.IsLocal(0) || dc.IsLocal(7) {
		t.Errorf("gid domains")
	}

	// uneven blocks
	dc, err = PartitionLoadBalance(newChainRecipe(7), &Context{Threads: 1, Dist: &fakeRanks{size: 3, id: 2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if dc.NumLocalCells != 2 || !dc.IsLocal(5) || !dc.IsLocal(6) || dc.GidDomain(2) != 0 || dc.GidDomain(3) != 1 {
		t.Errorf("uneven decomposition: %+v", dc)
	}

	if _, err := PartitionLoadBalance(newChainRecipe(9), NewDryRunContext(2, 5), nil); err == nil {
		t.Errorf("dry run with wrong cell count should fail")
	}
}

// fakeRanks is a communicator for one rank of many, used for decomposition only
type fakeRanks struct {
	localDist
	size, id int
}

func (fr *fakeRanks) Size() int { return fr.size }
func (fr *fakeRanks) ID() int   { return fr.id }

func TestChain(t *testing.T) {
	rec := newChainRecipe(3)
	sm := newSim(t, rec, NewContextThreads(2), nil)
	if sm.MinDelay() != 1 {
		t.Errorf("min delay: %v", sm.MinDelay())
	}
	sm.Record(RecordAll)
	ncb := 0
	sm.SetSpikeCallback(func(sps []event.Spike) { ncb += len(sps) })
	tm, err := sm.Run(10, 0.025)
	if err != nil {
		t.Fatal(err)
	}
	if tm != 10 {
		t.Errorf("run ended at %v", tm)
	}
	want := []spikeAt{{0, 1}, {1, 3}, {2, 4}, {0, 5}, {1, 7}, {2, 8}}
	checkSpikes(t, sm.Spikes(), want)
	if sm.NumSpikes() != 6 || ncb != 6 {
		t.Errorf("spike count %d, callback %d", sm.NumSpikes(), ncb)
	}

	// reset reproduces the run
	sm.Reset()
	if sm.Time() != 0 || len(sm.Spikes()) != 0 {
		t.Errorf("reset did not clear")
	}
	sm.Run(10, 0.025)
	checkSpikes(t, sm.Spikes(), want)

	if !strings.Contains(sm.SizeReport(), "3 cells") {
		t.Errorf("size report: %s", sm.SizeReport())
	}
}

func TestCloseTwice(t *testing.T) {
	rec := newChainRecipe(3)
	sm := newSim(t, rec, NewContextThreads(2), nil)
	if sm.NThreads != 2 {
		t.Fatalf("threads: %d", sm.NThreads)
	}
	sm.Record(RecordAll)
	sm.Close()
	sm.Close()
	// runs in the calling thread once stopped
	if _, err := sm.Run(10, 0.025); err != nil {
		t.Fatal(err)
	}
	checkSpikes(t, sm.Spikes(), []spikeAt{{0, 1}, {1, 3}, {2, 4}, {0, 5}, {1, 7}, {2, 8}})
}

func TestLIF(t *testing.T) {
	rec := newChainRecipe(3)
	rec.times = nil
	rec.gens = map[int][]event.Generator{1: {
		event.NewGenerator("tgt", 120, event.NewExplicit(1, 1.1)),
		event.NewGenerator("tgt", 250, event.NewExplicit(2, 3.5)),
	}}
	sm := newSim(t, rec, NewContextThreads(1), nil)
	sm.Record(RecordLocal)
	hd, err := sm.Sample(ProbeID{Gid: 1, Index: 0}, event.NewExplicit(1.05, 2.5, 3.2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sm.Sample(ProbeID{Gid: 1, Index: 1}, event.NewExplicit(1)); err == nil {
		t.Errorf("missing probe should fail")
	}
	if _, err := sm.Sample(ProbeID{Gid: 0, Index: 0}, event.NewExplicit(1)); err == nil {
		t.Errorf("spike source probe should fail")
	}
	sm.Run(6, 0.1)
	// 120/20 = 6 mV twice within 0.1 ms crosses 10 mV; the event at 2 is
	// refractory; 250/20 = 12.5 mV spikes directly.  Each gid 1 spike
	// reaches gid 2 after 1 ms.
	checkSpikes(t, sm.Spikes(), []spikeAt{{1, 1.1}, {2, 2.1}, {1, 3.5}, {2, 4.5}})

	trs := sm.Samples(hd)
	if len(trs) != 1 || trs[0].Len() != 3 {
		t.Fatalf("samples: %v", trs)
	}
	vs := trs[0].Values
	if math32.Abs(vs[0]-6*math32.Exp(-0.005)) > 1e-5 {
		t.Errorf("decayed potential: %v", vs[0])
	}
	if vs[1] != 0 {
		t.Errorf("refractory potential: %v", vs[1])
	}
	// 3.2 is past the refractory end at 3.1, with V back at Vreset
	if math32.Abs(vs[2]) > 1e-6 {
		t.Errorf("potential after refractory: %v", vs[2])
	}
	if trs[0].Times[0] != 1.05 || trs[0].Probe.Gid != 1 {
		t.Errorf("trace: %+v", trs[0])
	}
}

func TestDryRun(t *testing.T) {
	rec := newChainRecipe(6)
	sm := newSim(t, rec, NewDryRunContext(2, 3), nil)
	sm.Record(RecordAll)
	sm.Run(10, 0.025)
	sps := sm.Spikes()
	if len(sps) != 12 || sm.NumSpikes() != 12 {
		t.Fatalf("dry run spikes: %v", sps)
	}
	checkSpikes(t, sps[:4], []spikeAt{{0, 1}, {3, 1}, {1, 3}, {4, 3}})

	hd, err := sm.Sample(ProbeID{Gid: 4, Index: 0}, event.NewExplicit(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(sm.Samples(hd)) != 0 {
		t.Errorf("remote probe should have no samples")
	}

	sm.Reset()
	sm.Record(RecordLocal)
	sm.Run(10, 0.025)
	if len(sm.Spikes()) != 6 || sm.NumSpikes() != 12 {
		t.Errorf("local recording: %v of %d", sm.Spikes(), sm.NumSpikes())
	}
}

func TestNoConnections(t *testing.T) {
	rec := newChainRecipe(1)
	sm := newSim(t, rec, NewContext(), nil)
	if !math.IsInf(sm.MinDelay(), 1) {
		t.Errorf("min delay without connections: %v", sm.MinDelay())
	}
	sm.Record(RecordAll)
	sm.Run(3, 0.1)
	checkSpikes(t, sm.Spikes(), []spikeAt{{0, 1}})
	sm.Run(6, 0.1)
	checkSpikes(t, sm.Spikes(), []spikeAt{{0, 1}, {0, 5}})
}

func TestSimErrors(t *testing.T) {
	ctx := NewContextThreads(1)
	build := func(rec recipe.Recipe) error {
		dc, err := PartitionLoadBalance(rec, ctx, nil)
		if err != nil {
			return err
		}
		sm, err := NewSimulation(rec, dc, ctx)
		if err == nil {
			sm.Close()
		}
		return err
	}

	rec := newChainRecipe(3)
	rec.extra = map[int][]recipe.Connection{2: {recipe.NewConnection(7, "src", "tgt", 1, 1)}}
	if err := build(rec); !errors.Is(err, recipe.ErrBadGid) {
		t.Errorf("bad gid: %v", err)
	}
	var ce *recipe.ConnectionError
	if err := build(rec); !errors.As(err, &ce) || ce.Gid != 2 {
		t.Errorf("connection error: %v", err)
	}

	rec.extra = map[int][]recipe.Connection{2: {recipe.NewConnection(0, "src", "tgt", 1, 0)}}
	if err := build(rec); !errors.Is(err, recipe.ErrBadDelay) {
		t.Errorf("bad delay: %v", err)
	}

	rec.extra = map[int][]recipe.Connection{2: {recipe.NewConnection(0, "nope", "tgt", 1, 1)}}
	if err := build(rec); !errors.Is(err, recipe.ErrBadLabel) {
		t.Errorf("bad source label: %v", err)
	}

	rec.extra = map[int][]recipe.Connection{2: {recipe.NewConnection(0, "src", "nope", 1, 1)}}
	if err := build(rec); !errors.Is(err, recipe.ErrBadLabel) {
		t.Errorf("bad target label: %v", err)
	}

	rec.extra = map[int][]recipe.Connection{0: {recipe.NewConnection(1, "src", "tgt", 1, 1)}}
	if err := build(rec); !errors.Is(err, recipe.ErrBadLabel) {
		t.Errorf("connection onto spike source: %v", err)
	}

	rec.extra = nil
	rec.gens = map[int][]event.Generator{1: {event.NewGenerator("nope", 1, event.NewExplicit(1))}}
	if err := build(rec); !errors.Is(err, recipe.ErrBadLabel) {
		t.Errorf("bad generator label: %v", err)
	}

	rec.gens = nil
	rec.kindOver = map[int]recipe.CellKind{1: recipe.Cable}
	if err := build(rec); !errors.Is(err, recipe.ErrInconsistentKind) {
		t.Errorf("inconsistent kind: %v", err)
	}

	rec.kindOver = map[int]recipe.CellKind{0: recipe.LIF}
	if err := build(rec); !errors.Is(err, recipe.ErrInconsistentKind) {
		t.Errorf("inconsistent kind: %v", err)
	}
}

func TestAssertUnivalent(t *testing.T) {
	rec := newChainRecipe(3)
	cn := recipe.NewConnection(0, "src", "tgt", 1, 1)
	cn.Source.Label.Policy = event.AssertUnivalent
	rec.extra = map[int][]recipe.Connection{2: {cn}}
	newSim(t, rec, NewContextThreads(1), nil)
}

// clampRecipe is an hh soma driven by a current clamp, connected to a LIF cell.
type clampRecipe struct {
	cell *cable.Cell
}

func (cr *clampRecipe) NumCells() int { return 2 }

func (cr *clampRecipe) CellKind(gid int) recipe.CellKind {
	if gid == 0 {
		return recipe.Cable
	}
	return recipe.LIF
}

func (cr *clampRecipe) CellDescription(gid int) any {
	if gid == 0 {
		return cr.cell
	}
	return NewLIFCell("lif", "in")
}

func (cr *clampRecipe) ConnectionsOn(gid int) []recipe.Connection {
	if gid == 1 {
		return []recipe.Connection{recipe.NewConnection(0, "det", "in", 250, 1)}
	}
	return nil
}

func (cr *clampRecipe) EventGenerators(gid int) []event.Generator { return nil }

func (cr *clampRecipe) Probes(gid int) []recipe.ProbeInfo {
	if gid == 0 {
		return []recipe.ProbeInfo{{Tag: 0, Address: cable.MembraneVoltage{Locset: "(root)"}}}
	}
	return nil
}

func (cr *clampRecipe) GlobalProperties(kind recipe.CellKind) any {
	if kind == recipe.Cable {
		return cable.NewNeuronProps()
	}
	return nil
}

func TestCableGroup(t *testing.T) {
	dc := cable.NewDecor()
	for _, err := range []error{
		dc.Paint("(all)", cable.NewDensity("hh")),
		dc.Place("(root)", cable.ThresholdDetector{Threshold: -10}, "det"),
		dc.Place("(root)", cable.IClamp{Delay: 1, Duration: 20, Amplitude: 0.1}, "clamp"),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	dc.SetDiscretization(cable.FixedPerBranch{N: 1})
	st := morph.NewSegmentTree()
	st.Append(morph.MNpos, morph.NewPoint(0, 0, 0, 6), morph.NewPoint(12, 0, 0, 6), morph.TagSoma)
	c, err := cable.NewCell(st, nil, dc)
	if err != nil {
		t.Fatal(err)
	}
	rec := &clampRecipe{cell: c}
	sm := newSim(t, rec, NewContextThreads(2), nil)
	sm.Record(RecordAll)
	hd, err := sm.Sample(ProbeID{Gid: 0, Index: 0}, event.NewRegular(0, 0.5, 30))
	if err != nil {
		t.Fatal(err)
	}
	sm.Run(30, 0.025)
	var soma, lif []float64
	for _, sp := range sm.Spikes() {
		if sp.Source.Gid == 0 {
			soma = append(soma, sp.Time)
		} else {
			lif = append(lif, sp.Time)
		}
	}
	if len(soma) == 0 || len(lif) == 0 {
		t.Fatalf("soma spikes %v, lif spikes %v", soma, lif)
	}
	if soma[0] < 1.5 || soma[0] > 3.5 {
		t.Errorf("first soma spike: %v", soma[0])
	}
	if math.Abs(lif[0]-(soma[0]+1)) > 1e-9 {
		t.Errorf("lif spike %v should follow soma spike %v by the delay", lif[0], soma[0])
	}
	trs := sm.Samples(hd)
	if len(trs) != 1 || trs[0].Len() != 60 {
		t.Fatalf("soma trace: %v", len(trs))
	}
	if math32.Abs(trs[0].Values[0]+65) > 1e-4 {
		t.Errorf("initial potential: %v", trs[0].Values[0])
	}
}
