// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/c2h5oh/datasize"
	"github.com/emer/cable/cable"
	"github.com/emer/cable/event"
	"github.com/emer/cable/recipe"
	"github.com/goki/ki/kit"
)

// SpikeRecording selects which spikes a Simulation keeps.
type SpikeRecording int

//go:generate stringer -type=SpikeRecording

var KiT_SpikeRecording = kit.Enums.AddEnum(SpikeRecordingN, kit.NotBitFlag, nil)

func (ev SpikeRecording) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *SpikeRecording) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// RecordOff keeps no spikes
	RecordOff SpikeRecording = iota

	// RecordLocal keeps the spikes of cells on this rank
	RecordLocal

	// RecordAll keeps the spikes of all ranks
	RecordAll

	SpikeRecordingN
)

// cellRef locates a local cell: index of its group, and index within the group
type cellRef struct {
	group int
	idx   int
}

// synTarget is a connection endpoint, reached from a source detector
type synTarget struct {
	cell   cellRef
	target event.CellMember
	weight float32
	delay  float64
}

// Simulation advances the local cells of a model and exchanges their spikes.
type Simulation struct {
	Threads

	// model being simulated
	Recipe recipe.Recipe

	// assignment of cells to ranks and groups
	Decomp *Decomposition

	// resources
	Ctx *Context

	groups   []CellGroup
	cells    map[int]cellRef
	conns    map[event.CellMember][]synTarget
	minDelay float64
	epoch    float64
	time     float64

	recording SpikeRecording
	spikes    []event.Spike
	numSpikes int
	spikeFun  func(spikes []event.Spike)

	assocs []*sampleAssoc
}

// NewSimulation builds the cell groups of the local cells of dec and
// resolves the labels of their connections and event generators.
func NewSimulation(rec recipe.Recipe, dec *Decomposition, ctx *Context) (*Simulation, error) {
	sm := &Simulation{Recipe: rec, Decomp: dec, Ctx: ctx, cells: map[int]cellRef{}, conns: map[event.CellMember][]synTarget{}}
	res := newLidResolver()
	var pr *cable.Props
	for gi, gd := range dec.Groups {
		for _, gid := range gd.Gids {
			if k := rec.CellKind(gid); k != gd.Kind {
				return nil, fmt.Errorf("%w: gid %d is %v in a group of %v", recipe.ErrInconsistentKind, gid, k, gd.Kind)
			}
		}
		var cg CellGroup
		var err error
		switch gd.Kind {
		case recipe.Cable:
			if pr == nil {
				if pr, err = cableProps(rec); err != nil {
					return nil, err
				}
			}
			cg, err = newCableGroup(gd, rec, pr, res)
		case recipe.LIF:
			cg, err = newLIFGroup(gd, rec, res)
		case recipe.SpikeSource:
			cg, err = newSourceGroup(gd, rec)
		default:
			err = fmt.Errorf("sim: no cell group for kind %v", gd.Kind)
		}
		if err != nil {
			return nil, err
		}
		for idx, gid := range gd.Gids {
			sm.cells[gid] = cellRef{group: gi, idx: idx}
		}
		sm.groups = append(sm.groups, cg)
	}
	if err := sm.connect(res); err != nil {
		return nil, err
	}
	md, err := ctx.Dist.MinTime(sm.minDelay)
	if err != nil {
		return nil, err
	}
	sm.minDelay = md
	sm.epoch = md / 2
	sm.BuildThreads(sm.groups, ctx.Threads)
	sm.StartThreads()
	return sm, nil
}

// connect resolves the connections onto local cells, indexing them by source
func (sm *Simulation) connect(res *lidResolver) error {
	sm.minDelay = math.Inf(1)
	nc := sm.Recipe.NumCells()
	srcs := map[int]labeled{}
	gids := make([]int, 0, len(sm.cells))
	for gid := range sm.cells {
		gids = append(gids, gid)
	}
	sort.Ints(gids)
	for _, gid := range gids {
		cr := sm.cells[gid]
		if sm.groups[cr.group].Kind() == recipe.SpikeSource {
			if cns := sm.Recipe.ConnectionsOn(gid); len(cns) > 0 {
				return &recipe.ConnectionError{Gid: gid, Conn: cns[0], Err: recipe.ErrBadLabel}
			}
			continue
		}
		tlb, _ := sm.Recipe.CellDescription(gid).(labeled)
		for _, cn := range sm.Recipe.ConnectionsOn(gid) {
			sg := cn.Source.Gid
			if sg < 0 || sg >= nc {
				return &recipe.ConnectionError{Gid: gid, Conn: cn, Err: recipe.ErrBadGid}
			}
			if !(cn.Delay > 0) {
				return &recipe.ConnectionError{Gid: gid, Conn: cn, Err: recipe.ErrBadDelay}
			}
			slb, ok := srcs[sg]
			if !ok {
				slb, _ = sm.Recipe.CellDescription(sg).(labeled)
				if slb == nil {
					return &recipe.ConnectionError{Gid: gid, Conn: cn, Err: fmt.Errorf("%w: source description %T has no labels", recipe.ErrBadLabel, sm.Recipe.CellDescription(sg))}
				}
				srcs[sg] = slb
			}
			rng, ok := slb.Sources(cn.Source.Label.Tag)
			slid, err := res.resolve(sg, "source", cn.Source.Label, rng, ok)
			if err != nil {
				return &recipe.ConnectionError{Gid: gid, Conn: cn, Err: err}
			}
			rng, ok = tlb.Targets(cn.Target.Tag)
			tlid, err := res.resolve(gid, "target", cn.Target, rng, ok)
			if err != nil {
				return &recipe.ConnectionError{Gid: gid, Conn: cn, Err: err}
			}
			src := event.CellMember{Gid: sg, Index: slid}
			sm.conns[src] = append(sm.conns[src], synTarget{cell: cr, target: event.CellMember{Gid: gid, Index: tlid}, weight: cn.Weight, delay: cn.Delay})
			sm.minDelay = math.Min(sm.minDelay, cn.Delay)
		}
	}
	return nil
}

// Close stops the worker threads.
func (sm *Simulation) Close() {
	sm.StopThreads()
}

// MinDelay returns the smallest connection delay over all ranks, or +Inf
// if there are no connections.
func (sm *Simulation) MinDelay() float64 {
	return sm.minDelay
}

// Time returns the simulated time reached so far.
func (sm *Simulation) Time() float64 {
	return sm.time
}

// Groups returns the local cell groups.
func (sm *Simulation) Groups() []CellGroup {
	return sm.groups
}

// Record sets which spikes are kept.
func (sm *Simulation) Record(rc SpikeRecording) {
	sm.recording = rc
}

// SetSpikeCallback sets a function called at the end of each epoch with the
// spikes of all ranks generated in it.
func (sm *Simulation) SetSpikeCallback(fun func(spikes []event.Spike)) {
	sm.spikeFun = fun
}

// Sample samples probe pid on the given schedule, returning a handle for
// the results.  Probes of cells on other ranks give a handle with no samples.
func (sm *Simulation) Sample(pid ProbeID, sched event.Schedule) (Handle, error) {
	sa := &sampleAssoc{handle: Handle(len(sm.assocs)), probe: pid, sched: sched}
	cr, ok := sm.cells[pid.Gid]
	if !ok {
		if pid.Gid < 0 || pid.Gid >= sm.Recipe.NumCells() {
			return -1, fmt.Errorf("%w: probe %v", recipe.ErrBadGid, pid)
		}
		sm.assocs = append(sm.assocs, sa)
		return sa.handle, nil
	}
	pis := sm.Recipe.Probes(pid.Gid)
	if pid.Index < 0 || pid.Index >= len(pis) {
		return -1, fmt.Errorf("sim: gid %d has no probe %d", pid.Gid, pid.Index)
	}
	if err := sm.groups[cr.group].AddSampler(cr.idx, sa, pis[pid.Index].Address); err != nil {
		return -1, fmt.Errorf("sim: probe %v: %w", pid, err)
	}
	sm.assocs = append(sm.assocs, sa)
	return sa.handle, nil
}

// Samples returns the traces recorded for handle hd, one per probed location.
func (sm *Simulation) Samples(hd Handle) []Trace {
	if hd < 0 || int(hd) >= len(sm.assocs) {
		return nil
	}
	return sm.assocs[hd].traces
}

// Run advances the simulation to tfinal with time step dt, returning the
// time reached.
func (sm *Simulation) Run(tfinal, dt float64) (float64, error) {
	if !(dt > 0) {
		return sm.time, fmt.Errorf("sim: time step must be positive, got %g", dt)
	}
	for sm.time < tfinal {
		t0 := sm.time
		t1 := math.Min(t0+sm.epoch, tfinal)
		sm.ThrGroupFun(func(cg CellGroup) { cg.Advance(t0, t1, dt) }, "Advance")
		if err := sm.exchange(); err != nil {
			return sm.time, err
		}
		sm.time = t1
	}
	return sm.time, nil
}

// exchange gathers the spikes of the last epoch and queues their events
func (sm *Simulation) exchange() error {
	sm.FunTimerStart("Exchange")
	defer sm.FunTimerStop("Exchange")
	var local []event.Spike
	for _, cg := range sm.groups {
		local = append(local, cg.Spikes()...)
		cg.ClearSpikes()
	}
	all, err := sm.Ctx.Dist.GatherSpikes(local)
	if err != nil {
		return err
	}
	sm.numSpikes += len(all)
	switch sm.recording {
	case RecordLocal:
		sm.spikes = append(sm.spikes, local...)
	case RecordAll:
		sm.spikes = append(sm.spikes, all...)
	}
	if sm.spikeFun != nil && len(all) > 0 {
		sm.spikeFun(all)
	}
	for _, sp := range all {
		for _, st := range sm.conns[sp.Source] {
			sm.groups[st.cell.group].Enqueue(st.cell.idx, event.Event{Target: st.target, Time: sp.Time + st.delay, Weight: st.weight})
		}
	}
	return nil
}

// Spikes returns the recorded spikes, sorted by time and source.
func (sm *Simulation) Spikes() []event.Spike {
	sps := make([]event.Spike, len(sm.spikes))
	copy(sps, sm.spikes)
	sort.SliceStable(sps, func(i, j int) bool {
		if sps[i].Time != sps[j].Time {
			return sps[i].Time < sps[j].Time
		}
		return sps[i].Source.Less(sps[j].Source)
	})
	return sps
}

// NumSpikes returns the number of spikes generated on all ranks.
func (sm *Simulation) NumSpikes() int {
	return sm.numSpikes
}

// Reset restores all cells, generators and samplers to time 0 and
// clears the recorded spikes.  Label resolution is kept.
func (sm *Simulation) Reset() {
	for _, cg := range sm.groups {
		cg.Reset()
	}
	sm.time = 0
	sm.spikes = nil
	sm.numSpikes = 0
	sm.ThrTimerReset()
}

// SizeReport returns a summary of the local cells and their memory use.
func (sm *Simulation) SizeReport() string {
	nb := 0
	for _, cg := range sm.groups {
		nb += cg.Bytes()
	}
	ncon := 0
	for _, sts := range sm.conns {
		ncon += len(sts)
	}
	nb += ncon * (3*8 + 4 + 8)
	return fmt.Sprintf("rank %d: %d cells in %d groups, %d connections, state: %s", sm.Decomp.DomainID, sm.Decomp.NumLocalCells, len(sm.groups), ncon, datasize.ByteSize(nb).HumanReadable())
}

// ThreadReport logs the thread allocation.
func (sm *Simulation) ThreadReport() {
	for t, gps := range sm.ThrGroups {
		n := 0
		for _, cg := range gps {
			n += len(cg.Gids())
		}
		log.Printf("Simulation thread %d: %d groups, %d cells\n", t, len(gps), n)
	}
}
