// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"
	"log"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
)

// Crossing is a threshold crossing of detector Lid at Time.
type Crossing struct {
	Lid  int
	Time float64
}

// detector is a threshold detector instance
type detector struct {
	cv   int
	thr  float32
	prev float32
}

// clamp is a current clamp instance
type clamp struct {
	cv int
	IClamp
}

// State is the integration state of one cable cell.
type State struct {
	Cell  *Cell
	Disc  *Discretization
	Props *Props

	// current time, ms
	Time float64

	// membrane potential of each CV, mV
	V []float32

	// mechanisms, density first then synapses
	Mechs []mech.Mechanism

	// pending events, by target lid
	Queue event.Queue

	cur, g, d, u, rhs []float32

	syns   []synRef
	dets   []detector
	clamps []clamp
}

// NewState discretizes the cell and instantiates its mechanisms from the
// catalogue of pr.
func NewState(c *Cell, pr *Props) (*State, error) {
	dz, err := Discretize(c, pr)
	if err != nil {
		return nil, err
	}
	cat := pr.Catalogue
	if cat == nil {
		cat = mech.DefaultCatalogue()
	}
	env := pr.Env(dz.TempK)
	st := &State{Cell: c, Disc: dz, Props: pr}
	n := dz.Size()
	st.V = make([]float32, n)
	st.cur = make([]float32, n)
	st.g = make([]float32, n)
	st.d = make([]float32, n)
	st.u = make([]float32, n)
	st.rhs = make([]float32, n)

	ds, lays := dz.DensityLayouts(c)
	for i, desc := range ds {
		if err := cat.Validate(desc, mech.Density); err != nil {
			return nil, err
		}
		m, err := cat.Instance(desc, env, lays[i])
		if err != nil {
			return nil, err
		}
		st.Mechs = append(st.Mechs, m)
	}

	// synapses sharing a description share a mechanism
	type synGroup struct {
		desc mech.Desc
		lay  mech.Layout
		lids []int
	}
	var sgs []*synGroup
	sgIdx := map[string]*synGroup{}
	st.syns = make([]synRef, c.NumTargets())
	for _, pl := range c.places {
		switch it := pl.Item.(type) {
		case Synapse:
			if err := cat.Validate(it.Mech, mech.Point); err != nil {
				return nil, err
			}
			key := it.Mech.Key()
			sg, has := sgIdx[key]
			if !has {
				sg = &synGroup{desc: it.Mech}
				sgIdx[key] = sg
				sgs = append(sgs, sg)
			}
			for i, lc := range pl.Locs {
				sg.lay.CV = append(sg.lay.CV, dz.CV(lc))
				sg.lay.Weight = append(sg.lay.Weight, 1)
				sg.lids = append(sg.lids, pl.Lid+i)
			}
		case ThresholdDetector:
			for _, lc := range pl.Locs {
				st.dets = append(st.dets, detector{cv: dz.CV(lc), thr: it.Threshold})
			}
		case IClamp:
			for _, lc := range pl.Locs {
				st.clamps = append(st.clamps, clamp{cv: dz.CV(lc), IClamp: it})
			}
		}
	}
	for _, sg := range sgs {
		m, err := cat.Instance(sg.desc, env, sg.lay)
		if err != nil {
			return nil, err
		}
		rc, ok := m.(mech.Receiver)
		if !ok {
			return nil, fmt.Errorf("cable: synapse mechanism %s can not receive events", sg.desc.Name)
		}
		st.Mechs = append(st.Mechs, m)
		for i, lid := range sg.lids {
			st.syns[lid] = synRef{mech: rc, inst: i}
		}
	}
	st.Reset()
	return st, nil
}

// Reset returns the state to the initial conditions at time 0.
func (st *State) Reset() {
	st.Time = 0
	copy(st.V, st.Disc.InitV)
	for _, m := range st.Mechs {
		m.Init(st.V)
	}
	for i := range st.dets {
		st.dets[i].prev = st.V[st.dets[i].cv]
	}
	st.Queue.Clear()
}

// Deliver queues an event for target lid ev.Target.Index.
func (st *State) Deliver(ev event.Event) {
	st.Queue.Push(ev)
}

// Step advances the state by dt ms, appending any threshold crossings to crs.
func (st *State) Step(dt float64, crs []Crossing) []Crossing {
	return st.stepTo(st.Time+dt, crs)
}

// stepTo advances the state to time t1 in one step.  Events before t1
// are delivered at the start of the step.
func (st *State) stepTo(t1 float64, crs []Crossing) []Crossing {
	t0 := st.Time
	dt := t1 - t0
	for {
		ev, ok := st.Queue.PopIfBefore(t1)
		if !ok {
			break
		}
		lid := ev.Target.Index
		if lid < 0 || lid >= len(st.syns) {
			log.Printf("cable: event for missing target %d on cell %d\n", lid, ev.Target.Gid)
			continue
		}
		sr := st.syns[lid]
		sr.mech.NetReceive(sr.inst, ev.Weight)
	}

	for i := range st.cur {
		st.cur[i] = 0
		st.g[i] = 0
	}
	for _, m := range st.Mechs {
		m.Current(st.V, st.cur, st.g)
	}
	for _, cl := range st.clamps {
		if t0 >= float64(cl.Delay) && t0 < float64(cl.Delay+cl.Duration) {
			st.cur[cl.cv] -= cl.Amplitude
		}
	}

	st.solve(float32(dt))

	for _, m := range st.Mechs {
		m.Update(st.V, float32(dt))
	}
	for i := range st.dets {
		dd := &st.dets[i]
		v := st.V[dd.cv]
		if dd.prev < dd.thr && v >= dd.thr {
			f := float64((dd.thr - dd.prev) / (v - dd.prev))
			crs = append(crs, Crossing{Lid: i, Time: t0 + f*dt})
		}
		dd.prev = v
	}
	st.Time = t1
	return crs
}

// solve performs the implicit Euler update of V by Hines elimination,
// using the currents and conductances accumulated at the old V.
func (st *State) solve(dt float32) {
	dz := st.Disc
	n := dz.Size()
	for i := 0; i < n; i++ {
		cdt := dz.Cap[i] / dt
		st.d[i] = cdt + st.g[i]
		st.rhs[i] = cdt*st.V[i] - st.cur[i] + st.g[i]*st.V[i]
		st.u[i] = 0
	}
	for i := 0; i < n; i++ {
		p := dz.Parent[i]
		if p < 0 {
			continue
		}
		ga := dz.Gax[i]
		st.d[i] += ga
		st.d[p] += ga
		st.u[i] = -ga
	}
	for i := n - 1; i > 0; i-- {
		p := dz.Parent[i]
		if p < 0 {
			continue
		}
		f := st.u[i] / st.d[i]
		st.d[p] -= f * st.u[i]
		st.rhs[p] -= f * st.rhs[i]
	}
	for i := 0; i < n; i++ {
		p := dz.Parent[i]
		if p < 0 {
			st.V[i] = st.rhs[i] / st.d[i]
			continue
		}
		st.V[i] = (st.rhs[i] - st.u[i]*st.V[p]) / st.d[i]
	}
}

// Advance integrates up to time tfinal with steps of at most dt,
// appending threshold crossings to crs.
func (st *State) Advance(tfinal, dt float64, crs []Crossing) []Crossing {
	t0 := st.Time
	for k := 1; st.Time < tfinal; k++ {
		t1 := t0 + float64(k)*dt
		if t1 >= tfinal-1e-9*dt {
			t1 = tfinal
		}
		crs = st.stepTo(t1, crs)
	}
	return crs
}
