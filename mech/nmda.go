// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "github.com/chewxy/math32"

// NMDAParams control an NMDA synapse with voltage dependent magnesium
// block, based on Jahr & Stevens (1990) as used in Brunel & Wang (2001).
// Rise time is 2 msec and not worth extra effort for biexponential.
type NMDAParams struct {

	// decay time constant, ms
	Tau float32 `def:"100"`

	// reversal potential, mV
	E float32 `def:"0"`

	// external magnesium concentration, mM
	Mg float32 `def:"1"`
}

func (np *NMDAParams) Defaults() {
	np.Tau = 100
	np.E = 0
	np.Mg = 1
}

func (np *NMDAParams) ptrs() paramPtrs {
	return paramPtrs{"tau": &np.Tau, "e": &np.E, "mg": &np.Mg}
}

// GFmV returns the fraction of unblocked channels at membrane potential v (mV)
func (np *NMDAParams) GFmV(v float32) float32 {
	return 1 / (1 + (np.Mg/3.57)*math32.Exp(-0.062*v))
}

// NMDA is a conductance synapse whose conductance jumps by the event
// weight (µS), decays exponentially, and is gated by GFmV.
type NMDA struct {
	NMDAParams
	Layout

	// conductance before magnesium block, µS
	G []float32

	// membrane potential at the last update, mV
	Vm []float32
}

// NewNMDA is the Factory for nmda.
func NewNMDA(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	ns := &NMDA{Layout: lay}
	ns.Defaults()
	if err := ns.ptrs().apply(ds); err != nil {
		return nil, err
	}
	ns.G = make([]float32, lay.Len())
	ns.Vm = make([]float32, lay.Len())
	return ns, nil
}

func (ns *NMDA) Name() string { return "nmda" }
func (ns *NMDA) Kind() Kinds  { return Point }
func (ns *NMDA) Len() int     { return ns.Layout.Len() }

func (ns *NMDA) Init(v []float32) {
	for i, cv := range ns.CV {
		ns.G[i] = 0
		ns.Vm[i] = v[cv]
	}
}

// Current linearizes around the block at the current voltage.
func (ns *NMDA) Current(v, cur, g []float32) {
	for i, cv := range ns.CV {
		ge := ns.G[i] * ns.GFmV(v[cv])
		cur[cv] += ge * (v[cv] - ns.E)
		g[cv] += ge
	}
}

func (ns *NMDA) Update(v []float32, dt float32) {
	dcy := math32.Exp(-dt / ns.Tau)
	for i, cv := range ns.CV {
		ns.G[i] *= dcy
		ns.Vm[i] = v[cv]
	}
}

func (ns *NMDA) NetReceive(inst int, weight float32) {
	ns.G[inst] += weight
}

func (ns *NMDA) State(name string, inst int) (float32, bool) {
	if inst < 0 || inst >= len(ns.G) {
		return 0, false
	}
	switch name {
	case "g":
		return ns.G[inst], true
	case "gblock":
		return ns.G[inst] * ns.GFmV(ns.Vm[inst]), true
	}
	return 0, false
}

func nmdaInfo() Info {
	np := NMDAParams{}
	np.Defaults()
	return Info{Name: "nmda", Kind: Point, Params: np.ptrs().defaults(), States: []string{"g", "gblock"}}
}
