// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"

	"github.com/chewxy/math32"
)

// GABABParams control a slow GABA-B synapse with bi-exponential time
// dynamics and the inward rectification of its GIRK channels, based on
// Brunel & Wang (2001) parameters.  An event of weight w produces a
// conductance that peaks at about w µS after MaxTime.
type GABABParams struct {

	// rise time for bi-exponential time dynamics, ms
	RiseTau float32 `def:"45"`

	// decay time for bi-exponential time dynamics, ms
	DecayTau float32 `def:"50"`

	// reversal potential, mV
	E float32 `def:"-90"`

	// time offset when peak conductance occurs, in msec, computed from RiseTau and DecayTau
	MaxTime float32 `inactive:"+"`

	// time constant factor used in integration: (Decay / Rise) ^ (Rise / (Decay - Rise))
	TauFact float32 `view:"-"`
}

func (gp *GABABParams) Defaults() {
	gp.RiseTau = 45
	gp.DecayTau = 50
	gp.E = -90
	gp.Update()
}

func (gp *GABABParams) Update() {
	gp.TauFact = math32.Pow(gp.DecayTau/gp.RiseTau, gp.RiseTau/(gp.DecayTau-gp.RiseTau))
	gp.MaxTime = ((gp.RiseTau * gp.DecayTau) / (gp.DecayTau - gp.RiseTau)) * math32.Log(gp.DecayTau/gp.RiseTau)
}

func (gp *GABABParams) ptrs() paramPtrs {
	return paramPtrs{"tau1": &gp.RiseTau, "tau2": &gp.DecayTau, "e": &gp.E}
}

// GFmV returns the GABA-B conductance as a function of membrane potential (mV)
func (gp *GABABParams) GFmV(v float32) float32 {
	return 1 / (1 + math32.Exp(0.1*((v+90)+10)))
}

// BiExp computes bi-exponential update, returns dG and dD deltas to add to g and gD
func (gp *GABABParams) BiExp(g, gD float32) (dG, dD float32) {
	dG = (gp.TauFact*gD - g) / gp.RiseTau
	dD = -gD / gp.DecayTau
	return
}

// GABAB is the GABA-B synapse: events drive the decay component D,
// which drives the conductance G.
type GABAB struct {
	GABABParams
	Layout

	// conductance, µS
	G []float32

	// decay component driving G
	D []float32
}

// NewGABAB is the Factory for gabab.
func NewGABAB(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	gs := &GABAB{Layout: lay}
	gs.Defaults()
	if err := gs.ptrs().apply(ds); err != nil {
		return nil, err
	}
	if gs.RiseTau <= 0 || gs.DecayTau <= 0 || gs.RiseTau == gs.DecayTau {
		return nil, fmt.Errorf("mech: gabab requires distinct positive tau1 and tau2, got %g, %g", gs.RiseTau, gs.DecayTau)
	}
	gs.GABABParams.Update()
	gs.G = make([]float32, lay.Len())
	gs.D = make([]float32, lay.Len())
	return gs, nil
}

func (gs *GABAB) Name() string { return "gabab" }
func (gs *GABAB) Kind() Kinds  { return Point }
func (gs *GABAB) Len() int     { return gs.Layout.Len() }

func (gs *GABAB) Init(v []float32) {
	for i := range gs.G {
		gs.G[i] = 0
		gs.D[i] = 0
	}
}

func (gs *GABAB) Current(v, cur, g []float32) {
	for i, cv := range gs.CV {
		ge := gs.G[i] * gs.GFmV(v[cv])
		cur[cv] += ge * (v[cv] - gs.E)
		g[cv] += ge
	}
}

func (gs *GABAB) Update(v []float32, dt float32) {
	for i := range gs.G {
		dG, dD := gs.BiExp(gs.G[i], gs.D[i])
		gs.G[i] += dt * dG
		gs.D[i] += dt * dD
	}
}

func (gs *GABAB) NetReceive(inst int, weight float32) {
	gs.D[inst] += weight
}

func (gs *GABAB) State(name string, inst int) (float32, bool) {
	if inst < 0 || inst >= len(gs.G) {
		return 0, false
	}
	switch name {
	case "g":
		return gs.G[inst], true
	case "d":
		return gs.D[inst], true
	}
	return 0, false
}

func gababInfo() Info {
	gp := GABABParams{}
	gp.Defaults()
	return Info{Name: "gabab", Kind: Point, Params: gp.ptrs().defaults(), States: []string{"g", "d"}}
}
