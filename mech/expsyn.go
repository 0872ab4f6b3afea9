// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "github.com/chewxy/math32"

// ExpSynParams are the parameters of a single exponential conductance synapse.
type ExpSynParams struct {

	// decay time constant, ms
	Tau float32 `def:"2"`

	// reversal potential, mV
	E float32 `def:"0"`
}

func (sp *ExpSynParams) Defaults() {
	sp.Tau = 2
	sp.E = 0
}

func (sp *ExpSynParams) ptrs() paramPtrs {
	return paramPtrs{"tau": &sp.Tau, "e": &sp.E}
}

// ExpSyn is a conductance synapse that jumps by the event weight (µS) and
// decays exponentially.
type ExpSyn struct {
	ExpSynParams
	Layout

	// conductance, µS
	G []float32
}

// NewExpSyn is the Factory for expsyn.
func NewExpSyn(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	es := &ExpSyn{Layout: lay}
	es.Defaults()
	if err := es.ptrs().apply(ds); err != nil {
		return nil, err
	}
	es.G = make([]float32, lay.Len())
	return es, nil
}

func (es *ExpSyn) Name() string { return "expsyn" }
func (es *ExpSyn) Kind() Kinds  { return Point }
func (es *ExpSyn) Len() int     { return es.Layout.Len() }

func (es *ExpSyn) Init(v []float32) {
	for i := range es.G {
		es.G[i] = 0
	}
}

func (es *ExpSyn) Current(v, cur, g []float32) {
	for i, cv := range es.CV {
		cur[cv] += es.G[i] * (v[cv] - es.E)
		g[cv] += es.G[i]
	}
}

func (es *ExpSyn) Update(v []float32, dt float32) {
	dcy := math32.Exp(-dt / es.Tau)
	for i := range es.G {
		es.G[i] *= dcy
	}
}

func (es *ExpSyn) NetReceive(inst int, weight float32) {
	es.G[inst] += weight
}

func (es *ExpSyn) State(name string, inst int) (float32, bool) {
	if name != "g" || inst < 0 || inst >= len(es.G) {
		return 0, false
	}
	return es.G[inst], true
}

func expSynInfo() Info {
	sp := ExpSynParams{}
	sp.Defaults()
	return Info{Name: "expsyn", Kind: Point, Params: sp.ptrs().defaults(), States: []string{"g"}}
}
