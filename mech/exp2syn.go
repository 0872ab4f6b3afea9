// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Exp2SynParams control a bi-exponential conductance synapse, which rises
// with Tau1 and decays with Tau2, normalized so that a unit weight event
// peaks at a conductance of 1 µS.
type Exp2SynParams struct {

	// rise time constant, ms
	Tau1 float32 `def:"0.5"`

	// decay time constant, ms -- must NOT be same as Tau1
	Tau2 float32 `def:"2"`

	// reversal potential, mV
	E float32 `def:"0"`

	// time of peak conductance after an event, ms, computed from Tau1 and Tau2
	MaxTime float32 `inactive:"+"`

	// normalization factor so that the peak equals the weight
	Factor float32 `view:"-"`
}

func (sp *Exp2SynParams) Defaults() {
	sp.Tau1 = 0.5
	sp.Tau2 = 2
	sp.E = 0
	sp.Update()
}

func (sp *Exp2SynParams) Update() {
	sp.MaxTime = ((sp.Tau1 * sp.Tau2) / (sp.Tau2 - sp.Tau1)) * math32.Log(sp.Tau2/sp.Tau1)
	sp.Factor = 1 / (math32.Exp(-sp.MaxTime/sp.Tau2) - math32.Exp(-sp.MaxTime/sp.Tau1))
}

func (sp *Exp2SynParams) ptrs() paramPtrs {
	return paramPtrs{"tau1": &sp.Tau1, "tau2": &sp.Tau2, "e": &sp.E}
}

// Exp2Syn is the bi-exponential synapse: g = B - A, with A decaying at
// Tau1 and B at Tau2, and both jumping by weight * Factor on an event.
type Exp2Syn struct {
	Exp2SynParams
	Layout

	// rise component
	A []float32

	// decay component
	B []float32
}

// NewExp2Syn is the Factory for exp2syn.
func NewExp2Syn(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	es := &Exp2Syn{Layout: lay}
	es.Defaults()
	if err := es.ptrs().apply(ds); err != nil {
		return nil, err
	}
	if es.Tau1 <= 0 || es.Tau2 <= 0 || es.Tau1 == es.Tau2 {
		return nil, fmt.Errorf("mech: exp2syn requires distinct positive tau1 and tau2, got %g, %g", es.Tau1, es.Tau2)
	}
	es.Exp2SynParams.Update()
	es.A = make([]float32, lay.Len())
	es.B = make([]float32, lay.Len())
	return es, nil
}

func (es *Exp2Syn) Name() string { return "exp2syn" }
func (es *Exp2Syn) Kind() Kinds  { return Point }
func (es *Exp2Syn) Len() int     { return es.Layout.Len() }

func (es *Exp2Syn) Init(v []float32) {
	for i := range es.A {
		es.A[i] = 0
		es.B[i] = 0
	}
}

func (es *Exp2Syn) Current(v, cur, g []float32) {
	for i, cv := range es.CV {
		gs := es.B[i] - es.A[i]
		cur[cv] += gs * (v[cv] - es.E)
		g[cv] += gs
	}
}

func (es *Exp2Syn) Update(v []float32, dt float32) {
	da := math32.Exp(-dt / es.Tau1)
	db := math32.Exp(-dt / es.Tau2)
	for i := range es.A {
		es.A[i] *= da
		es.B[i] *= db
	}
}

func (es *Exp2Syn) NetReceive(inst int, weight float32) {
	es.A[inst] += weight * es.Factor
	es.B[inst] += weight * es.Factor
}

func (es *Exp2Syn) State(name string, inst int) (float32, bool) {
	if inst < 0 || inst >= len(es.A) {
		return 0, false
	}
	switch name {
	case "A":
		return es.A[inst], true
	case "B":
		return es.B[inst], true
	case "g":
		return es.B[inst] - es.A[inst], true
	}
	return 0, false
}

func exp2SynInfo() Info {
	sp := Exp2SynParams{}
	sp.Defaults()
	return Info{Name: "exp2syn", Kind: Point, Params: sp.ptrs().defaults(), States: []string{"A", "B", "g"}}
}
