// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

// PasParams are the passive leak channel parameters.
type PasParams struct {

	// leak conductance, S/cm²
	G float32 `def:"0.001"`

	// leak reversal potential, mV
	E float32 `def:"-70"`
}

func (pp *PasParams) Defaults() {
	pp.G = 0.001
	pp.E = -70
}

func (pp *PasParams) ptrs() paramPtrs {
	return paramPtrs{"g": &pp.G, "e": &pp.E}
}

// Pas is a passive leak conductance.
type Pas struct {
	PasParams
	Layout
}

// NewPas is the Factory for pas.
func NewPas(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	ps := &Pas{Layout: lay}
	ps.Defaults()
	if err := ps.ptrs().apply(ds); err != nil {
		return nil, err
	}
	return ps, nil
}

func (ps *Pas) Name() string                 { return "pas" }
func (ps *Pas) Kind() Kinds                  { return Density }
func (ps *Pas) Len() int                     { return ps.Layout.Len() }
func (ps *Pas) Init(v []float32)             {}
func (ps *Pas) Update(v []float32, dt float32) {}

func (ps *Pas) Current(v, cur, g []float32) {
	for i, cv := range ps.CV {
		sc := ps.Weight[i] * AreaScale
		cur[cv] += sc * ps.G * (v[cv] - ps.E)
		g[cv] += sc * ps.G
	}
}

func (ps *Pas) State(name string, inst int) (float32, bool) {
	return 0, false
}

func pasInfo() Info {
	pp := PasParams{}
	pp.Defaults()
	return Info{Name: "pas", Kind: Density, Params: pp.ptrs().defaults()}
}
