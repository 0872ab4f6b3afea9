// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"

	"github.com/chewxy/math32"
)

// HHParams are the Hodgkin-Huxley squid axon channel densities and leak.
type HHParams struct {

	// maximal sodium conductance, S/cm²
	Gnabar float32 `def:"0.12"`

	// maximal potassium conductance, S/cm²
	Gkbar float32 `def:"0.036"`

	// leak conductance, S/cm²
	Gl float32 `def:"0.0003"`

	// leak reversal potential, mV
	El float32 `def:"-54.3"`
}

func (hp *HHParams) Defaults() {
	hp.Gnabar = 0.12
	hp.Gkbar = 0.036
	hp.Gl = 0.0003
	hp.El = -54.3
}

func (hp *HHParams) ptrs() paramPtrs {
	return paramPtrs{"gnabar": &hp.Gnabar, "gkbar": &hp.Gkbar, "gl": &hp.Gl, "el": &hp.El}
}

// vtrap computes x / (exp(x/y) - 1) avoiding the singularity at x = 0.
func vtrap(x, y float32) float32 {
	if math32.Abs(x/y) < 1e-6 {
		return y * (1 - x/y/2)
	}
	return x / (math32.Exp(x/y) - 1)
}

// HHRates holds the steady state and time constant of each gate at one voltage.
type HHRates struct {
	Minf, Mtau float32
	Hinf, Htau float32
	Ninf, Ntau float32
}

// Rates computes the gate kinetics at voltage v (mV), with q10 temperature scaling.
func Rates(v, q10 float32) HHRates {
	var rt HHRates
	am := 0.1 * vtrap(-(v + 40), 10)
	bm := 4 * math32.Exp(-(v+65)/18)
	rt.Mtau = 1 / (q10 * (am + bm))
	rt.Minf = am / (am + bm)

	ah := 0.07 * math32.Exp(-(v+65)/20)
	bh := 1 / (math32.Exp(-(v+35)/10) + 1)
	rt.Htau = 1 / (q10 * (ah + bh))
	rt.Hinf = ah / (ah + bh)

	an := 0.01 * vtrap(-(v + 55), 10)
	bn := 0.125 * math32.Exp(-(v+65)/80)
	rt.Ntau = 1 / (q10 * (an + bn))
	rt.Ninf = an / (an + bn)
	return rt
}

// Q10 returns the hh rate scaling for a temperature in degrees C.
func Q10(celsius float32) float32 {
	return math32.Pow(3, (celsius-6.3)/10)
}

// HH is the Hodgkin-Huxley sodium, potassium and leak channel mechanism.
type HH struct {
	HHParams
	Layout

	// sodium reversal potential, from the na ion
	Ena float32

	// potassium reversal potential, from the k ion
	Ek float32

	// rate scaling at the cell temperature
	Q10 float32

	// sodium activation gate
	M []float32

	// sodium inactivation gate
	H []float32

	// potassium activation gate
	N []float32
}

// NewHH is the Factory for hh.
func NewHH(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	hh := &HH{Layout: lay}
	hh.Defaults()
	if err := hh.ptrs().apply(ds); err != nil {
		return nil, err
	}
	var ok bool
	if hh.Ena, ok = env.Rev("na"); !ok {
		return nil, fmt.Errorf("mech: hh requires ion na")
	}
	if hh.Ek, ok = env.Rev("k"); !ok {
		return nil, fmt.Errorf("mech: hh requires ion k")
	}
	hh.Q10 = Q10(env.Celsius())
	n := lay.Len()
	hh.M = make([]float32, n)
	hh.H = make([]float32, n)
	hh.N = make([]float32, n)
	return hh, nil
}

func (hh *HH) Name() string  { return "hh" }
func (hh *HH) Kind() Kinds   { return Density }
func (hh *HH) Len() int      { return hh.Layout.Len() }

func (hh *HH) Init(v []float32) {
	for i, cv := range hh.CV {
		rt := Rates(v[cv], hh.Q10)
		hh.M[i] = rt.Minf
		hh.H[i] = rt.Hinf
		hh.N[i] = rt.Ninf
	}
}

func (hh *HH) Current(v, cur, g []float32) {
	for i, cv := range hh.CV {
		m, n := hh.M[i], hh.N[i]
		gna := hh.Gnabar * m * m * m * hh.H[i]
		gk := hh.Gkbar * n * n * n * n
		vm := v[cv]
		ic := gna*(vm-hh.Ena) + gk*(vm-hh.Ek) + hh.Gl*(vm-hh.El)
		sc := hh.Weight[i] * AreaScale
		cur[cv] += sc * ic
		g[cv] += sc * (gna + gk + hh.Gl)
	}
}

// Update integrates the gates exactly for fixed voltage over dt.
func (hh *HH) Update(v []float32, dt float32) {
	for i, cv := range hh.CV {
		rt := Rates(v[cv], hh.Q10)
		hh.M[i] += (1 - math32.Exp(-dt/rt.Mtau)) * (rt.Minf - hh.M[i])
		hh.H[i] += (1 - math32.Exp(-dt/rt.Htau)) * (rt.Hinf - hh.H[i])
		hh.N[i] += (1 - math32.Exp(-dt/rt.Ntau)) * (rt.Ninf - hh.N[i])
	}
}

func (hh *HH) State(name string, inst int) (float32, bool) {
	if inst < 0 || inst >= hh.Len() {
		return 0, false
	}
	switch name {
	case "m":
		return hh.M[inst], true
	case "h":
		return hh.H[inst], true
	case "n":
		return hh.N[inst], true
	}
	return 0, false
}

func hhInfo() Info {
	hp := HHParams{}
	hp.Defaults()
	return Info{Name: "hh", Kind: Density, Params: hp.ptrs().defaults(), States: []string{"m", "h", "n"}, Ions: []string{"na", "k"}}
}
