// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"strings"
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-4)

func testEnv() *Env {
	is := Ions{}
	is.Defaults()
	return &Env{TempK: 279.45, Erev: map[string]float32{"na": is.Na.InitRevPot, "k": is.K.InitRevPot, "ca": is.Ca.InitRevPot}}
}

func TestHHRest(t *testing.T) {
	rt := Rates(-65, 1)
	cor := []float32{0.05293, 0.59612, 0.31768}
	got := []float32{rt.Minf, rt.Hinf, rt.Ninf}
	for i := range cor {
		if dif := math32.Abs(got[i] - cor[i]); dif > difTol {
			t.Errorf("gate %d: got %v, cor %v, dif %v", i, got[i], cor[i], dif)
		}
	}
	if q := Q10(6.3); math32.Abs(q-1) > 1e-6 {
		t.Errorf("Q10 at 6.3C should be 1, got %v", q)
	}

	ct := DefaultCatalogue()
	lay := Layout{CV: []int{0, 1}, Weight: []float32{100, 200}}
	m, err := ct.Instance(NewDesc("hh"), testEnv(), lay)
	if err != nil {
		t.Fatal(err)
	}
	v := []float32{-65, -65}
	m.Init(v)
	m0, _ := m.State("m", 0)
	if math32.Abs(m0-cor[0]) > difTol {
		t.Errorf("init m: got %v, cor %v", m0, cor[0])
	}
	// steady state at fixed voltage
	m.Update(v, 0.025)
	m1, _ := m.State("m", 0)
	if math32.Abs(m1-m0) > 1e-6 {
		t.Errorf("m should stay at steady state, %v -> %v", m0, m1)
	}
	cur := make([]float32, 2)
	g := make([]float32, 2)
	m.Current(v, cur, g)
	// current and conductance scale with area
	if math32.Abs(cur[1]-2*cur[0]) > 1e-6 || math32.Abs(g[1]-2*g[0]) > 1e-6 {
		t.Errorf("current should scale with area: %v %v", cur, g)
	}
	if g[0] <= 0 {
		t.Errorf("conductance should be positive: %v", g[0])
	}
	if _, ok := m.State("x", 0); ok {
		t.Errorf("unknown state should not be found")
	}
}

func TestHHMissingIon(t *testing.T) {
	ct := DefaultCatalogue()
	_, err := ct.Instance(NewDesc("hh"), &Env{TempK: 279.45, Erev: map[string]float32{"na": 50}}, Layout{CV: []int{0}, Weight: []float32{1}})
	if err == nil || !strings.Contains(err.Error(), "ion k") {
		t.Errorf("expected missing ion error, got %v", err)
	}
}

func TestPas(t *testing.T) {
	ct := DefaultCatalogue()
	m, err := ct.Instance(NewDesc("pas").Set("e", -65), testEnv(), Layout{CV: []int{0}, Weight: []float32{100}})
	if err != nil {
		t.Fatal(err)
	}
	cur := []float32{0}
	g := []float32{0}
	m.Current([]float32{-55}, cur, g)
	// 0.001 S/cm² * 100 µm² * 1e-2 = 0.001 µS; * 10 mV = 0.01 nA
	if math32.Abs(g[0]-0.001) > 1e-7 || math32.Abs(cur[0]-0.01) > 1e-6 {
		t.Errorf("pas: got i %v g %v", cur[0], g[0])
	}
}

func TestExpSyn(t *testing.T) {
	ct := DefaultCatalogue()
	m, err := ct.Instance(NewDesc("expsyn"), testEnv(), Layout{CV: []int{0}})
	if err != nil {
		t.Fatal(err)
	}
	rc, ok := m.(Receiver)
	if !ok {
		t.Fatal("expsyn should be a Receiver")
	}
	v := []float32{-65}
	m.Init(v)
	rc.NetReceive(0, 0.01)
	for i := 0; i < 80; i++ { // 2 ms = tau
		m.Update(v, 0.025)
	}
	g, _ := m.State("g", 0)
	cor := 0.01 * math32.Exp(-1)
	if dif := math32.Abs(g - cor); dif > 1e-6 {
		t.Errorf("expsyn decay: got %v, cor %v", g, cor)
	}
	cur := []float32{0}
	gs := []float32{0}
	m.Current(v, cur, gs)
	if cur[0] >= 0 {
		t.Errorf("excitatory synapse current should be inward (negative), got %v", cur[0])
	}
}

func TestExp2SynPeak(t *testing.T) {
	ct := DefaultCatalogue()
	m, err := ct.Instance(NewDesc("exp2syn"), testEnv(), Layout{CV: []int{0}})
	if err != nil {
		t.Fatal(err)
	}
	v := []float32{-65}
	m.Init(v)
	m.(Receiver).NetReceive(0, 0.02)
	mx := float32(0)
	for i := 0; i < 400; i++ {
		m.Update(v, 0.025)
		g, _ := m.State("g", 0)
		if g > mx {
			mx = g
		}
	}
	if mx > 0.02*1.0001 || mx < 0.02*0.99 {
		t.Errorf("exp2syn peak should equal the weight: got %v", mx)
	}
	_, err = ct.Instance(NewDesc("exp2syn").Set("tau1", 2), testEnv(), Layout{CV: []int{0}})
	if err == nil {
		t.Errorf("equal time constants should be rejected")
	}
}

func TestNMDA(t *testing.T) {
	ct := DefaultCatalogue()
	m, err := ct.Instance(NewDesc("nmda"), testEnv(), Layout{CV: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	v := []float32{0, -65}
	m.Init(v)
	m.(Receiver).NetReceive(0, 0.01)
	cur := make([]float32, 2)
	g := make([]float32, 2)
	m.Current(v, cur, g)
	// magnesium block at rest
	cor := 0.01 * float32(0.0596682)
	if dif := math32.Abs(g[1] - cor); dif > 1e-6 {
		t.Errorf("blocked conductance at -65: got %v, cor %v", g[1], cor)
	}
	if dif := math32.Abs(cur[1] - cor*-65); dif > 1e-5 || g[0] != 0 {
		t.Errorf("current at -65: got %v", cur[1])
	}
	v[1] = 0
	for i := 0; i < 40; i++ {
		m.Update(v, 0.025)
	}
	gb, _ := m.State("gblock", 0)
	cor = 0.01 * math32.Exp(-1.0/100) * 0.7811816
	if dif := math32.Abs(gb - cor); dif > 1e-6 {
		t.Errorf("unblocked conductance at 0: got %v, cor %v", gb, cor)
	}
}

func TestGABABPeak(t *testing.T) {
	ct := DefaultCatalogue()
	m, err := ct.Instance(NewDesc("gabab"), testEnv(), Layout{CV: []int{0}})
	if err != nil {
		t.Fatal(err)
	}
	gb := m.(*GABAB)
	if dif := math32.Abs(gb.MaxTime - 47.41223); dif > 1e-3 {
		t.Errorf("max time: %v", gb.MaxTime)
	}
	v := []float32{-65}
	m.Init(v)
	m.(Receiver).NetReceive(0, 0.01)
	mx := float32(0)
	tmx := 0
	for i := 0; i < 8000; i++ {
		m.Update(v, 0.025)
		g, _ := m.State("g", 0)
		if g > mx {
			mx, tmx = g, i+1
		}
	}
	if mx > 0.01*1.002 || mx < 0.01*0.998 {
		t.Errorf("gabab peak should be about the weight: got %v", mx)
	}
	if tm := float32(tmx) * 0.025; math32.Abs(tm-gb.MaxTime) > 0.1 {
		t.Errorf("gabab peak time %v, cor %v", tm, gb.MaxTime)
	}
	// inward rectification: little current at rest
	cur, g := []float32{0}, []float32{0}
	m.Current(v, cur, g)
	if r := g[0] / (gb.G[0] + 1e-12); math32.Abs(r-0.0293122) > 1e-5 {
		t.Errorf("rectification at -65: %v", r)
	}
}

func TestSynapsePeakTaus(t *testing.T) {
	ct := DefaultCatalogue()
	tests := []struct {
		desc    Desc
		maxTime float32
	}{
		{NewDesc("exp2syn").Set("tau1", 1).Set("tau2", 5), 2.011797},
		{NewDesc("gabab").Set("tau1", 20).Set("tau2", 60), 32.95837},
	}
	for _, tt := range tests {
		m, err := ct.Instance(tt.desc, testEnv(), Layout{CV: []int{0}})
		if err != nil {
			t.Fatal(err)
		}
		var mt float32
		switch ms := m.(type) {
		case *Exp2Syn:
			mt = ms.MaxTime
		case *GABAB:
			mt = ms.MaxTime
		}
		if math32.Abs(mt-tt.maxTime) > 1e-3 {
			t.Errorf("%s max time: got %v, cor %v", tt.desc.Name, mt, tt.maxTime)
		}
		v := []float32{-65}
		m.Init(v)
		m.(Receiver).NetReceive(0, 0.01)
		mx := float32(0)
		tmx := 0
		for i := 0; i < 4000; i++ {
			m.Update(v, 0.025)
			g, _ := m.State("g", 0)
			if g > mx {
				mx, tmx = g, i+1
			}
		}
		if mx > 0.01*1.001 || mx < 0.01*0.999 {
			t.Errorf("%s peak should equal the weight: got %v", tt.desc.Name, mx)
		}
		if tm := float32(tmx) * 0.025; math32.Abs(tm-tt.maxTime) > 0.05 {
			t.Errorf("%s peak time %v, cor %v", tt.desc.Name, tm, tt.maxTime)
		}
	}
}

func TestCatalogue(t *testing.T) {
	ct := DefaultCatalogue()
	nms := ct.Names()
	cor := []string{"exp2syn", "expsyn", "gabab", "hh", "nmda", "pas"}
	if strings.Join(nms, ",") != strings.Join(cor, ",") {
		t.Errorf("names: got %v, cor %v", nms, cor)
	}
	if err := ct.Validate(NewDesc("hh").Set("gl", 0.0001), Density); err != nil {
		t.Error(err)
	}
	if err := ct.Validate(NewDesc("hh").Set("foo", 1), Density); err == nil {
		t.Errorf("unknown parameter should be rejected")
	}
	if err := ct.Validate(NewDesc("expsyn"), Density); err == nil {
		t.Errorf("point mechanism painted as density should be rejected")
	}
	if err := ct.Validate(NewDesc("nope"), Point); err == nil {
		t.Errorf("unknown mechanism should be rejected")
	}
	if _, err := ct.Instance(NewDesc("pas").Set("foo", 1), testEnv(), Layout{}); err == nil {
		t.Errorf("instance with unknown parameter should fail")
	}

	ex := NewCatalogue()
	ex.Import(ct, "ext::")
	if !ex.Has("ext::hh") || ex.Has("hh") {
		t.Errorf("import should add prefixed names: %v", ex.Names())
	}
	inf, _ := ex.Info("ext::expsyn")
	if inf.Params["tau"] != 2 || inf.Kind != Point {
		t.Errorf("imported info: %+v", inf)
	}

	if k := NewDesc("expsyn").Set("tau", 1.5).Set("e", -80).Key(); k != "expsyn/e=-80/tau=1.5" {
		t.Errorf("key: got %q", k)
	}
}

func TestNernst(t *testing.T) {
	is := Ions{}
	is.Defaults()
	ek := is.K.Nernst(279.45)
	if math32.Abs(ek-(-74.17)) > 0.05 {
		t.Errorf("k nernst: got %v", ek)
	}
	id := IonData{Valence: 1, InitIntConc: 5, InitExtConc: 5, InitRevPot: 10}
	if e := id.Nernst(300); math32.Abs(e) > 1e-6 {
		t.Errorf("equal concentrations should give 0, got %v", e)
	}
	id.Valence = 0
	if e := id.Nernst(300); e != 10 {
		t.Errorf("valence 0 should fall back to initial rev pot, got %v", e)
	}
}
