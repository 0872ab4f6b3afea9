// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/cable/event"
	"github.com/emer/cable/morph"
	"github.com/emer/emergent/params"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-3)

// ballAndSticks is a soma with one dendrite that forks into two.
func ballAndSticks() *morph.SegmentTree {
	st := morph.NewSegmentTree()
	s, _ := st.Append(morph.MNpos, morph.NewPoint(-12, 0, 0, 6), morph.NewPoint(0, 0, 0, 6), morph.TagSoma)
	b0, _ := st.Append(s, morph.NewPoint(0, 0, 0, 2), morph.NewPoint(50, 0, 0, 2), morph.TagDend)
	st.Append(b0, morph.NewPoint(50, 0, 0, 2), morph.NewPoint(50+50/math32.Sqrt2, 50/math32.Sqrt2, 0, 0.5), morph.TagDend)
	st.Append(b0, morph.NewPoint(50, 0, 0, 1), morph.NewPoint(50+50/math32.Sqrt2, -50/math32.Sqrt2, 0, 1), morph.TagDend)
	return st
}

func ringLabels(t *testing.T) *morph.LabelDict {
	ld := morph.NewLabelDict()
	for nm, ex := range map[string]string{"soma": "(tag 1)", "dend": "(tag 3)", "synapse_site": "(location 1 0.5)", "root": "(root)"} {
		if err := ld.Set(nm, ex); err != nil {
			t.Fatal(err)
		}
	}
	return ld
}

func ringCell(t *testing.T) *Cell {
	dc := NewDecor()
	must(t, dc.Paint(`"soma"`, NewDensity("hh")))
	must(t, dc.Paint(`"dend"`, NewDensity("pas")))
	must(t, dc.Place(`"synapse_site"`, NewSynapse("expsyn"), "syn"))
	must(t, dc.Place(`"root"`, ThresholdDetector{Threshold: -10}, "detector"))
	c, err := NewCell(ballAndSticks(), ringLabels(t), dc)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// cylinder is a single branch of radius r and length l with all of dc painted on it
func cylinder(t *testing.T, r, l float32, dc *Decor) *Cell {
	st := morph.NewSegmentTree()
	st.Append(morph.MNpos, morph.NewPoint(0, 0, 0, r), morph.NewPoint(l, 0, 0, r), morph.TagSoma)
	c, err := NewCell(st, nil, dc)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestDiscretize(t *testing.T) {
	c := ringCell(t)
	pr := NewNeuronProps()
	dz, err := Discretize(c, pr)
	if err != nil {
		t.Fatal(err)
	}
	cor := []int{7, 5, 5}
	for bi, n := range cor {
		if dz.BranchNCV[bi] != n {
			t.Errorf("branch %d: %d CVs, cor %d", bi, dz.BranchNCV[bi], n)
		}
	}
	if dz.Size() != 17 {
		t.Fatalf("size %d", dz.Size())
	}
	if dz.Parent[0] != -1 || dz.Parent[7] != 6 || dz.Parent[12] != 6 || dz.Parent[13] != 12 {
		t.Errorf("parents: %v", dz.Parent)
	}
	for i, p := range dz.Parent {
		if p >= i {
			t.Errorf("parent %d of CV %d is not less", p, i)
		}
		if p >= 0 && dz.Gax[i] <= 0 {
			t.Errorf("CV %d has no axial conductance", i)
		}
	}
	em := c.Embedding()
	tot := float32(0)
	totA := float32(0)
	for i := range dz.Area {
		totA += dz.Area[i]
		tot += dz.Cap[i]
	}
	area := em.Area(0, 0, 1) + em.Area(1, 0, 1) + em.Area(2, 0, 1)
	if dif := math32.Abs(totA-area) / area; dif > difTol {
		t.Errorf("area: %v, cor %v", totA, area)
	}
	// 0.01 F/m² = 1e-5 nF/µm²
	if dif := math32.Abs(tot-area*1e-5) / (area * 1e-5); dif > difTol {
		t.Errorf("capacitance: %v, cor %v", tot, area*1e-5)
	}
	if cv := dz.CV(morph.Location{Branch: 1, Pos: 0.5}); cv != 9 {
		t.Errorf("synapse CV: %d", cv)
	}
	if cv := dz.CV(morph.Location{Branch: 2, Pos: 1}); cv != 16 {
		t.Errorf("terminal CV: %d", cv)
	}

	ds, lays := dz.DensityLayouts(c)
	if len(ds) != 2 || ds[0].Name != "hh" || ds[1].Name != "pas" {
		t.Fatalf("density mechanisms: %v", ds)
	}
	hhA := float32(0)
	for _, w := range lays[0].Weight {
		hhA += w
	}
	somaA := 2 * math32.Pi * 6 * 12
	if dif := math32.Abs(hhA-somaA) / somaA; dif > difTol {
		t.Errorf("hh area: %v, cor %v", hhA, somaA)
	}
	// soma ends in CV 1 of branch 0
	if len(lays[0].CV) != 2 {
		t.Errorf("hh CVs: %v", lays[0].CV)
	}

	fp := FixedPerBranch{N: 2}
	c.Decor().SetDiscretization(fp)
	dz, _ = Discretize(c, pr)
	if dz.Size() != 6 {
		t.Errorf("fixed per branch size: %d", dz.Size())
	}
}

func TestPassiveDecay(t *testing.T) {
	dc := NewDecor()
	must(t, dc.Paint("(all)", NewDensity("pas")))
	dc.SetDiscretization(FixedPerBranch{N: 1})
	st, err := NewState(cylinder(t, 5, 20, dc), NewNeuronProps())
	if err != nil {
		t.Fatal(err)
	}
	if st.V[0] != -65 {
		t.Errorf("init V: %v", st.V[0])
	}
	st.Advance(1, 0.025, nil)
	// tau = cm / g = 1 ms; implicit euler gives (1+dt/tau)^-40
	cor := -70 + 5*math32.Pow(1.025, -40)
	if dif := math32.Abs(st.V[0] - cor); dif > difTol {
		t.Errorf("V after 1ms: %v, cor %v", st.V[0], cor)
	}
	if math32.Abs(float32(st.Time)-1) > 1e-6 {
		t.Errorf("time %v", st.Time)
	}
	st.Advance(20, 0.025, nil)
	if dif := math32.Abs(st.V[0] + 70); dif > difTol {
		t.Errorf("V should reach pas reversal: %v", st.V[0])
	}
	st.Reset()
	if st.V[0] != -65 || st.Time != 0 {
		t.Errorf("reset: %v %v", st.V[0], st.Time)
	}
}

func TestIClamp(t *testing.T) {
	dc := NewDecor()
	must(t, dc.Paint("(all)", NewDensity("pas")))
	must(t, dc.Place("(location 0 0.5)", IClamp{Delay: 0, Duration: 100, Amplitude: 0.1}, "clamp"))
	must(t, dc.SetDefault(InitMembranePotential{Value: -70}))
	dc.SetDiscretization(FixedPerBranch{N: 1})
	st, err := NewState(cylinder(t, 5, 20, dc), NewNeuronProps())
	if err != nil {
		t.Fatal(err)
	}
	st.Advance(30, 0.025, nil)
	ga := 0.001 * 2 * math32.Pi * 5 * 20 * 1e-2
	cor := -70 + 0.1/ga
	if dif := math32.Abs(st.V[0] - cor); dif > 0.01 {
		t.Errorf("clamped V: %v, cor %v", st.V[0], cor)
	}
}

func TestHHSpike(t *testing.T) {
	dc := NewDecor()
	must(t, dc.Paint("(all)", NewDensity("hh")))
	must(t, dc.Place("(root)", ThresholdDetector{Threshold: -10}, "det"))
	must(t, dc.Place("(root)", IClamp{Delay: 1, Duration: 20, Amplitude: 0.1}, "clamp"))
	dc.SetDiscretization(FixedPerBranch{N: 1})
	st, err := NewState(cylinder(t, 6, 12, dc), NewNeuronProps())
	if err != nil {
		t.Fatal(err)
	}
	crs := st.Advance(30, 0.025, nil)
	if len(crs) == 0 {
		t.Fatalf("clamped hh soma should spike")
	}
	if crs[0].Lid != 0 || crs[0].Time < 1.5 || crs[0].Time > 3.5 {
		t.Errorf("first crossing: %+v", crs[0])
	}

	// no clamp, no spikes
	dc.Places = dc.Places[:1]
	st, err = NewState(cylinder(t, 6, 12, dc), NewNeuronProps())
	if err != nil {
		t.Fatal(err)
	}
	if crs := st.Advance(30, 0.025, nil); len(crs) != 0 {
		t.Errorf("unclamped hh soma should rest: %v", crs)
	}
}

func TestSynapticSpike(t *testing.T) {
	c := ringCell(t)
	if lr, ok := c.Targets("syn"); !ok || lr.Len() != 1 {
		t.Errorf("syn targets: %v %v", lr, ok)
	}
	if lr, ok := c.Sources("detector"); !ok || lr.Len() != 1 {
		t.Errorf("detector sources: %v %v", lr, ok)
	}
	st, err := NewState(c, NewNeuronProps())
	if err != nil {
		t.Fatal(err)
	}
	gs, err := st.Samplers(PointState{Target: "syn", State: "g"})
	if err != nil || len(gs) != 1 {
		t.Fatalf("point state samplers: %v %v", gs, err)
	}
	vs, err := st.Samplers(MembraneVoltage{Locset: "(terminal)"})
	if err != nil || len(vs) != 2 {
		t.Fatalf("terminal samplers: %v %v", len(vs), err)
	}
	st.Deliver(event.Event{Target: event.CellMember{Gid: 0, Index: 0}, Time: 1, Weight: 0.01})
	st.Advance(1, 0.025, nil)
	if g := gs[0].Value(); g != 0 {
		t.Errorf("event delivered early: %v", g)
	}
	st.Advance(1.025, 0.025, nil)
	if g := gs[0].Value(); math32.Abs(g-0.01*math32.Exp(-0.025/2)) > 1e-6 {
		t.Errorf("synaptic conductance after event: %v", g)
	}
	crs := st.Advance(20, 0.025, nil)
	if len(crs) != 1 {
		t.Fatalf("one spike expected, got %v", crs)
	}
	if crs[0].Time < 2 || crs[0].Time > 6 {
		t.Errorf("spike time %v", crs[0].Time)
	}
}

func TestCellErrors(t *testing.T) {
	dc := NewDecor()
	if err := dc.Paint("(all)", Temperature{Value: 300}); err == nil {
		t.Errorf("painting temperature should fail")
	}
	if err := dc.Paint("(location 0 0.5)", NewDensity("pas")); err == nil {
		t.Errorf("painting a locset should fail")
	}
	if err := dc.Place("(root)", ThresholdDetector{Threshold: -10}, ""); err == nil {
		t.Errorf("placement without label should fail")
	}
	must(t, dc.Place("(root)", ThresholdDetector{Threshold: -10}, "d"))
	if err := dc.Place("(root)", ThresholdDetector{Threshold: -10}, "d"); err == nil {
		t.Errorf("duplicate label should fail")
	}
	if err := dc.SetDefault(NewDensity("pas")); err == nil {
		t.Errorf("density default should fail")
	}

	dc = NewDecor()
	must(t, dc.Paint(`"nowhere"`, NewDensity("pas")))
	if _, err := NewCell(ballAndSticks(), ringLabels(t), dc); err == nil || !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("unknown region label: %v", err)
	}

	dc = NewDecor()
	must(t, dc.Paint("(branch 0)", MembraneCapacitance{Value: 0.02}))
	must(t, dc.Paint("(tag 1)", MembraneCapacitance{Value: 0.03}))
	if _, err := NewCell(ballAndSticks(), nil, dc); err == nil {
		t.Errorf("overlapping capacitance paints should fail")
	}

	dc = NewDecor()
	must(t, dc.Paint("(all)", NewDensity("nope")))
	c, err := NewCell(ballAndSticks(), nil, dc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewState(c, NewNeuronProps()); err == nil {
		t.Errorf("unknown mechanism should fail")
	}

	dc = NewDecor()
	must(t, dc.Place("(root)", NewSynapse("hh"), "s"))
	c, _ = NewCell(ballAndSticks(), nil, dc)
	if _, err := NewState(c, NewNeuronProps()); err == nil {
		t.Errorf("density mechanism as synapse should fail")
	}

	if _, err := NewCell(morph.NewSegmentTree(), nil, nil); err == nil {
		t.Errorf("empty morphology should fail")
	}
}

func TestPaintedCapacitance(t *testing.T) {
	dc := NewDecor()
	must(t, dc.Paint("(cable 0 0 0.5)", MembraneCapacitance{Value: 0.02}))
	must(t, dc.Paint("(cable 0 0.5 1)", InitMembranePotential{Value: -50}))
	dc.SetDiscretization(FixedPerBranch{N: 1})
	c := cylinder(t, 1, 10, dc)
	dz, err := Discretize(c, NewNeuronProps())
	if err != nil {
		t.Fatal(err)
	}
	area := 2 * math32.Pi * 10
	cor := (0.02*area/2 + 0.01*area/2) * 1e-3
	if dif := math32.Abs(dz.Cap[0]-cor) / cor; dif > difTol {
		t.Errorf("mixed capacitance: %v, cor %v", dz.Cap[0], cor)
	}
	if dif := math32.Abs(dz.InitV[0] - (-57.5)); dif > difTol {
		t.Errorf("mixed init V: %v", dz.InitV[0])
	}
}

func TestPropsParams(t *testing.T) {
	pr := NewNeuronProps()
	sheet := &params.Sheet{
		{Sel: "Props", Desc: "warmer, higher capacitance",
			Params: params.Params{
				"Props.Cm":    "0.02",
				"Props.TempK": "300",
			}},
	}
	if _, err := pr.ApplyParams(sheet, false); err != nil {
		t.Fatal(err)
	}
	if pr.Cm != 0.02 || pr.TempK != 300 || pr.Ra != 35.4 {
		t.Errorf("styled props: %+v", pr)
	}
	env := pr.Env(pr.TempK)
	if e, _ := env.Rev("na"); e != 50 {
		t.Errorf("na reversal: %v", e)
	}
}
