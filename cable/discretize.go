// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"
	"sort"

	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
)

// Discretization is a cell divided into control volumes.  Each branch is
// split into equal-length CVs with the node at the centre.  CVs are
// numbered branch by branch, so a parent CV always has a lower index
// than its children.
type Discretization struct {

	// embedding of the cell morphology
	Embed *morph.Embedding

	// first CV of each branch
	BranchCV0 []int

	// number of CVs on each branch
	BranchNCV []int

	// parent CV of each CV, -1 for the root
	Parent []int

	// branch of each CV
	Branch []int

	// membrane area of each CV, µm²
	Area []float32

	// membrane capacitance of each CV, nF
	Cap []float32

	// axial conductance between each CV and its parent, µS
	Gax []float32

	// initial membrane potential of each CV, mV
	InitV []float32

	// temperature of the cell, K
	TempK float32
}

// Size returns the number of CVs.
func (dz *Discretization) Size() int {
	return len(dz.Parent)
}

// Extent returns the branch and interval covered by CV cv.
func (dz *Discretization) Extent(cv int) (bi int, p0, p1 float32) {
	bi = dz.Branch[cv]
	n := float32(dz.BranchNCV[bi])
	k := float32(cv - dz.BranchCV0[bi])
	return bi, k / n, (k + 1) / n
}

// Node returns the location of the node of CV cv.
func (dz *Discretization) Node(cv int) morph.Location {
	bi, p0, p1 := dz.Extent(cv)
	return morph.Location{Branch: bi, Pos: 0.5 * (p0 + p1)}
}

// CV returns the CV containing a location.
func (dz *Discretization) CV(lc morph.Location) int {
	n := dz.BranchNCV[lc.Branch]
	k := int(lc.Pos * float32(n))
	if k >= n {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}
	return dz.BranchCV0[lc.Branch] + k
}

// cellDefaults returns the cell-wide Cm, Ra, Vm and temperature: global
// properties overridden by decor defaults.
func cellDefaults(c *Cell, pr *Props) (dflt [propN]float32, tempK float32) {
	dflt[propCm] = pr.Cm
	dflt[propRa] = pr.Ra
	dflt[propVm] = pr.InitVm
	tempK = pr.TempK
	for _, df := range c.decor.Defaults {
		switch dp := df.(type) {
		case MembraneCapacitance:
			dflt[propCm] = dp.Value
		case AxialResistivity:
			dflt[propRa] = dp.Value
		case InitMembranePotential:
			dflt[propVm] = dp.Value
		case Temperature:
			tempK = dp.Value
		}
	}
	return
}

// integrate returns the integral of a painted property over [p0, p1] on
// branch bi, weighted by the measure fun (area or ixa).
func integrate(sps []scalarPaint, dflt float32, bi int, p0, p1 float32, fun func(bi int, p0, p1 float32) float32) float32 {
	tot := dflt * fun(bi, p0, p1)
	for _, sp := range sps {
		for _, cb := range sp.cables {
			if a, b, ok := cb.Overlap(bi, p0, p1); ok {
				tot += (sp.val - dflt) * fun(bi, a, b)
			}
		}
	}
	return tot
}

// Discretize divides the cell into CVs according to its decor policy.
func Discretize(c *Cell, pr *Props) (*Discretization, error) {
	pol := c.decor.Policy
	if pol == nil {
		pol = DefaultCVPolicy
	}
	em := c.prov.Embed
	mp := c.morph
	nb := mp.NumBranches()
	dz := &Discretization{Embed: em, BranchCV0: make([]int, nb), BranchNCV: make([]int, nb)}
	dflt, tempK := cellDefaults(c, pr)
	dz.TempK = tempK
	ncv := 0
	for bi := 0; bi < nb; bi++ {
		dz.BranchCV0[bi] = ncv
		dz.BranchNCV[bi] = pol.NumCVs(em, bi)
		ncv += dz.BranchNCV[bi]
	}
	dz.Parent = make([]int, ncv)
	dz.Branch = make([]int, ncv)
	dz.Area = make([]float32, ncv)
	dz.Cap = make([]float32, ncv)
	dz.Gax = make([]float32, ncv)
	dz.InitV = make([]float32, ncv)

	// integral of Ra / (π r²) over [p0, p1] on branch bi, Ω·cm/µm
	res := func(bi int, p0, p1 float32) float32 {
		return integrate(c.scalars[propRa], dflt[propRa], bi, p0, p1, em.IntegrateIxa)
	}

	for bi := 0; bi < nb; bi++ {
		n := dz.BranchNCV[bi]
		half := 0.5 / float32(n)
		for k := 0; k < n; k++ {
			cv := dz.BranchCV0[bi] + k
			dz.Branch[cv] = bi
			_, p0, p1 := dz.Extent(cv)
			area := em.Area(bi, p0, p1)
			dz.Area[cv] = area
			dz.Cap[cv] = 1e-3 * integrate(c.scalars[propCm], dflt[propCm], bi, p0, p1, em.Area)
			if area > 0 {
				dz.InitV[cv] = integrate(c.scalars[propVm], dflt[propVm], bi, p0, p1, em.Area) / area
			} else {
				dz.InitV[cv] = dflt[propVm]
			}

			var r float32
			switch {
			case k > 0:
				dz.Parent[cv] = cv - 1
				r = res(bi, p0-half, p0+half)
			case mp.BranchParent(bi) != morph.MNpos:
				pb := mp.BranchParent(bi)
				pn := dz.BranchNCV[pb]
				dz.Parent[cv] = dz.BranchCV0[pb] + pn - 1
				r = res(pb, 1-0.5/float32(pn), 1) + res(bi, 0, half)
			case bi > 0:
				// other root branches join the first CV of branch 0 at the root
				dz.Parent[cv] = 0
				r = res(0, 0, 0.5/float32(dz.BranchNCV[0])) + res(bi, 0, half)
			default:
				dz.Parent[cv] = -1
				continue
			}
			if r <= 0 {
				return nil, fmt.Errorf("cable: CV %d on branch %d has no axial resistance, check radii", cv, bi)
			}
			dz.Gax[cv] = 1e2 / r
		}
	}
	return dz, nil
}

// DensityLayouts returns, for each painted density mechanism, its layout
// of instances over CVs weighted by painted area.  Paints of the same
// mechanism with the same parameters share one layout.
func (dz *Discretization) DensityLayouts(c *Cell) ([]mech.Desc, []mech.Layout) {
	var keys []string
	descs := map[string]mech.Desc{}
	areas := map[string]map[int]float32{}
	em := dz.Embed
	for _, dp := range c.densities {
		key := dp.desc.Key()
		am, has := areas[key]
		if !has {
			am = map[int]float32{}
			areas[key] = am
			descs[key] = dp.desc
			keys = append(keys, key)
		}
		for _, cb := range dp.cables {
			for cv := dz.CV(morph.Location{Branch: cb.Branch, Pos: cb.Prox}); cv < dz.Size() && dz.Branch[cv] == cb.Branch; cv++ {
				_, p0, p1 := dz.Extent(cv)
				if a, b, ok := cb.Overlap(cb.Branch, p0, p1); ok {
					am[cv] += em.Area(cb.Branch, a, b)
				}
				if p1 >= cb.Dist {
					break
				}
			}
		}
	}
	ds := make([]mech.Desc, len(keys))
	lays := make([]mech.Layout, len(keys))
	for i, key := range keys {
		am := areas[key]
		cvs := make([]int, 0, len(am))
		for cv, a := range am {
			if a > 0 {
				cvs = append(cvs, cv)
			}
		}
		sort.Ints(cvs)
		lay := mech.Layout{CV: cvs, Weight: make([]float32, len(cvs))}
		for j, cv := range cvs {
			lay.Weight[j] = am[cv]
		}
		ds[i] = descs[key]
		lays[i] = lay
	}
	return ds, lays
}
