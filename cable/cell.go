// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"

	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
)

// Placement is a placed item resolved to its locations on the cell.
// Lid is the local index of the first location among items of the
// same addressable kind (synapses or detectors).
type Placement struct {
	Label string
	Item  Placeable
	Locs  []morph.Location
	Lid   int
}

// LidRange is the range [Begin, End) of local indexes covered by a label.
type LidRange struct {
	Begin, End int
}

// Len returns the number of lids in the range.
func (lr LidRange) Len() int {
	return lr.End - lr.Begin
}

// scalarPaint is a painted scalar property resolved to cables.
type scalarPaint struct {
	cables []morph.Cable
	val    float32
}

// densityPaint is a painted density mechanism resolved to cables.
type densityPaint struct {
	cables []morph.Cable
	desc   mech.Desc
}

// property kinds that can be painted
const (
	propCm = iota
	propRa
	propVm
	propN
)

// Cell is a cable cell: a morphology with labels and decorations, with all
// regions and locsets resolved.
type Cell struct {
	morph  *morph.Morphology
	labels *morph.LabelDict
	decor  *Decor
	prov   *morph.Provider

	scalars   [propN][]scalarPaint
	densities []densityPaint
	places    []Placement

	// lid ranges of synapse labels
	targets map[string]LidRange

	// lid ranges of detector labels
	sources map[string]LidRange

	nTargets int
	nSources int
}

// NewCell makes a cell from a segment tree.
func NewCell(st *morph.SegmentTree, ld *morph.LabelDict, dc *Decor) (*Cell, error) {
	return NewCellMorph(morph.NewMorphology(st), ld, dc)
}

// NewCellMorph makes a cell from a morphology, resolving all painted
// regions and placed locsets.
func NewCellMorph(mp *morph.Morphology, ld *morph.LabelDict, dc *Decor) (*Cell, error) {
	if mp.Empty() {
		return nil, fmt.Errorf("cable: cell morphology is empty")
	}
	if ld == nil {
		ld = morph.NewLabelDict()
	}
	if dc == nil {
		dc = NewDecor()
	}
	c := &Cell{morph: mp, labels: ld, decor: dc, targets: map[string]LidRange{}, sources: map[string]LidRange{}}
	c.prov = morph.NewProvider(mp, ld)
	for bi := range mp.Branches {
		if c.prov.Embed.Length(bi) <= 0 {
			return nil, fmt.Errorf("cable: branch %d has zero length", bi)
		}
	}
	for _, pt := range dc.Paints {
		cbs, err := c.prov.Cables(pt.Region)
		if err != nil {
			return nil, fmt.Errorf("cable: paint %T on %v: %w", pt.Prop, pt.Region, err)
		}
		switch pp := pt.Prop.(type) {
		case Density:
			c.densities = append(c.densities, densityPaint{cables: cbs, desc: pp.Mech})
		case MembraneCapacitance:
			err = c.addScalar(propCm, cbs, pp.Value)
		case AxialResistivity:
			err = c.addScalar(propRa, cbs, pp.Value)
		case InitMembranePotential:
			err = c.addScalar(propVm, cbs, pp.Value)
		default:
			err = fmt.Errorf("cable: can not paint %T", pt.Prop)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, pl := range dc.Places {
		lcs, err := c.prov.Locations(pl.Locset)
		if err != nil {
			return nil, fmt.Errorf("cable: place %q on %v: %w", pl.Label, pl.Locset, err)
		}
		p := Placement{Label: pl.Label, Item: pl.Item, Locs: lcs}
		switch pl.Item.(type) {
		case Synapse:
			p.Lid = c.nTargets
			c.nTargets += len(lcs)
			c.targets[pl.Label] = LidRange{p.Lid, c.nTargets}
		case ThresholdDetector:
			p.Lid = c.nSources
			c.nSources += len(lcs)
			c.sources[pl.Label] = LidRange{p.Lid, c.nSources}
		}
		c.places = append(c.places, p)
	}
	return c, nil
}

// addScalar adds a painted scalar, which may not overlap an earlier paint
// of the same property.
func (c *Cell) addScalar(prop int, cbs []morph.Cable, val float32) error {
	for _, sp := range c.scalars[prop] {
		for _, a := range sp.cables {
			for _, b := range cbs {
				if _, _, ok := a.Overlap(b.Branch, b.Prox, b.Dist); ok {
					return fmt.Errorf("cable: overlapping paint of the same property on %v", b)
				}
			}
		}
	}
	c.scalars[prop] = append(c.scalars[prop], scalarPaint{cables: cbs, val: val})
	return nil
}

// Morphology returns the cell morphology.
func (c *Cell) Morphology() *morph.Morphology { return c.morph }

// Labels returns the label dictionary.
func (c *Cell) Labels() *morph.LabelDict { return c.labels }

// Decor returns the decor.
func (c *Cell) Decor() *Decor { return c.decor }

// Embedding returns the metric embedding of the morphology.
func (c *Cell) Embedding() *morph.Embedding { return c.prov.Embed }

// Provider returns the region / locset provider of the cell.
func (c *Cell) Provider() *morph.Provider { return c.prov }

// Placements returns all placements in placement order.
func (c *Cell) Placements() []Placement { return c.places }

// Placement returns the placement with the given label.
func (c *Cell) Placement(label string) (Placement, bool) {
	for _, p := range c.places {
		if p.Label == label {
			return p, true
		}
	}
	return Placement{}, false
}

// Targets returns the synapse lids under label.
func (c *Cell) Targets(label string) (LidRange, bool) {
	lr, ok := c.targets[label]
	return lr, ok
}

// Sources returns the detector lids under label.
func (c *Cell) Sources(label string) (LidRange, bool) {
	lr, ok := c.sources[label]
	return lr, ok
}

// NumTargets returns the number of synapses.
func (c *Cell) NumTargets() int { return c.nTargets }

// NumSources returns the number of detectors.
func (c *Cell) NumSources() int { return c.nSources }
