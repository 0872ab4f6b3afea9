// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"

	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
)

// Paintable is a property that is painted over a region.
type Paintable interface {
	paintable()
}

// Density is a density mechanism painted on a region.
type Density struct {
	Mech mech.Desc
}

// NewDensity returns a density mechanism with default parameters.
func NewDensity(name string) Density {
	return Density{Mech: mech.NewDesc(name)}
}

// MembraneCapacitance is the specific membrane capacitance, F/m².
type MembraneCapacitance struct {
	Value float32
}

// AxialResistivity is the resistivity of the cytoplasm, Ω·cm.
type AxialResistivity struct {
	Value float32
}

// InitMembranePotential is the initial membrane potential, mV.
type InitMembranePotential struct {
	Value float32
}

// Temperature is the cell temperature, K.  It can only be set as a
// default, not painted on a region.
type Temperature struct {
	Value float32
}

func (Density) paintable()               {}
func (MembraneCapacitance) paintable()   {}
func (AxialResistivity) paintable()      {}
func (InitMembranePotential) paintable() {}
func (Temperature) paintable()           {}

// Placeable is an item placed at the locations of a locset.
type Placeable interface {
	placeable()
}

// Synapse is a point mechanism that receives events.
type Synapse struct {
	Mech mech.Desc
}

// NewSynapse returns a synapse with default parameters.
func NewSynapse(name string) Synapse {
	return Synapse{Mech: mech.NewDesc(name)}
}

// ThresholdDetector generates a spike when the membrane potential crosses
// Threshold (mV) from below.
type ThresholdDetector struct {
	Threshold float32
}

// IClamp injects Amplitude nA from Delay for Duration ms.
type IClamp struct {
	Delay     float32
	Duration  float32
	Amplitude float32
}

func (Synapse) placeable()           {}
func (ThresholdDetector) placeable() {}
func (IClamp) placeable()            {}

// PaintItem is one paint call.
type PaintItem struct {
	Region morph.Region
	Prop   Paintable
}

// PlaceItem is one place call.
type PlaceItem struct {
	Locset morph.Locset
	Item   Placeable
	Label  string
}

// Decor describes how a morphology is decorated.  Paints and placements
// are applied in the order they were made.
type Decor struct {
	Paints   []PaintItem
	Places   []PlaceItem
	Defaults []Paintable

	// discretization policy, MaxExtent{10} if nil
	Policy CVPolicy
}

// NewDecor returns an empty decor.
func NewDecor() *Decor {
	return &Decor{}
}

// Paint paints the property over the region given by the expression,
// e.g., `"soma"` or `(tag 3)`.
func (dc *Decor) Paint(reg string, prop Paintable) error {
	rg, err := morph.ParseRegion(reg)
	if err != nil {
		return err
	}
	return dc.PaintRegion(rg, prop)
}

// PaintRegion paints the property over a parsed region.
func (dc *Decor) PaintRegion(reg morph.Region, prop Paintable) error {
	if _, ok := prop.(Temperature); ok {
		return fmt.Errorf("cable: temperature can only be set as a default")
	}
	dc.Paints = append(dc.Paints, PaintItem{Region: reg, Prop: prop})
	return nil
}

// Place places the item at the locset given by the expression, under label.
func (dc *Decor) Place(ls string, it Placeable, label string) error {
	lc, err := morph.ParseLocset(ls)
	if err != nil {
		return err
	}
	return dc.PlaceLocset(lc, it, label)
}

// PlaceLocset places the item at a parsed locset.
func (dc *Decor) PlaceLocset(ls morph.Locset, it Placeable, label string) error {
	if label == "" {
		return fmt.Errorf("cable: placement of %T on %v needs a label", it, ls)
	}
	for _, pl := range dc.Places {
		if pl.Label == label {
			return fmt.Errorf("cable: duplicate placement label %q", label)
		}
	}
	dc.Places = append(dc.Places, PlaceItem{Locset: ls, Item: it, Label: label})
	return nil
}

// SetDefault sets a cell-wide default, overriding the global properties.
func (dc *Decor) SetDefault(prop Paintable) error {
	if _, ok := prop.(Density); ok {
		return fmt.Errorf("cable: density mechanisms can not be set as a default")
	}
	dc.Defaults = append(dc.Defaults, prop)
	return nil
}

// SetDiscretization sets the CV policy.
func (dc *Decor) SetDiscretization(pol CVPolicy) {
	dc.Policy = pol
}
