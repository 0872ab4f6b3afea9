// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"github.com/emer/cable/mech"
	"github.com/emer/emergent/params"
)

// Props are the global properties shared by all cable cells of a recipe:
// default membrane parameters, ion species and the mechanism catalogue.
// Props can be styled with params sheets using the type name Props,
// e.g., "Props.Cm": "0.02".
type Props struct {

	// initial membrane potential, mV
	InitVm float32 `def:"-65"`

	// temperature, K
	TempK float32 `def:"279.45"`

	// axial resistivity, Ω·cm
	Ra float32 `def:"35.4"`

	// specific membrane capacitance, F/m²
	Cm float32 `def:"0.01"`

	// ion species and their default reversal potentials
	Ions mech.Ions `view:"inline"`

	// mechanisms available to cells
	Catalogue *mech.Catalogue `view:"-"`
}

// NewNeuronProps returns properties with the neuron defaults and the default catalogue.
func NewNeuronProps() *Props {
	pr := &Props{}
	pr.Defaults()
	return pr
}

func (pr *Props) Defaults() {
	pr.InitVm = -65
	pr.TempK = 279.45
	pr.Ra = 35.4
	pr.Cm = 0.01
	pr.Ions.Defaults()
	pr.Catalogue = mech.DefaultCatalogue()
}

func (pr *Props) Update() {
}

// Register adds the mechanisms of cat to the catalogue.
func (pr *Props) Register(cat *mech.Catalogue) {
	if pr.Catalogue == nil {
		pr.Catalogue = mech.NewCatalogue()
	}
	pr.Catalogue.Import(cat, "")
}

// Env returns the mechanism environment at temperature tempK.
func (pr *Props) Env(tempK float32) *mech.Env {
	erev := map[string]float32{}
	for nm, id := range pr.Ions.Map() {
		erev[nm] = id.InitRevPot
	}
	return &mech.Env{TempK: tempK, Erev: erev}
}

func (pr *Props) TypeName() string { return "Props" }
func (pr *Props) Class() string    { return "" }
func (pr *Props) Name() string     { return "" }

// ApplyParams applies the given parameter style sheet to the properties.
// Returns true if any params were set, and error if there were any errors.
// If setMsg is true, then a message is printed to confirm each parameter that is set.
func (pr *Props) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(pr, setMsg)
	if app {
		pr.Update()
	}
	return app, err
}
