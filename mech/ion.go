// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "github.com/chewxy/math32"

// Physical constants for the Nernst equation
const (
	// Faraday constant, C/mol
	Faraday = 96485.33212

	// gas constant, J/(K mol)
	GasConst = 8.314462618
)

// IonData holds the default concentrations and reversal potential of an ion species.
type IonData struct {

	// charge of the ion
	Valence int

	// initial internal concentration, mM
	InitIntConc float32

	// initial external concentration, mM
	InitExtConc float32

	// initial reversal potential, mV
	InitRevPot float32
}

// Nernst returns the reversal potential (mV) implied by the concentrations at temperature tempK.
func (id *IonData) Nernst(tempK float32) float32 {
	if id.InitIntConc <= 0 || id.InitExtConc <= 0 || id.Valence == 0 {
		return id.InitRevPot
	}
	return 1e3 * (GasConst * tempK / (float32(id.Valence) * Faraday)) * math32.Log(id.InitExtConc/id.InitIntConc)
}

// Ions are the standard ion species used by the default catalogue.
type Ions struct {

	// sodium
	Na IonData

	// potassium
	K IonData

	// calcium
	Ca IonData
}

// Defaults sets the squid-axon style defaults used by hh.
func (is *Ions) Defaults() {
	is.Na = IonData{Valence: 1, InitIntConc: 10, InitExtConc: 140, InitRevPot: 50}
	is.K = IonData{Valence: 1, InitIntConc: 54.4, InitExtConc: 2.5, InitRevPot: -77}
	is.Ca = IonData{Valence: 2, InitIntConc: 5e-5, InitExtConc: 2, InitRevPot: 132.4579341637009}
}

// Map returns the ion species by name.
func (is *Ions) Map() map[string]IonData {
	return map[string]IonData{"na": is.Na, "k": is.K, "ca": is.Ca}
}

// SetAll sets the reversal potentials of all species
func (is *Ions) SetAll(na, k, ca float32) {
	is.Na.InitRevPot, is.K.InitRevPot, is.Ca.InitRevPot = na, k, ca
}
