// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"
	"sort"
	"strings"
)

// AreaScale converts a density (per cm²) times an area in µm² into
// µS for conductances and nA for currents.
const AreaScale = 1e-2

// Info describes a mechanism in a Catalogue.
type Info struct {

	// name the mechanism is registered under
	Name string

	// density or point
	Kind Kinds

	// parameter names and their default values
	Params map[string]float32

	// names of state variables that can be probed
	States []string

	// ion species whose reversal potentials are read
	Ions []string
}

// HasParam returns true if the mechanism has the given parameter.
func (mi *Info) HasParam(name string) bool {
	_, has := mi.Params[name]
	return has
}

// Desc is a mechanism name plus parameter overrides, as painted or placed on a cell.
type Desc struct {
	Name   string
	Params map[string]float32
}

// NewDesc returns a description of mechanism name with default parameters.
func NewDesc(name string) Desc {
	return Desc{Name: name}
}

// Set returns a copy of the description with param set to val.
func (ds Desc) Set(param string, val float32) Desc {
	np := make(map[string]float32, len(ds.Params)+1)
	for k, v := range ds.Params {
		np[k] = v
	}
	np[param] = val
	return Desc{Name: ds.Name, Params: np}
}

// Key returns a canonical string for the description: equal keys mean
// instances can share one Mechanism.
func (ds Desc) Key() string {
	if len(ds.Params) == 0 {
		return ds.Name
	}
	pnm := make([]string, 0, len(ds.Params))
	for k := range ds.Params {
		pnm = append(pnm, k)
	}
	sort.Strings(pnm)
	var b strings.Builder
	b.WriteString(ds.Name)
	for _, k := range pnm {
		fmt.Fprintf(&b, "/%s=%g", k, ds.Params[k])
	}
	return b.String()
}

func (ds Desc) String() string { return ds.Key() }

// Env is the per-cell environment mechanisms read from.
type Env struct {

	// temperature in Kelvin
	TempK float32

	// reversal potential of each ion species, mV
	Erev map[string]float32
}

// Celsius returns the temperature in degrees C.
func (en *Env) Celsius() float32 {
	return en.TempK - 273.15
}

// Rev returns the reversal potential for the given ion, and false if it is unknown.
func (en *Env) Rev(ion string) (float32, bool) {
	e, ok := en.Erev[ion]
	return e, ok
}

// Layout gives the instances of a mechanism: the control volume each one
// lies in, and for density mechanisms the membrane area it covers (µm²).
type Layout struct {
	CV     []int
	Weight []float32
}

// Len returns the number of instances.
func (ly *Layout) Len() int {
	return len(ly.CV)
}

// Mechanism is a set of instances of one mechanism on one cell.
// Voltage, current and conductance slices are indexed by control volume.
type Mechanism interface {

	// Name of the mechanism
	Name() string

	// Kind of the mechanism
	Kind() Kinds

	// Len is the number of instances
	Len() int

	// Init sets state to steady state for the given voltages
	Init(v []float32)

	// Current accumulates membrane current (nA, outward positive) and
	// its derivative with respect to voltage (µS) into i and g
	Current(v, i, g []float32)

	// Update advances state by dt ms given the new voltages
	Update(v []float32, dt float32)

	// State returns a state variable of an instance
	State(name string, inst int) (float32, bool)
}

// Receiver is a point mechanism that receives weighted spike events.
type Receiver interface {
	Mechanism

	// NetReceive delivers an event of the given weight to an instance
	NetReceive(inst int, weight float32)
}

// Factory builds a Mechanism for the given description and layout.
type Factory func(ds Desc, env *Env, lay Layout) (Mechanism, error)

// paramPtrs maps parameter names to fields of a params struct.
type paramPtrs map[string]*float32

// apply sets overridden parameters, returning an error for unknown names.
func (pp paramPtrs) apply(ds Desc) error {
	for k, v := range ds.Params {
		p, ok := pp[k]
		if !ok {
			return fmt.Errorf("mech: %s has no parameter %q", ds.Name, k)
		}
		*p = v
	}
	return nil
}

// defaults returns the current values of all parameters.
func (pp paramPtrs) defaults() map[string]float32 {
	dm := make(map[string]float32, len(pp))
	for k, p := range pp {
		dm[k] = *p
	}
	return dm
}
