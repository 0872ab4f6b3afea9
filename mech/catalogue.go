// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"
	"sort"
)

// Catalogue is a named collection of mechanisms that cells can refer to.
type Catalogue struct {
	infos map[string]Info
	facs  map[string]Factory
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{infos: map[string]Info{}, facs: map[string]Factory{}}
}

// DefaultCatalogue returns a catalogue holding the channels hh and pas,
// and the synapses expsyn, exp2syn, nmda and gabab.
func DefaultCatalogue() *Catalogue {
	ct := NewCatalogue()
	ct.Register(hhInfo(), NewHH)
	ct.Register(pasInfo(), NewPas)
	ct.Register(expSynInfo(), NewExpSyn)
	ct.Register(exp2SynInfo(), NewExp2Syn)
	ct.Register(nmdaInfo(), NewNMDA)
	ct.Register(gababInfo(), NewGABAB)
	return ct
}

// Register adds a mechanism, replacing any existing one of the same name.
func (ct *Catalogue) Register(info Info, fac Factory) {
	ct.infos[info.Name] = info
	ct.facs[info.Name] = fac
}

// Import adds all mechanisms of other under prefix + name.
func (ct *Catalogue) Import(other *Catalogue, prefix string) {
	for nm, inf := range other.infos {
		inf.Name = prefix + nm
		ct.Register(inf, other.facs[nm])
	}
}

// Has returns true if the named mechanism is present.
func (ct *Catalogue) Has(name string) bool {
	_, has := ct.infos[name]
	return has
}

// Info returns the info for the named mechanism.
func (ct *Catalogue) Info(name string) (Info, error) {
	inf, ok := ct.infos[name]
	if !ok {
		return Info{}, fmt.Errorf("mech: no mechanism named %q in catalogue", name)
	}
	return inf, nil
}

// Names returns the sorted mechanism names.
func (ct *Catalogue) Names() []string {
	nms := make([]string, 0, len(ct.infos))
	for nm := range ct.infos {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Validate checks that the description names a mechanism of the given
// kind and only overrides parameters it has.
func (ct *Catalogue) Validate(ds Desc, kind Kinds) error {
	inf, err := ct.Info(ds.Name)
	if err != nil {
		return err
	}
	if inf.Kind != kind {
		return fmt.Errorf("mech: %s is a %v mechanism, not %v", ds.Name, inf.Kind, kind)
	}
	for k := range ds.Params {
		if !inf.HasParam(k) {
			return fmt.Errorf("mech: %s has no parameter %q", ds.Name, k)
		}
	}
	return nil
}

// Instance builds the mechanism for a description laid out on a cell.
func (ct *Catalogue) Instance(ds Desc, env *Env, lay Layout) (Mechanism, error) {
	fac, ok := ct.facs[ds.Name]
	if !ok {
		return nil, fmt.Errorf("mech: no mechanism named %q in catalogue", ds.Name)
	}
	return fac(ds, env, lay)
}
