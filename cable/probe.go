// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"

	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
)

// MembraneVoltage probes the membrane potential at each location of a locset.
type MembraneVoltage struct {
	Locset string
}

// PointState probes a state variable of each synapse placed under Target.
type PointState struct {
	Target string
	State  string
}

// Sampler reads one probed value from a State.
type Sampler struct {

	// description of what is sampled, e.g., the location
	Meta string

	// Value returns the current value
	Value func() float32
}

// Samplers resolves a probe address on the state, returning one Sampler
// per probed location or instance.
func (st *State) Samplers(addr any) ([]Sampler, error) {
	switch pa := addr.(type) {
	case MembraneVoltage:
		ls, err := morph.ParseLocset(pa.Locset)
		if err != nil {
			return nil, err
		}
		lcs, err := st.Cell.prov.Locations(ls)
		if err != nil {
			return nil, err
		}
		sms := make([]Sampler, len(lcs))
		for i, lc := range lcs {
			cv := st.Disc.CV(lc)
			sms[i] = Sampler{Meta: lc.String(), Value: func() float32 { return st.V[cv] }}
		}
		return sms, nil
	case PointState:
		lr, ok := st.Cell.Targets(pa.Target)
		if !ok {
			return nil, fmt.Errorf("cable: no synapse labeled %q", pa.Target)
		}
		var sms []Sampler
		for lid := lr.Begin; lid < lr.End; lid++ {
			sr := st.syns[lid]
			if _, ok := sr.mech.State(pa.State, sr.inst); !ok {
				return nil, fmt.Errorf("cable: %s has no state %q", sr.mech.Name(), pa.State)
			}
			m, inst := sr.mech, sr.inst
			sms = append(sms, Sampler{Meta: fmt.Sprintf("%s[%d].%s", pa.Target, lid-lr.Begin, pa.State), Value: func() float32 {
				v, _ := m.State(pa.State, inst)
				return v
			}})
		}
		return sms, nil
	}
	return nil, fmt.Errorf("cable: unsupported probe address %T", addr)
}

// synRef addresses one synapse instance
type synRef struct {
	mech mech.Receiver
	inst int
}
