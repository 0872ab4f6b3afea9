// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/emer/cable/cable"
	"github.com/emer/cable/event"
	"github.com/emer/cable/recipe"
)

// cableGroup integrates cable cells
type cableGroup struct {
	groupBase
	states []*cable.State
	crs    []cable.Crossing
}

// cableProps returns the global cable properties of the recipe, or the
// neuron defaults if it has none.
func cableProps(rec recipe.Recipe) (*cable.Props, error) {
	gp := rec.GlobalProperties(recipe.Cable)
	if gp == nil {
		return cable.NewNeuronProps(), nil
	}
	pr, ok := gp.(*cable.Props)
	if !ok {
		return nil, fmt.Errorf("sim: global properties for cable cells must be *cable.Props, got %T", gp)
	}
	return pr, nil
}

func newCableGroup(gd GroupDesc, rec recipe.Recipe, pr *cable.Props, res *lidResolver) (*cableGroup, error) {
	cg := &cableGroup{groupBase: newGroupBase(recipe.Cable, gd.Gids)}
	for idx, gid := range gd.Gids {
		c, ok := rec.CellDescription(gid).(*cable.Cell)
		if !ok {
			return nil, fmt.Errorf("%w: gid %d of kind %v is described by %T", recipe.ErrInconsistentKind, gid, recipe.Cable, rec.CellDescription(gid))
		}
		st, err := cable.NewState(c, pr)
		if err != nil {
			return nil, fmt.Errorf("sim: gid %d: %w", gid, err)
		}
		cg.states = append(cg.states, st)
		if err := cg.addGenerators(idx, c, rec.EventGenerators(gid), res); err != nil {
			return nil, err
		}
	}
	return cg, nil
}

func (cg *cableGroup) Advance(t0, t1, dt float64) {
	for idx, st := range cg.states {
		gid := cg.gids[idx]
		st.Queue.PushAll(cg.generate(idx, t0, t1))
		cg.advanceCell(idx, t0, t1, func(t float64) {
			cg.crs = st.Advance(t, dt, cg.crs[:0])
			for _, cr := range cg.crs {
				cg.spikes = append(cg.spikes, event.Spike{Source: event.CellMember{Gid: gid, Index: cr.Lid}, Time: cr.Time})
			}
		})
	}
}

func (cg *cableGroup) Enqueue(idx int, ev event.Event) {
	cg.states[idx].Deliver(ev)
}

func (cg *cableGroup) AddSampler(idx int, sa *sampleAssoc, addr any) error {
	sms, err := cg.states[idx].Samplers(addr)
	if err != nil {
		return err
	}
	sa.setSamplers(sms)
	cg.samples[idx] = append(cg.samples[idx], sa)
	return nil
}

func (cg *cableGroup) Reset() {
	for _, st := range cg.states {
		st.Reset()
	}
	cg.resetBase()
}

func (cg *cableGroup) Bytes() int {
	n := 0
	for _, st := range cg.states {
		// solver vectors, and area, capacitance, conductance, init V, parent, branch
		n += st.Disc.Size() * (6*4 + 4*4 + 2*8)
		for _, m := range st.Mechs {
			n += m.Len() * 4 * 4
		}
	}
	return n
}
