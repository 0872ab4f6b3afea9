// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/cable/cable"
	"github.com/emer/cable/event"
	"github.com/emer/cable/recipe"
)

// LIFCell is a leaky integrate and fire neuron, integrated exactly between
// events: each event adds weight / Cm to the potential, and a spike is
// generated when it reaches Vth, after which the cell is reset and ignores
// events for Tref.
type LIFCell struct {

	// label of the spike source
	Source string

	// label of the synaptic target
	Target string

	// membrane time constant, ms
	TauM float32 `def:"10"`

	// firing threshold, mV
	Vth float32 `def:"10"`

	// membrane capacitance, pF
	Cm float32 `def:"20"`

	// resting potential, mV
	EL float32 `def:"0"`

	// potential after a spike, mV
	Vreset float32 `def:"0"`

	// initial potential, mV
	Vm float32 `def:"0"`

	// refractory period, ms
	Tref float32 `def:"2"`
}

// NewLIFCell returns a cell with default parameters.
func NewLIFCell(source, target string) *LIFCell {
	lc := &LIFCell{Source: source, Target: target}
	lc.Defaults()
	return lc
}

func (lc *LIFCell) Defaults() {
	lc.TauM = 10
	lc.Vth = 10
	lc.Cm = 20
	lc.EL = 0
	lc.Vreset = 0
	lc.Vm = 0
	lc.Tref = 2
}

func (lc *LIFCell) Targets(label string) (cable.LidRange, bool) {
	if label != lc.Target {
		return cable.LidRange{}, false
	}
	return cable.LidRange{Begin: 0, End: 1}, true
}

func (lc *LIFCell) Sources(label string) (cable.LidRange, bool) {
	if label != lc.Source {
		return cable.LidRange{}, false
	}
	return cable.LidRange{Begin: 0, End: 1}, true
}

// LIFVoltage probes the membrane potential of a LIF cell.
type LIFVoltage struct{}

// lifState is the integration state of one LIF cell
type lifState struct {
	cell  *LIFCell
	v     float32
	tlast float64
	now   float64
	queue event.Queue
}

func (ls *lifState) reset() {
	ls.v = ls.cell.Vm
	ls.tlast = 0
	ls.now = 0
	ls.queue.Clear()
}

// decayed returns the potential at time t >= tlast
func (ls *lifState) decayed(t float64) float32 {
	lc := ls.cell
	return lc.EL + (ls.v-lc.EL)*math32.Exp(-float32(t-ls.tlast)/lc.TauM)
}

// advanceTo processes all events before t, appending spikes from gid
func (ls *lifState) advanceTo(gid int, t float64, spikes []event.Spike) []event.Spike {
	lc := ls.cell
	for {
		ev, ok := ls.queue.PopIfBefore(t)
		if !ok {
			break
		}
		if ev.Time < ls.tlast { // refractory
			continue
		}
		ls.v = ls.decayed(ev.Time) + ev.Weight/lc.Cm
		ls.tlast = ev.Time
		if ls.v >= lc.Vth {
			spikes = append(spikes, event.Spike{Source: event.CellMember{Gid: gid, Index: 0}, Time: ev.Time})
			ls.tlast += float64(lc.Tref)
			ls.v = lc.Vreset
		}
	}
	ls.now = t
	return spikes
}

func (ls *lifState) voltage() float32 {
	if ls.now < ls.tlast {
		return ls.cell.Vreset
	}
	return ls.decayed(ls.now)
}

// lifGroup integrates LIF cells
type lifGroup struct {
	groupBase
	states []*lifState
}

func newLIFGroup(gd GroupDesc, rec recipe.Recipe, res *lidResolver) (*lifGroup, error) {
	lg := &lifGroup{groupBase: newGroupBase(recipe.LIF, gd.Gids)}
	for idx, gid := range gd.Gids {
		lc, ok := rec.CellDescription(gid).(*LIFCell)
		if !ok {
			return nil, fmt.Errorf("%w: gid %d of kind %v is described by %T", recipe.ErrInconsistentKind, gid, recipe.LIF, rec.CellDescription(gid))
		}
		if lc.TauM <= 0 || lc.Cm <= 0 {
			return nil, fmt.Errorf("sim: gid %d: LIF cell needs positive TauM and Cm", gid)
		}
		ls := &lifState{cell: lc}
		ls.reset()
		lg.states = append(lg.states, ls)
		if err := lg.addGenerators(idx, lc, rec.EventGenerators(gid), res); err != nil {
			return nil, err
		}
	}
	return lg, nil
}

func (lg *lifGroup) Advance(t0, t1, dt float64) {
	for idx, ls := range lg.states {
		gid := lg.gids[idx]
		ls.queue.PushAll(lg.generate(idx, t0, t1))
		lg.advanceCell(idx, t0, t1, func(t float64) {
			lg.spikes = ls.advanceTo(gid, t, lg.spikes)
		})
	}
}

func (lg *lifGroup) Enqueue(idx int, ev event.Event) {
	lg.states[idx].queue.Push(ev)
}

func (lg *lifGroup) AddSampler(idx int, sa *sampleAssoc, addr any) error {
	if _, ok := addr.(LIFVoltage); !ok {
		return fmt.Errorf("sim: unsupported probe address %T for LIF cell", addr)
	}
	ls := lg.states[idx]
	sa.setSamplers([]cable.Sampler{{Meta: "Vm", Value: ls.voltage}})
	lg.samples[idx] = append(lg.samples[idx], sa)
	return nil
}

func (lg *lifGroup) Reset() {
	for _, ls := range lg.states {
		ls.reset()
	}
	lg.resetBase()
}

func (lg *lifGroup) Bytes() int {
	return len(lg.states) * (4 + 3*8)
}
