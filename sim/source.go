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

// SpikeSourceCell emits spikes at the times of its schedule.
type SpikeSourceCell struct {
	Source   string
	Schedule event.Schedule
}

// NewSpikeSourceCell returns a spike source with the given source label.
func NewSpikeSourceCell(source string, sched event.Schedule) *SpikeSourceCell {
	return &SpikeSourceCell{Source: source, Schedule: sched}
}

func (sc *SpikeSourceCell) Targets(label string) (cable.LidRange, bool) {
	return cable.LidRange{}, false
}

func (sc *SpikeSourceCell) Sources(label string) (cable.LidRange, bool) {
	if label != sc.Source {
		return cable.LidRange{}, false
	}
	return cable.LidRange{Begin: 0, End: 1}, true
}

// sourceGroup emits the spikes of spike source cells
type sourceGroup struct {
	groupBase
	cells []*SpikeSourceCell
}

func newSourceGroup(gd GroupDesc, rec recipe.Recipe) (*sourceGroup, error) {
	sg := &sourceGroup{groupBase: newGroupBase(recipe.SpikeSource, gd.Gids)}
	for _, gid := range gd.Gids {
		sc, ok := rec.CellDescription(gid).(*SpikeSourceCell)
		if !ok {
			return nil, fmt.Errorf("%w: gid %d of kind %v is described by %T", recipe.ErrInconsistentKind, gid, recipe.SpikeSource, rec.CellDescription(gid))
		}
		if sc.Schedule == nil {
			return nil, fmt.Errorf("sim: gid %d: spike source has no schedule", gid)
		}
		if len(rec.EventGenerators(gid)) > 0 {
			return nil, fmt.Errorf("%w: spike source gid %d can not have event generators", recipe.ErrBadLabel, gid)
		}
		sg.cells = append(sg.cells, sc)
	}
	return sg, nil
}

func (sg *sourceGroup) Advance(t0, t1, dt float64) {
	for idx, sc := range sg.cells {
		for _, t := range sc.Schedule.Events(t0, t1) {
			sg.spikes = append(sg.spikes, event.Spike{Source: event.CellMember{Gid: sg.gids[idx], Index: 0}, Time: t})
		}
	}
}

func (sg *sourceGroup) Enqueue(idx int, ev event.Event) {}

func (sg *sourceGroup) AddSampler(idx int, sa *sampleAssoc, addr any) error {
	return fmt.Errorf("sim: spike source cells have no probes")
}

func (sg *sourceGroup) Reset() {
	for _, sc := range sg.cells {
		sc.Schedule.Reset()
	}
	sg.resetBase()
}

func (sg *sourceGroup) Bytes() int {
	return 0
}
