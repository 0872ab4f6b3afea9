// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// CellMember identifies an item on a cell: Index is the local index (lid)
// among the items of one kind (synapses or detectors) on cell Gid.
type CellMember struct {
	Gid   int
	Index int
}

func (cm CellMember) String() string {
	return fmt.Sprintf("%d:%d", cm.Gid, cm.Index)
}

// Less orders by gid then index.
func (cm CellMember) Less(o CellMember) bool {
	if cm.Gid != o.Gid {
		return cm.Gid < o.Gid
	}
	return cm.Index < o.Index
}

// LidSelection determines which of the items placed under one label
// a connection or generator refers to.
type LidSelection int

//go:generate stringer -type=LidSelection

var KiT_LidSelection = kit.Enums.AddEnum(LidSelectionN, kit.NotBitFlag, nil)

func (ev LidSelection) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *LidSelection) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// RoundRobin cycles through the items of the label on successive uses
	RoundRobin LidSelection = iota

	// AssertUnivalent requires the label to refer to exactly one item
	AssertUnivalent

	LidSelectionN
)

// Label names placed items on a cell, with the policy for picking one of them.
type Label struct {
	Tag    string
	Policy LidSelection
}

// NewLabel returns a round-robin label.
func NewLabel(tag string) Label {
	return Label{Tag: tag, Policy: RoundRobin}
}

func (lb Label) String() string {
	return fmt.Sprintf("%q(%v)", lb.Tag, lb.Policy)
}

// Spike is a threshold crossing of a detector at time Time (ms).
type Spike struct {
	Source CellMember
	Time   float64
}

func (sp Spike) String() string {
	return fmt.Sprintf("S[src %v, t %.6f]", sp.Source, sp.Time)
}

// Event is a weighted spike arriving at a target synapse at time Time (ms).
type Event struct {
	Target CellMember
	Time   float64
	Weight float32
}

// Less orders by time, then target, then weight.
func (ev Event) Less(o Event) bool {
	if ev.Time != o.Time {
		return ev.Time < o.Time
	}
	if ev.Target != o.Target {
		return ev.Target.Less(o.Target)
	}
	return ev.Weight < o.Weight
}

func (ev Event) String() string {
	return fmt.Sprintf("E[tgt %v, t %v, w %v]", ev.Target, ev.Time, ev.Weight)
}
