// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package recipe defines the Recipe interface through which a model
// describes its cells, their connections, event generators and probes
// to a simulation.
package recipe

import (
	"errors"
	"fmt"

	"github.com/emer/cable/event"
	"github.com/goki/ki/kit"
)

// CellKind is the model family of a cell.
type CellKind int

//go:generate stringer -type=CellKind

var KiT_CellKind = kit.Enums.AddEnum(CellKindN, kit.NotBitFlag, nil)

func (ev CellKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *CellKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Cable is a multi-compartment cable cell, described by a *cable.Cell
	Cable CellKind = iota

	// LIF is a leaky integrate and fire cell, described by a *sim.LIFCell
	LIF

	// SpikeSource is a cell that emits spikes on a schedule, described by a *sim.SpikeSourceCell
	SpikeSource

	CellKindN
)

// CellMember, Label and LidSelection are shared with the event package.
type (
	CellMember   = event.CellMember
	Label        = event.Label
	LidSelection = event.LidSelection
)

// SourceLabel is a labeled detector on cell Gid.
type SourceLabel struct {
	Gid   int
	Label Label
}

// Connection is a directed edge from a detector on the source cell to a
// synapse on the cell whose ConnectionsOn returned it.
type Connection struct {
	Source SourceLabel

	// synapse label on the target cell
	Target Label

	// weight passed to the synapse, µS for conductance synapses
	Weight float32

	// delay from spike to event delivery, ms; must be positive
	Delay float64
}

// NewConnection returns a connection with round-robin label selection.
func NewConnection(srcGid int, srcLabel, tgtLabel string, weight float32, delay float64) Connection {
	return Connection{Source: SourceLabel{Gid: srcGid, Label: event.NewLabel(srcLabel)}, Target: event.NewLabel(tgtLabel), Weight: weight, Delay: delay}
}

func (cn Connection) String() string {
	return fmt.Sprintf("(%d, %q) -> %q w %g d %g", cn.Source.Gid, cn.Source.Label.Tag, cn.Target.Tag, cn.Weight, cn.Delay)
}

// ProbeInfo describes a probe on a cell.  Address is interpreted by the cell
// kind, e.g., cable.MembraneVoltage.
type ProbeInfo struct {
	Tag     int
	Address any
}

// Recipe describes a model to a simulation.  All methods must be
// deterministic: the simulation may call them in any order, more than
// once, and from multiple goroutines.
type Recipe interface {

	// NumCells is the total number of cells, constant over the life of the recipe
	NumCells() int

	// CellDescription returns the description of cell gid, whose type must match CellKind
	CellDescription(gid int) any

	// CellKind returns the model family of cell gid
	CellKind(gid int) CellKind

	// ConnectionsOn returns the incoming connections of cell gid
	ConnectionsOn(gid int) []Connection

	// EventGenerators returns the event generators attached to cell gid
	EventGenerators(gid int) []event.Generator

	// Probes returns the probes on cell gid, addressed by their index
	Probes(gid int) []ProbeInfo

	// GlobalProperties returns the properties shared by all cells of a kind,
	// e.g., *cable.Props for Cable
	GlobalProperties(kind CellKind) any
}

var (
	// ErrInconsistentKind is returned when a cell description does not match its kind
	ErrInconsistentKind = errors.New("recipe: cell description does not match cell kind")

	// ErrBadGid is returned for a gid outside [0, NumCells)
	ErrBadGid = errors.New("recipe: gid out of range")

	// ErrBadLabel is returned when a connection or generator label does not resolve
	ErrBadLabel = errors.New("recipe: label does not resolve")

	// ErrBadDelay is returned for a connection with a non-positive delay
	ErrBadDelay = errors.New("recipe: connection delay must be positive")
)

// ConnectionError reports an invalid connection onto cell Gid.
type ConnectionError struct {
	Gid  int
	Conn Connection
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %v on gid %d: %v", e.Conn, e.Gid, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
