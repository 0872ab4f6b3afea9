// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"io"
	"strconv"

	"github.com/emer/cable/sim"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
)

// LogPrec is precision for saving float values
const LogPrec = 4

// ConfigTable configures dt with the trace columns: Cell, Loc, Time and Vm.
func ConfigTable(dt *etable.Table) {
	dt.SetMetaData("name", "Traces")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))

	sch := etable.Schema{
		{"Cell", etensor.INT64, nil, nil},
		{"Loc", etensor.STRING, nil, nil},
		{"Time", etensor.FLOAT64, nil, nil},
		{"Vm", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
}

// Table returns the samples of the traces, one row per sample, in order.
func Table(trs []sim.Trace) *etable.Table {
	dt := &etable.Table{}
	ConfigTable(dt)
	AddTraces(dt, trs)
	return dt
}

// AddTraces appends the samples of trs to dt.
func AddTraces(dt *etable.Table, trs []sim.Trace) {
	row := dt.Rows
	n := 0
	for i := range trs {
		n += trs[i].Len()
	}
	dt.SetNumRows(row + n)
	for i := range trs {
		tr := &trs[i]
		for j, t := range tr.Times {
			dt.SetCellFloat("Cell", row, float64(tr.Probe.Gid))
			dt.SetCellString("Loc", row, tr.Meta)
			dt.SetCellFloat("Time", row, t)
			dt.SetCellFloat("Vm", row, float64(tr.Values[j]))
			row++
		}
	}
}

// WriteCSV writes dt as comma separated values with headers.
func WriteCSV(dt *etable.Table, w io.Writer) error {
	return dt.WriteCSV(w, etable.Comma, etable.Headers)
}

// CellSummary is the range of the samples of one cell.
type CellSummary struct {
	Cell int
	N    int
	Time minmax.F64
	Vm   minmax.F64
}

// Summary returns the sample ranges per cell, in order of first appearance.
func Summary(dt *etable.Table) []CellSummary {
	var sms []CellSummary
	idx := map[int]int{}
	for row := 0; row < dt.Rows; row++ {
		c := int(dt.CellFloat("Cell", row))
		i, ok := idx[c]
		if !ok {
			i = len(sms)
			idx[c] = i
			cs := CellSummary{Cell: c}
			cs.Time.SetInfinity()
			cs.Vm.SetInfinity()
			sms = append(sms, cs)
		}
		cs := &sms[i]
		cs.N++
		cs.Time.FitValInRange(dt.CellFloat("Time", row))
		cs.Vm.FitValInRange(dt.CellFloat("Vm", row))
	}
	return sms
}
