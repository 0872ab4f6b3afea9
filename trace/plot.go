// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"fmt"

	"github.com/emer/etable/etable"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotSVG plots Vm against Time of dt, one line per cell, and saves it to
// fname, whose extension selects the format.
func PlotSVG(dt *etable.Table, fname, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t/ms"
	p.Y.Label.Text = "U/mV"
	p.Legend.Top = true

	var cells []int
	pts := map[int]plotter.XYs{}
	for row := 0; row < dt.Rows; row++ {
		c := int(dt.CellFloat("Cell", row))
		if _, ok := pts[c]; !ok {
			cells = append(cells, c)
		}
		pts[c] = append(pts[c], plotter.XY{X: dt.CellFloat("Time", row), Y: dt.CellFloat("Vm", row)})
	}
	for i, c := range cells {
		ln, err := plotter.NewLine(pts[c])
		if err != nil {
			return err
		}
		ln.Color = plotutil.Color(i)
		p.Add(ln)
		p.Legend.Add(fmt.Sprintf("cell %d", c), ln)
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, fname)
}
