// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cable implements multi-compartment cable cells: a morphology with
labels, decorated with painted membrane properties and density mechanisms
and placed synapses, detectors and clamps.

A Cell is discretized into control volumes (CVs) according to a CVPolicy,
and its State is advanced with an implicit Euler step, solving the tree
structured linear system by Hines elimination.

Units: mV, ms, µm, nA, µS, nF.  Capacitance is painted in F/m² and
axial resistivity in Ω·cm.
*/
package cable
