// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cable is the overall repository for simulating networks of
multi-compartment neurons in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* morph: segment trees, morphologies, SWC files, and the region / locset
expressions that label parts of a cell.

* mech: membrane mechanisms (hh, pas, expsyn, exp2syn, nmda, gabab), ion species and
the mechanism catalogue.

* cable: decorating a morphology into a cell, discretization into control
volumes, and the implicit cable equation solver for one cell.

* event, recipe: spikes, events, schedules and generators, and the Recipe
interface through which a model describes its cells and connections.

* sim: domain decomposition, cell groups (cable, LIF, spike source), and
the Simulation that advances them in parallel and exchanges spikes,
locally or over MPI.

* trace: sampled voltage traces as etable.Table, CSV and SVG plots.

* examples: these actually compile into runnable programs and provide the starting
point for your own simulations.  examples/network_ring is the place to start: a
ring of cells that each excite the next one.
*/
package cable
