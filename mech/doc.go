// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package mech provides the membrane mechanisms that are painted or placed
on cable cells, and the Catalogue used to look them up by name.

Density mechanisms (hh, pas) are distributed over membrane area, with
conductances in S/cm² and currents in mA/cm².  Point mechanisms
(expsyn, exp2syn, nmda, gabab) sit at single locations, with conductances in µS and
currents in nA, and receive weighted spike events through NetReceive.

All mechanisms contribute a current and its voltage derivative
(conductance) to each control volume they cover, which is what the
implicit cable solver needs, and then advance their own state given the
new membrane potential.  Units are mV, ms, µm², nA, µS.
*/
package mech
