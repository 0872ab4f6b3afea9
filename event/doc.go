// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package event holds the spike and event types exchanged between cells,
the schedules that drive event generators, and the time-ordered queue
each cell uses to buffer incoming events.

Cells are addressed by gid, and items placed on a cell (synapses,
detectors) by a label that is resolved to a local index (lid) at
simulation construction time.
*/
package event
