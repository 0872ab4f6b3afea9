// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sim runs a network described by a recipe.Recipe.

A Context gives the threads and the distributed communicator, a
Decomposition assigns cells to ranks and groups, and a Simulation owns
the cell groups and exchanges spikes between them.

Time is advanced in epochs of half the minimum connection delay: all
groups are advanced in parallel over an epoch, the spikes they generate
are gathered across ranks, and the resulting events are queued on their
target cells, where they are always due after the next epoch.
*/
package sim
