// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package morph describes the geometry of multi-compartment neurons.

A SegmentTree is built by appending tapered cylindrical segments to a
parent segment, each with an integer tag (1 = soma, 2 = axon,
3 = dendrite, 4 = apical dendrite by SWC convention).  A Morphology
groups the segments into unbranched branches, and an Embedding gives
lengths, radii, areas and axial resistance along those branches.

Places on a morphology are addressed by a Location (branch + relative
position in [0,1]) or a Cable (branch + [prox,dist] interval).  Regions
(sets of cables) and Locsets (multisets of locations) are written as
s-expressions, e.g. (tag 1), (location 1 0.5) or (root), and can be
named in a LabelDict so that cell decorations refer to them by label.
*/
package morph
