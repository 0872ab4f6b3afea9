// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import "fmt"

// Location is a point on a morphology: a branch and a relative position
// along it, 0 = proximal end, 1 = distal end.
type Location struct {
	Branch int
	Pos    float32
}

func (lc Location) String() string {
	return fmt.Sprintf("(location %d %g)", lc.Branch, lc.Pos)
}

// Cable is an unbranched interval [Prox, Dist] on one branch.
type Cable struct {
	Branch int
	Prox   float32
	Dist   float32
}

func (cb Cable) String() string {
	return fmt.Sprintf("(cable %d %g %g)", cb.Branch, cb.Prox, cb.Dist)
}

// Overlap returns the interval shared by the cable and [p0, p1] on branch,
// and false if they do not overlap.
func (cb Cable) Overlap(branch int, p0, p1 float32) (float32, float32, bool) {
	if cb.Branch != branch {
		return 0, 0, false
	}
	a := p0
	if cb.Prox > a {
		a = cb.Prox
	}
	b := p1
	if cb.Dist < b {
		b = cb.Dist
	}
	if b <= a {
		return 0, 0, false
	}
	return a, b, true
}

// Morphology is a SegmentTree organized into unbranched branches.
// A segment starts a new branch when it is a root or its parent is a fork,
// and branches are numbered in order of their first segment.
type Morphology struct {

	// underlying segments
	Tree *SegmentTree

	// segment indexes for each branch, proximal to distal
	Branches [][]int

	// parent branch of each branch, MNpos for root branches
	BranchParents []int

	// child branches of each branch
	BranchChildren [][]int

	// branch of each segment
	SegBranch []int
}

// NewMorphology builds a morphology from a copy of the given tree.
func NewMorphology(st *SegmentTree) *Morphology {
	mp := &Morphology{Tree: st.Clone()}
	tr := mp.Tree
	ns := tr.Size()
	mp.SegBranch = make([]int, ns)
	for si := 0; si < ns; si++ {
		par := tr.Parents[si]
		if par == MNpos || tr.IsFork(par) {
			bi := len(mp.Branches)
			mp.Branches = append(mp.Branches, []int{si})
			mp.BranchChildren = append(mp.BranchChildren, nil)
			if par == MNpos {
				mp.BranchParents = append(mp.BranchParents, MNpos)
			} else {
				pb := mp.SegBranch[par]
				mp.BranchParents = append(mp.BranchParents, pb)
				mp.BranchChildren[pb] = append(mp.BranchChildren[pb], bi)
			}
			mp.SegBranch[si] = bi
			continue
		}
		bi := mp.SegBranch[par]
		mp.Branches[bi] = append(mp.Branches[bi], si)
		mp.SegBranch[si] = bi
	}
	return mp
}

// NumBranches returns the number of branches.
func (mp *Morphology) NumBranches() int {
	return len(mp.Branches)
}

// Empty is true if there are no segments.
func (mp *Morphology) Empty() bool {
	return len(mp.Branches) == 0
}

// BranchParent returns the parent branch of bi, MNpos for a root branch.
func (mp *Morphology) BranchParent(bi int) int {
	return mp.BranchParents[bi]
}

// BranchSegments returns the segments of branch bi.
func (mp *Morphology) BranchSegments(bi int) []Segment {
	segs := make([]Segment, len(mp.Branches[bi]))
	for i, si := range mp.Branches[bi] {
		segs[i] = mp.Tree.Segs[si]
	}
	return segs
}

// TerminalBranches returns the branches that have no children.
func (mp *Morphology) TerminalBranches() []int {
	var tb []int
	for bi := range mp.Branches {
		if len(mp.BranchChildren[bi]) == 0 {
			tb = append(tb, bi)
		}
	}
	return tb
}

// ValidLocation returns an error if lc does not lie on the morphology.
func (mp *Morphology) ValidLocation(lc Location) error {
	if lc.Branch < 0 || lc.Branch >= len(mp.Branches) {
		return fmt.Errorf("morph: location %v: no such branch in morphology with %d branches", lc, len(mp.Branches))
	}
	if lc.Pos < 0 || lc.Pos > 1 {
		return fmt.Errorf("morph: location %v: position must be in [0, 1]", lc)
	}
	return nil
}
