// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"

	"github.com/goki/mat32"
)

// MNpos is the parent index used for a segment at the root of the tree.
const MNpos = -1

// Standard SWC tags
const (
	TagSoma   = 1
	TagAxon   = 2
	TagDend   = 3
	TagApical = 4
)

// Point is a location in space with a radius, all in µm.
type Point struct {

	// position in 3D space
	Pos mat32.Vec3

	// radius of the cable at this point
	Radius float32
}

// NewPoint returns a point at x, y, z with radius r.
func NewPoint(x, y, z, r float32) Point {
	return Point{Pos: mat32.Vec3{X: x, Y: y, Z: z}, Radius: r}
}

// Segment is a frustum between a proximal and a distal point.
type Segment struct {

	// index of the segment in its tree
	ID int

	// proximal end
	Prox Point

	// distal end
	Dist Point

	// user tag, typically an SWC structure identifier
	Tag int
}

// Length returns the distance between the segment ends.
func (sg *Segment) Length() float32 {
	return sg.Dist.Pos.Sub(sg.Prox.Pos).Length()
}

// InvalidParentError is returned when appending to a parent that does not exist.
type InvalidParentError struct {
	Parent int
	Size   int
}

func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("morph: invalid parent segment %d for tree of size %d", e.Parent, e.Size)
}

// SegmentTree is a tree of segments in which each parent has a lower index than its children.
type SegmentTree struct {

	// segments in order of creation
	Segs []Segment

	// parent index of each segment, MNpos for roots
	Parents []int

	// number of children of each segment
	NChild []int
}

// NewSegmentTree returns an empty tree.
func NewSegmentTree() *SegmentTree {
	return &SegmentTree{}
}

// Size returns the number of segments.
func (st *SegmentTree) Size() int {
	return len(st.Segs)
}

// Empty is true if the tree has no segments.
func (st *SegmentTree) Empty() bool {
	return len(st.Segs) == 0
}

// Append adds a segment from prox to dist as a child of parent,
// returning the index of the new segment.
func (st *SegmentTree) Append(parent int, prox, dist Point, tag int) (int, error) {
	if parent != MNpos && (parent < 0 || parent >= len(st.Segs)) {
		return -1, &InvalidParentError{Parent: parent, Size: len(st.Segs)}
	}
	id := len(st.Segs)
	st.Segs = append(st.Segs, Segment{ID: id, Prox: prox, Dist: dist, Tag: tag})
	st.Parents = append(st.Parents, parent)
	st.NChild = append(st.NChild, 0)
	if parent != MNpos {
		st.NChild[parent]++
	}
	return id, nil
}

// AppendDist adds a segment whose proximal end is the distal end of parent.
func (st *SegmentTree) AppendDist(parent int, dist Point, tag int) (int, error) {
	if parent < 0 || parent >= len(st.Segs) {
		return -1, &InvalidParentError{Parent: parent, Size: len(st.Segs)}
	}
	return st.Append(parent, st.Segs[parent].Dist, dist, tag)
}

// IsRoot is true if the segment has no parent.
func (st *SegmentTree) IsRoot(i int) bool {
	return st.Parents[i] == MNpos
}

// IsFork is true if the segment has more than one child.
func (st *SegmentTree) IsFork(i int) bool {
	return st.NChild[i] > 1
}

// IsTerminal is true if the segment has no children.
func (st *SegmentTree) IsTerminal(i int) bool {
	return st.NChild[i] == 0
}

// Clone returns a deep copy of the tree.
func (st *SegmentTree) Clone() *SegmentTree {
	cp := &SegmentTree{}
	cp.Segs = append([]Segment(nil), st.Segs...)
	cp.Parents = append([]int(nil), st.Parents...)
	cp.NChild = append([]int(nil), st.NChild...)
	return cp
}
