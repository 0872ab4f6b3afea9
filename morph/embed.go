// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"github.com/chewxy/math32"
)

// Embedding holds the metric properties of a morphology: branch lengths,
// and the relative positions of each segment along its branch.
// Radius varies linearly within each segment.
type Embedding struct {

	// morphology that is embedded
	Morph *Morphology

	// length of each branch, µm
	BranchLen []float32

	// relative position of the proximal end of each segment on its branch
	SegProx []float32

	// relative position of the distal end of each segment on its branch
	SegDist []float32
}

// NewEmbedding computes the embedding of a morphology.
func NewEmbedding(mp *Morphology) *Embedding {
	em := &Embedding{Morph: mp}
	ns := mp.Tree.Size()
	em.BranchLen = make([]float32, mp.NumBranches())
	em.SegProx = make([]float32, ns)
	em.SegDist = make([]float32, ns)
	for bi, segs := range mp.Branches {
		tot := float32(0)
		for _, si := range segs {
			tot += mp.Tree.Segs[si].Length()
		}
		em.BranchLen[bi] = tot
		acc := float32(0)
		nseg := float32(len(segs))
		for i, si := range segs {
			l := mp.Tree.Segs[si].Length()
			if tot > 0 {
				em.SegProx[si] = acc / tot
				acc += l
				em.SegDist[si] = acc / tot
			} else { // degenerate branch: spread segments evenly
				em.SegProx[si] = float32(i) / nseg
				em.SegDist[si] = float32(i+1) / nseg
			}
		}
		if len(segs) > 0 {
			em.SegDist[segs[len(segs)-1]] = 1
		}
	}
	return em
}

// Length returns the length of branch bi in µm.
func (em *Embedding) Length(bi int) float32 {
	return em.BranchLen[bi]
}

// segRadius returns the radius of segment si at relative branch position pos.
func (em *Embedding) segRadius(si int, pos float32) float32 {
	sg := &em.Morph.Tree.Segs[si]
	span := em.SegDist[si] - em.SegProx[si]
	if span <= 0 {
		return sg.Prox.Radius
	}
	f := (pos - em.SegProx[si]) / span
	return sg.Prox.Radius + f*(sg.Dist.Radius-sg.Prox.Radius)
}

// SegmentAt returns the segment of branch bi that contains relative position pos.
func (em *Embedding) SegmentAt(bi int, pos float32) int {
	segs := em.Morph.Branches[bi]
	for _, si := range segs {
		if pos <= em.SegDist[si] {
			return si
		}
	}
	return segs[len(segs)-1]
}

// Radius returns the cable radius at a location, µm.
func (em *Embedding) Radius(lc Location) float32 {
	return em.segRadius(em.SegmentAt(lc.Branch, lc.Pos), lc.Pos)
}

// frusta calls fun for every segment piece that lies within [p0, p1] on branch bi,
// with the piece length and its end radii.
func (em *Embedding) frusta(bi int, p0, p1 float32, fun func(l, r0, r1 float32)) {
	bl := em.BranchLen[bi]
	for _, si := range em.Morph.Branches[bi] {
		a := math32.Max(p0, em.SegProx[si])
		b := math32.Min(p1, em.SegDist[si])
		if b <= a {
			continue
		}
		fun((b-a)*bl, em.segRadius(si, a), em.segRadius(si, b))
	}
}

// Area returns the lateral surface area of branch bi between p0 and p1, µm².
func (em *Embedding) Area(bi int, p0, p1 float32) float32 {
	area := float32(0)
	em.frusta(bi, p0, p1, func(l, r0, r1 float32) {
		dr := r1 - r0
		area += math32.Pi * (r0 + r1) * math32.Sqrt(l*l+dr*dr)
	})
	return area
}

// IntegrateIxa returns the integral of 1/(π r²) along branch bi between p0 and p1,
// in 1/µm.  Multiplied by the axial resistivity this gives the axial resistance.
func (em *Embedding) IntegrateIxa(bi int, p0, p1 float32) float32 {
	ixa := float32(0)
	em.frusta(bi, p0, p1, func(l, r0, r1 float32) {
		if r0 <= 0 || r1 <= 0 {
			return
		}
		ixa += l / (math32.Pi * r0 * r1)
	})
	return ixa
}

// CableArea returns the total lateral area of a set of cables, µm².
func (em *Embedding) CableArea(cbs []Cable) float32 {
	area := float32(0)
	for _, cb := range cbs {
		area += em.Area(cb.Branch, cb.Prox, cb.Dist)
	}
	return area
}
