// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"
	"sort"
	"strings"
)

// Region describes a set of cables on a morphology, independent of any
// particular morphology until it is thingified by a Provider.
type Region interface {
	fmt.Stringer

	// cables returns the merged, sorted cables of the region
	cables(pv *Provider) ([]Cable, error)
}

// RegAll is the whole morphology.
type RegAll struct{}

func (RegAll) String() string { return "(all)" }

func (RegAll) cables(pv *Provider) ([]Cable, error) {
	cbs := make([]Cable, pv.Morph.NumBranches())
	for bi := range cbs {
		cbs[bi] = Cable{Branch: bi, Prox: 0, Dist: 1}
	}
	return cbs, nil
}

// RegNil is the empty region.
type RegNil struct{}

func (RegNil) String() string { return "(region-nil)" }

func (RegNil) cables(pv *Provider) ([]Cable, error) { return nil, nil }

// RegTag is the set of segments with a given tag.
type RegTag struct {
	Tag int
}

func (rt RegTag) String() string { return fmt.Sprintf("(tag %d)", rt.Tag) }

func (rt RegTag) cables(pv *Provider) ([]Cable, error) {
	var cbs []Cable
	tr := pv.Morph.Tree
	for si := range tr.Segs {
		if tr.Segs[si].Tag != rt.Tag {
			continue
		}
		cbs = append(cbs, Cable{Branch: pv.Morph.SegBranch[si], Prox: pv.Embed.SegProx[si], Dist: pv.Embed.SegDist[si]})
	}
	return MergeCables(cbs), nil
}

// RegBranch is a whole branch.
type RegBranch struct {
	Branch int
}

func (rb RegBranch) String() string { return fmt.Sprintf("(branch %d)", rb.Branch) }

func (rb RegBranch) cables(pv *Provider) ([]Cable, error) {
	if rb.Branch < 0 || rb.Branch >= pv.Morph.NumBranches() {
		return nil, fmt.Errorf("morph: %v: no such branch", rb)
	}
	return []Cable{{Branch: rb.Branch, Prox: 0, Dist: 1}}, nil
}

// RegCable is an explicit cable.
type RegCable struct {
	Cable Cable
}

func (rc RegCable) String() string { return rc.Cable.String() }

func (rc RegCable) cables(pv *Provider) ([]Cable, error) {
	cb := rc.Cable
	if cb.Branch < 0 || cb.Branch >= pv.Morph.NumBranches() {
		return nil, fmt.Errorf("morph: %v: no such branch", rc)
	}
	if cb.Prox < 0 || cb.Dist > 1 || cb.Prox > cb.Dist {
		return nil, fmt.Errorf("morph: %v: invalid cable extent", rc)
	}
	return []Cable{cb}, nil
}

// RegJoin is the union of regions.
type RegJoin struct {
	Regs []Region
}

func (rj RegJoin) String() string {
	strs := make([]string, len(rj.Regs))
	for i, r := range rj.Regs {
		strs[i] = r.String()
	}
	return "(join " + strings.Join(strs, " ") + ")"
}

func (rj RegJoin) cables(pv *Provider) ([]Cable, error) {
	var cbs []Cable
	for _, r := range rj.Regs {
		rc, err := r.cables(pv)
		if err != nil {
			return nil, err
		}
		cbs = append(cbs, rc...)
	}
	return MergeCables(cbs), nil
}

// RegLabel refers to a region defined in a LabelDict.
type RegLabel struct {
	Name string
}

func (rl RegLabel) String() string { return fmt.Sprintf("%q", rl.Name) }

func (rl RegLabel) cables(pv *Provider) ([]Cable, error) {
	return pv.Region(rl.Name)
}

// MergeCables sorts cables by branch and position, and merges overlapping
// or touching cables on the same branch.
func MergeCables(cbs []Cable) []Cable {
	if len(cbs) == 0 {
		return nil
	}
	srt := append([]Cable(nil), cbs...)
	sort.Slice(srt, func(i, j int) bool {
		if srt[i].Branch != srt[j].Branch {
			return srt[i].Branch < srt[j].Branch
		}
		return srt[i].Prox < srt[j].Prox
	})
	mrg := []Cable{srt[0]}
	for _, cb := range srt[1:] {
		lst := &mrg[len(mrg)-1]
		if cb.Branch == lst.Branch && cb.Prox <= lst.Dist {
			if cb.Dist > lst.Dist {
				lst.Dist = cb.Dist
			}
			continue
		}
		mrg = append(mrg, cb)
	}
	return mrg
}
