// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"
	"sort"
	"strings"
)

// Locset describes a multiset of locations on a morphology.
type Locset interface {
	fmt.Stringer

	// locations returns the sorted locations of the locset
	locations(pv *Provider) ([]Location, error)
}

// LocRoot is the proximal end of the first root branch.
type LocRoot struct{}

func (LocRoot) String() string { return "(root)" }

func (LocRoot) locations(pv *Provider) ([]Location, error) {
	if pv.Morph.Empty() {
		return nil, nil
	}
	return []Location{{Branch: 0, Pos: 0}}, nil
}

// LocTerminal is the set of distal ends of branches without children.
type LocTerminal struct{}

func (LocTerminal) String() string { return "(terminal)" }

func (LocTerminal) locations(pv *Provider) ([]Location, error) {
	var lcs []Location
	for _, bi := range pv.Morph.TerminalBranches() {
		lcs = append(lcs, Location{Branch: bi, Pos: 1})
	}
	return lcs, nil
}

// LocNil is the empty locset.
type LocNil struct{}

func (LocNil) String() string { return "(locset-nil)" }

func (LocNil) locations(pv *Provider) ([]Location, error) { return nil, nil }

// LocLocation is a single explicit location.
type LocLocation struct {
	Loc Location
}

func (ll LocLocation) String() string { return ll.Loc.String() }

func (ll LocLocation) locations(pv *Provider) ([]Location, error) {
	if err := pv.Morph.ValidLocation(ll.Loc); err != nil {
		return nil, err
	}
	return []Location{ll.Loc}, nil
}

// LocOnBranches is the location at relative position Pos on every branch.
type LocOnBranches struct {
	Pos float32
}

func (lb LocOnBranches) String() string { return fmt.Sprintf("(on-branches %g)", lb.Pos) }

func (lb LocOnBranches) locations(pv *Provider) ([]Location, error) {
	if lb.Pos < 0 || lb.Pos > 1 {
		return nil, fmt.Errorf("morph: %v: position must be in [0, 1]", lb)
	}
	lcs := make([]Location, pv.Morph.NumBranches())
	for bi := range lcs {
		lcs[bi] = Location{Branch: bi, Pos: lb.Pos}
	}
	return lcs, nil
}

// LocSum is the multiset sum of locsets: repeated locations are kept.
type LocSum struct {
	Locs []Locset
}

func (ls LocSum) String() string { return "(sum " + locsetsString(ls.Locs) + ")" }

func (ls LocSum) locations(pv *Provider) ([]Location, error) {
	lcs, err := gatherLocations(pv, ls.Locs)
	if err != nil {
		return nil, err
	}
	SortLocations(lcs)
	return lcs, nil
}

// LocJoin is the set union of locsets: repeated locations are removed.
type LocJoin struct {
	Locs []Locset
}

func (lj LocJoin) String() string { return "(join " + locsetsString(lj.Locs) + ")" }

func (lj LocJoin) locations(pv *Provider) ([]Location, error) {
	lcs, err := gatherLocations(pv, lj.Locs)
	if err != nil {
		return nil, err
	}
	SortLocations(lcs)
	var uniq []Location
	for _, lc := range lcs {
		if len(uniq) > 0 && lc == uniq[len(uniq)-1] {
			continue
		}
		uniq = append(uniq, lc)
	}
	return uniq, nil
}

// LocLabel refers to a locset defined in a LabelDict.
type LocLabel struct {
	Name string
}

func (ll LocLabel) String() string { return fmt.Sprintf("%q", ll.Name) }

func (ll LocLabel) locations(pv *Provider) ([]Location, error) {
	return pv.Locset(ll.Name)
}

func gatherLocations(pv *Provider, lss []Locset) ([]Location, error) {
	var lcs []Location
	for _, ls := range lss {
		l, err := ls.locations(pv)
		if err != nil {
			return nil, err
		}
		lcs = append(lcs, l...)
	}
	return lcs, nil
}

func locsetsString(lss []Locset) string {
	strs := make([]string, len(lss))
	for i, l := range lss {
		strs[i] = l.String()
	}
	return strings.Join(strs, " ")
}

// SortLocations sorts by branch then position.
func SortLocations(lcs []Location) {
	sort.SliceStable(lcs, func(i, j int) bool {
		if lcs[i].Branch != lcs[j].Branch {
			return lcs[i].Branch < lcs[j].Branch
		}
		return lcs[i].Pos < lcs[j].Pos
	})
}
