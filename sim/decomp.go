// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/emer/cable/recipe"
	"github.com/goki/ki/ints"
)

// GroupDesc is a group of cells of one kind, updated together on one thread.
type GroupDesc struct {
	Kind recipe.CellKind
	Gids []int
}

// PartitionHint controls how cells of one kind are grouped.
type PartitionHint struct {

	// maximum number of cells per group
	GroupSize int `def:"1"`
}

// PartitionHintMap gives hints per cell kind.
type PartitionHintMap map[recipe.CellKind]PartitionHint

// Decomposition assigns cells to ranks (domains) and, on this rank, to groups.
type Decomposition struct {

	// number of domains, one per rank
	NumDomains int

	// domain of this rank
	DomainID int

	// number of cells on this rank
	NumLocalCells int

	// number of cells in the model
	NumGlobalCells int

	// cell groups on this rank
	Groups []GroupDesc

	// first gid of each domain, plus NumGlobalCells
	domainStart []int
}

// GidDomain returns the domain that holds gid.
func (dc *Decomposition) GidDomain(gid int) int {
	for d := 0; d < dc.NumDomains; d++ {
		if gid < dc.domainStart[d+1] {
			return d
		}
	}
	return dc.NumDomains - 1
}

// IsLocal returns true if gid is on this rank.
func (dc *Decomposition) IsLocal(gid int) bool {
	return gid >= dc.domainStart[dc.DomainID] && gid < dc.domainStart[dc.DomainID+1]
}

// PartitionLoadBalance divides the cells of the recipe into contiguous
// blocks of gids, one per rank, the first NumCells % ranks ranks getting
// one extra cell.  Local cells are grouped by kind, in gid order, into
// groups of at most the hinted size.
func PartitionLoadBalance(rec recipe.Recipe, ctx *Context, hints PartitionHintMap) (*Decomposition, error) {
	nc := rec.NumCells()
	if nc < 0 {
		return nil, fmt.Errorf("sim: recipe has negative cell count %d", nc)
	}
	nd := ctx.Dist.Size()
	dc := &Decomposition{NumDomains: nd, DomainID: ctx.Dist.ID(), NumGlobalCells: nc}
	dc.domainStart = make([]int, nd+1)
	if dd, ok := ctx.Dist.(*dryRunDist); ok {
		if nc != nd*dd.cellsPerRank {
			return nil, fmt.Errorf("sim: dry run of %d ranks with %d cells each needs %d cells, recipe has %d", nd, dd.cellsPerRank, nd*dd.cellsPerRank, nc)
		}
	}
	base := nc / nd
	extra := nc % nd
	for d := 0; d < nd; d++ {
		dc.domainStart[d+1] = dc.domainStart[d] + base
		if d < extra {
			dc.domainStart[d+1]++
		}
	}
	lo, hi := dc.domainStart[dc.DomainID], dc.domainStart[dc.DomainID+1]
	dc.NumLocalCells = hi - lo

	byKind := make([][]int, recipe.CellKindN)
	for gid := lo; gid < hi; gid++ {
		k := rec.CellKind(gid)
		if k < 0 || k >= recipe.CellKindN {
			return nil, fmt.Errorf("sim: gid %d has unknown cell kind %d", gid, k)
		}
		byKind[k] = append(byKind[k], gid)
	}
	for k, gids := range byKind {
		gsz := 1
		if h, ok := hints[recipe.CellKind(k)]; ok && h.GroupSize > 0 {
			gsz = h.GroupSize
		}
		for st := 0; st < len(gids); st += gsz {
			ed := ints.MinInt(st+gsz, len(gids))
			dc.Groups = append(dc.Groups, GroupDesc{Kind: recipe.CellKind(k), Gids: gids[st:ed]})
		}
	}
	return dc, nil
}
