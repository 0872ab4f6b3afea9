// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"math"
	"runtime"

	"github.com/emer/cable/event"
	"github.com/emer/empi/mpi"
)

// Distributed is the communicator for spike exchange between ranks.
type Distributed interface {

	// Name of the implementation
	Name() string

	// Size is the number of ranks
	Size() int

	// ID is the rank of this process
	ID() int

	// GatherSpikes returns the spikes of all ranks, given the local ones
	GatherSpikes(local []event.Spike) ([]event.Spike, error)

	// GatherGids returns the gids of every rank, indexed by rank
	GatherGids(local []int) ([][]int, error)

	// MinTime returns the minimum of t over all ranks
	MinTime(t float64) (float64, error)
}

// Context holds the resources available to a simulation.
type Context struct {

	// number of worker threads for cell group updates
	Threads int

	// distributed communicator
	Dist Distributed
}

// NewContext returns a local context using all CPUs.
func NewContext() *Context {
	return &Context{Threads: runtime.NumCPU(), Dist: &localDist{}}
}

// NewContextThreads returns a local context with the given number of threads.
func NewContextThreads(nthr int) *Context {
	if nthr < 1 {
		nthr = 1
	}
	return &Context{Threads: nthr, Dist: &localDist{}}
}

// NewMPIContext returns a context communicating over MPI.  mpi.Init must
// have been called.  Without the mpi build tag this is a single rank.
func NewMPIContext() (*Context, error) {
	comm, err := mpi.NewComm(nil)
	if err != nil {
		return nil, err
	}
	return &Context{Threads: runtime.NumCPU(), Dist: &mpiDist{comm: comm}}, nil
}

// NewDryRunContext returns a context that runs rank 0 of ranks ranks with
// cellsPerRank cells each.  The spikes of the other ranks are copies of
// the local spikes, shifted in gid.
func NewDryRunContext(ranks, cellsPerRank int) *Context {
	if ranks < 1 {
		ranks = 1
	}
	return &Context{Threads: runtime.NumCPU(), Dist: &dryRunDist{ranks: ranks, cellsPerRank: cellsPerRank}}
}

func (ctx *Context) String() string {
	return fmt.Sprintf("context: %d threads, %s with %d ranks", ctx.Threads, ctx.Dist.Name(), ctx.Dist.Size())
}

///////////////////////////////////////////////////////////////////////
//  local

type localDist struct{}

func (ld *localDist) Name() string { return "local" }
func (ld *localDist) Size() int    { return 1 }
func (ld *localDist) ID() int      { return 0 }

func (ld *localDist) GatherSpikes(local []event.Spike) ([]event.Spike, error) {
	return local, nil
}

func (ld *localDist) GatherGids(local []int) ([][]int, error) {
	return [][]int{local}, nil
}

func (ld *localDist) MinTime(t float64) (float64, error) {
	return t, nil
}

///////////////////////////////////////////////////////////////////////
//  dry run

type dryRunDist struct {
	ranks        int
	cellsPerRank int
}

func (dd *dryRunDist) Name() string { return "dryrun" }
func (dd *dryRunDist) Size() int    { return dd.ranks }
func (dd *dryRunDist) ID() int      { return 0 }

func (dd *dryRunDist) GatherSpikes(local []event.Spike) ([]event.Spike, error) {
	all := make([]event.Spike, 0, len(local)*dd.ranks)
	for r := 0; r < dd.ranks; r++ {
		for _, sp := range local {
			sp.Source.Gid += r * dd.cellsPerRank
			all = append(all, sp)
		}
	}
	return all, nil
}

func (dd *dryRunDist) GatherGids(local []int) ([][]int, error) {
	all := make([][]int, dd.ranks)
	for r := range all {
		all[r] = make([]int, len(local))
		for i, g := range local {
			all[r][i] = g + r*dd.cellsPerRank
		}
	}
	return all, nil
}

func (dd *dryRunDist) MinTime(t float64) (float64, error) {
	return t, nil
}

///////////////////////////////////////////////////////////////////////
//  mpi

// mpiDist exchanges data with AllGather over float64 buffers of equal
// size on every rank: first the counts, then the padded payloads.
type mpiDist struct {
	comm *mpi.Comm
}

func (md *mpiDist) Name() string { return "mpi" }
func (md *mpiDist) Size() int    { return md.comm.Size() }
func (md *mpiDist) ID() int      { return md.comm.Rank() }

// gather gathers variable length float64 records of width wd from all ranks
func (md *mpiDist) gather(local []float64, wd int) ([][]float64, error) {
	nr := md.Size()
	if nr == 1 {
		return [][]float64{local}, nil
	}
	cnts := make([]float64, nr)
	if err := md.comm.AllGatherF64(cnts, []float64{float64(len(local) / wd)}); err != nil {
		return nil, err
	}
	mx := 0
	for _, c := range cnts {
		if int(c) > mx {
			mx = int(c)
		}
	}
	buf := make([]float64, mx*wd)
	copy(buf, local)
	all := make([]float64, mx*wd*nr)
	if err := md.comm.AllGatherF64(all, buf); err != nil {
		return nil, err
	}
	res := make([][]float64, nr)
	for r := 0; r < nr; r++ {
		st := r * mx * wd
		res[r] = all[st : st+int(cnts[r])*wd]
	}
	return res, nil
}

func (md *mpiDist) GatherSpikes(local []event.Spike) ([]event.Spike, error) {
	buf := make([]float64, 0, 3*len(local))
	for _, sp := range local {
		buf = append(buf, float64(sp.Source.Gid), float64(sp.Source.Index), sp.Time)
	}
	res, err := md.gather(buf, 3)
	if err != nil {
		return nil, err
	}
	var all []event.Spike
	for _, rb := range res {
		for i := 0; i+2 < len(rb); i += 3 {
			all = append(all, event.Spike{Source: event.CellMember{Gid: int(rb[i]), Index: int(rb[i+1])}, Time: rb[i+2]})
		}
	}
	return all, nil
}

func (md *mpiDist) GatherGids(local []int) ([][]int, error) {
	buf := make([]float64, len(local))
	for i, g := range local {
		buf[i] = float64(g)
	}
	res, err := md.gather(buf, 1)
	if err != nil {
		return nil, err
	}
	all := make([][]int, len(res))
	for r, rb := range res {
		all[r] = make([]int, len(rb))
		for i, g := range rb {
			all[r][i] = int(g)
		}
	}
	return all, nil
}

func (md *mpiDist) MinTime(t float64) (float64, error) {
	nr := md.Size()
	if nr == 1 {
		return t, nil
	}
	all := make([]float64, nr)
	if err := md.comm.AllGatherF64(all, []float64{t}); err != nil {
		return 0, err
	}
	mn := math.Inf(1)
	for _, v := range all {
		mn = math.Min(mn, v)
	}
	return mn, nil
}
