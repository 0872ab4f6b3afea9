// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/emer/emergent/timer"
	"github.com/goki/ki/ints"
)

// GroupFunChan is a channel that runs CellGroup functions
type GroupFunChan chan func(cg CellGroup)

// Threads runs functions over cell groups on worker goroutines, with
// groups assigned round-robin to threads.
type Threads struct {

	// number of parallel threads (go routines) to use
	NThreads int `inactive:"+"`

	// cell groups per thread
	ThrGroups [][]CellGroup `view:"-" inactive:"+"`

	// group function channels, per thread
	ThrChans []GroupFunChan `view:"-"`

	// timers for each thread, so you can see how evenly the workload is being distributed
	ThrTimes []timer.Time `view:"-"`

	// timers for each major function (step of processing)
	FunTimes map[string]*timer.Time `view:"-"`

	// wait group for synchronizing threaded group calls
	WaitGp sync.WaitGroup `view:"-"`

	// all groups, in order
	groups []CellGroup
}

// BuildThreads allocates groups to at most nthr threads
func (th *Threads) BuildThreads(groups []CellGroup, nthr int) {
	th.groups = groups
	th.NThreads = ints.MaxInt(1, ints.MinInt(nthr, len(groups)))
	th.ThrGroups = make([][]CellGroup, th.NThreads)
	th.ThrChans = make([]GroupFunChan, th.NThreads)
	th.ThrTimes = make([]timer.Time, th.NThreads)
	th.FunTimes = make(map[string]*timer.Time)
	for i, cg := range groups {
		t := i % th.NThreads
		th.ThrGroups[t] = append(th.ThrGroups[t], cg)
	}
	for t := 0; t < th.NThreads; t++ {
		th.ThrChans[t] = make(GroupFunChan)
	}
}

// StartThreads starts up the computation threads, which monitor the channels for work
func (th *Threads) StartThreads() {
	if th.NThreads <= 1 {
		return
	}
	for t := 0; t < th.NThreads; t++ {
		go th.ThrWorker(t, th.ThrChans[t])
	}
}

// StopThreads stops the computation threads.  Later group functions run
// in the calling thread.
func (th *Threads) StopThreads() {
	if th.NThreads <= 1 || th.ThrChans == nil {
		return
	}
	for t := 0; t < th.NThreads; t++ {
		close(th.ThrChans[t])
	}
	th.ThrChans = nil
}

// ThrWorker is the worker function run by the worker threads
func (th *Threads) ThrWorker(tt int, ch GroupFunChan) {
	for fun := range ch {
		th.ThrTimes[tt].Start()
		for _, cg := range th.ThrGroups[tt] {
			fun(cg)
		}
		th.ThrTimes[tt].Stop()
		th.WaitGp.Done()
	}
}

// ThrGroupFun calls function on each group, using the worker threads if
// NThreads > 1 and otherwise iterating in the current thread.
func (th *Threads) ThrGroupFun(fun func(cg CellGroup), funame string) {
	th.FunTimerStart(funame)
	if th.NThreads <= 1 || th.ThrChans == nil {
		for _, cg := range th.groups {
			fun(cg)
		}
	} else {
		for t := 0; t < th.NThreads; t++ {
			th.WaitGp.Add(1)
			th.ThrChans[t] <- fun
		}
		th.WaitGp.Wait()
	}
	th.FunTimerStop(funame)
}

// TimerReport reports the amount of time spent in each function, and in each thread
func (th *Threads) TimerReport(name string) {
	fmt.Printf("TimerReport: %v, NThreads: %v\n", name, th.NThreads)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	fnms := make([]string, 0, len(th.FunTimes))
	for k := range th.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	pcts := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = th.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)

	if th.NThreads <= 1 {
		return
	}
	fmt.Printf("\n\tThr\tTotal Secs\tPct\n")
	pcts = make([]float64, th.NThreads)
	tot = 0.0
	for t := 0; t < th.NThreads; t++ {
		pcts[t] = th.ThrTimes[t].TotalSecs()
		tot += pcts[t]
	}
	for t := 0; t < th.NThreads; t++ {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", t, pcts[t], 100*(pcts[t]/tot))
	}
}

// ThrTimerReset resets the per-thread timers
func (th *Threads) ThrTimerReset() {
	for t := 0; t < th.NThreads; t++ {
		th.ThrTimes[t].Reset()
	}
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (th *Threads) FunTimerStart(fun string) {
	ft, ok := th.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		th.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (th *Threads) FunTimerStop(fun string) {
	ft := th.FunTimes[fun]
	ft.Stop()
}
