// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import "container/heap"

// evHeap implements heap.Interface over events in time order
type evHeap []Event

func (eh evHeap) Len() int           { return len(eh) }
func (eh evHeap) Less(i, j int) bool { return eh[i].Less(eh[j]) }
func (eh evHeap) Swap(i, j int)      { eh[i], eh[j] = eh[j], eh[i] }
func (eh *evHeap) Push(x any)        { *eh = append(*eh, x.(Event)) }
func (eh *evHeap) Pop() any {
	old := *eh
	n := len(old)
	ev := old[n-1]
	*eh = old[:n-1]
	return ev
}

// Queue is a priority queue of events ordered by (time, target, weight).
// It is not safe for concurrent use.
type Queue struct {
	hp evHeap
}

// Push adds an event.
func (qu *Queue) Push(ev Event) {
	heap.Push(&qu.hp, ev)
}

// PushAll adds events.
func (qu *Queue) PushAll(evs []Event) {
	for _, ev := range evs {
		heap.Push(&qu.hp, ev)
	}
}

// Len returns the number of queued events.
func (qu *Queue) Len() int {
	return len(qu.hp)
}

// TimeIfBefore returns the time of the earliest event if it is before t.
func (qu *Queue) TimeIfBefore(t float64) (float64, bool) {
	if len(qu.hp) == 0 || !(qu.hp[0].Time < t) {
		return 0, false
	}
	return qu.hp[0].Time, true
}

// PopIfBefore removes and returns the earliest event if it is before t.
func (qu *Queue) PopIfBefore(t float64) (Event, bool) {
	if _, ok := qu.TimeIfBefore(t); !ok {
		return Event{}, false
	}
	return heap.Pop(&qu.hp).(Event), true
}

// Clear removes all events.
func (qu *Queue) Clear() {
	qu.hp = nil
}
