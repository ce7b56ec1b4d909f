package simcore

import "container/heap"

// wakeEntry is one (deadline, opaque id) pair in the WakeRegistry.
type wakeEntry struct {
	deadline uint64
	id       uint64
}

// wakeHeap is a min-heap over wakeEntry.deadline.
type wakeHeap []wakeEntry

func (h wakeHeap) Len() int            { return len(h) }
func (h wakeHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h wakeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *wakeHeap) Push(x interface{}) { *h = append(*h, x.(wakeEntry)) }
func (h *wakeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// WakeRegistry is the ordered multiset of absolute wake deadlines a node
// registers so the coordinator can be told when the firmware next wants to
// run, instead of polling on a fixed cadence.
type WakeRegistry struct {
	h wakeHeap
}

// NewWakeRegistry returns an empty registry.
func NewWakeRegistry() *WakeRegistry { return &WakeRegistry{} }

// Add registers a wake deadline (absolute simulated milliseconds) tagged
// with an opaque id the caller can use to correlate it later. Duplicate
// deadlines and ids are both permitted; this is a multiset.
func (w *WakeRegistry) Add(deadline, id uint64) {
	heap.Push(&w.h, wakeEntry{deadline: deadline, id: id})
}

// PurgeExpired removes every entry with a deadline at or before
// currentMillis. Called once at the end of every step, before NextWake is
// queried.
func (w *WakeRegistry) PurgeExpired(currentMillis uint64) {
	for len(w.h) > 0 && w.h[0].deadline <= currentMillis {
		heap.Pop(&w.h)
	}
}

// NextWake returns the minimum deadline strictly greater than
// currentMillis, or (0, false) if the registry holds no such entry.
// Expired entries are skipped, not removed; PurgeExpired removes them.
func (w *WakeRegistry) NextWake(currentMillis uint64) (uint64, bool) {
	var best uint64
	found := false
	for _, e := range w.h {
		if e.deadline > currentMillis && (!found || e.deadline < best) {
			best, found = e.deadline, true
		}
	}
	return best, found
}

// Len reports how many entries remain registered.
func (w *WakeRegistry) Len() int { return len(w.h) }
