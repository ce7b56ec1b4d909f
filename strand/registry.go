// Package strand provides the per-worker-strand global registry that lets
// N node instances share one host process without aliasing each other's
// hardware substitutes.
//
// Firmware written against a single-device assumption reaches its board,
// radio and clock through well-known global names. Go has no thread-local
// storage, so each worker goroutine registers its own hardware bundle here,
// keyed by the calling goroutine's id, at the point where it starts running
// firmware. Coordinator-strand code must never call Current: it already
// holds pointers to the same bundle, captured once at bind time, and using
// them directly avoids relying on "which goroutine am I called from" at all.
package strand

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/signalsfoundry/mcsim/hw"
)

// Handles bundles one node's hardware substitutes, the set a worker
// goroutine installs as "current" for the duration of its run loop.
type Handles struct {
	Radio  *hw.Radio
	Board  *hw.Board
	RTC    *hw.RTCClock
	Millis *hw.MillisClock
	RNG    *hw.RNG
	FS     *hw.Filesystem
	Serial *hw.Serial
}

var registry sync.Map // goroutine id (int64) -> *Handles

// goroutineID recovers the calling goroutine's id by parsing the header
// line of its own stack trace. This is the same technique long-standing
// goroutine-local-storage shims use; no library in the retrieved corpus
// solves this (Go deliberately has no public API for it).
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		panic("strand: malformed goroutine stack header")
	}
	id, err := strconv.ParseInt(string(buf[:end]), 10, 64)
	if err != nil {
		panic("strand: cannot parse goroutine id: " + err.Error())
	}
	return id
}

// Bind installs h as the current goroutine's hardware bundle and returns a
// function that unbinds it. Call Bind once at worker-goroutine entry and
// defer the returned function so the registry never leaks an entry past
// the goroutine's lifetime.
func Bind(h *Handles) (unbind func()) {
	id := goroutineID()
	registry.Store(id, h)
	return func() { registry.Delete(id) }
}

// Current returns the hardware bundle bound to the calling goroutine, or
// nil if none is bound. Only firmware code running on a worker goroutine
// should call this.
func Current() *Handles {
	v, ok := registry.Load(goroutineID())
	if !ok {
		return nil
	}
	return v.(*Handles)
}
