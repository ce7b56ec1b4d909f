package hw

import "sync/atomic"

// MillisClock is the simulated millisecond clock. It advances only when the
// coordinator sets a new value; the worker strand never advances it on its
// own, which is what makes all firmware timing a deterministic function of
// the coordinator's (millis, rtc) input sequence.
type MillisClock struct {
	millis atomic.Uint64
}

// NewMillisClock returns a clock initialized to initial.
func NewMillisClock(initial uint64) *MillisClock {
	c := &MillisClock{}
	c.SetMillis(initial)
	return c
}

// Millis returns the current simulated millisecond count.
func (c *MillisClock) Millis() uint64 { return c.millis.Load() }

// SetMillis is called by the coordinator at the start of each step. Callers
// are responsible for the "never decreases" invariant; the clock itself
// does not enforce it so that a coordinator-driven reboot can legitimately
// rewind time for a fresh node lifetime.
func (c *MillisClock) SetMillis(v uint64) { c.millis.Store(v) }

// Micros returns Millis()*1000, matching firmware that expects microsecond
// resolution from a millisecond-resolution simulated clock.
func (c *MillisClock) Micros() uint64 { return c.Millis() * 1000 }

// Delay is a no-op: there is no preemption in the harness, so firmware
// calling delay() simply continues without blocking simulated time.
func (c *MillisClock) Delay(uint32) {}

// RTCClock is the simulated wall-clock (seconds since epoch). Like
// MillisClock, it only moves when the coordinator sets it.
type RTCClock struct {
	secs atomic.Uint32
}

// NewRTCClock returns a clock initialized to initial.
func NewRTCClock(initial uint32) *RTCClock {
	c := &RTCClock{}
	c.SetCurrentTime(initial)
	return c
}

// CurrentTime returns the current simulated RTC seconds-since-epoch value.
func (c *RTCClock) CurrentTime() uint32 { return c.secs.Load() }

// SetCurrentTime is called by the coordinator once per step.
func (c *RTCClock) SetCurrentTime(v uint32) { c.secs.Store(v) }

// Tick is a no-op maintenance hook some RTC drivers expect firmware to call
// once per loop iteration; the simulated RTC has nothing to reconcile.
func (c *RTCClock) Tick() {}
