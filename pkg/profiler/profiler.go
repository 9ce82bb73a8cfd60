// Package profiler measures solver latency in CPU cycles of the target
// device. On the host the elapsed wall time of the monotonic clock is scaled
// by the configured core frequency, so budgets expressed in device cycles
// can be checked off-target.
//
// The counter is an explicit handle acquired and read by the caller, not
// ambient global state, so the solver stays free of hidden dependencies.
// It is advisory instrumentation only; it never influences control flow.
package profiler

import (
	"time"
)

// Cycles is an elapsed CPU cycle count.
type Cycles uint64

// Handle marks the start of a measured section.
type Handle struct {
	start time.Time
}

// Profiler converts elapsed time into cycles of a core clock.
type Profiler struct {
	freqHz uint64
}

// New creates a profiler for the given core clock frequency.
func New(coreFrequencyHz uint64) *Profiler {
	return &Profiler{freqHz: coreFrequencyHz}
}

// Start begins a measurement.
func (p *Profiler) Start() Handle {
	return Handle{start: time.Now()}
}

// Elapsed returns the cycles consumed since the handle was acquired.
func (p *Profiler) Elapsed(h Handle) Cycles {
	ns := time.Since(h.start).Nanoseconds()
	return Cycles(uint64(ns) * p.freqHz / uint64(time.Second))
}

// Micros converts a cycle count to microseconds of the core clock.
func (p *Profiler) Micros(c Cycles) uint64 {
	return uint64(c) * 1_000_000 / p.freqHz
}

// Millis converts a cycle count to milliseconds of the core clock.
func (p *Profiler) Millis(c Cycles) uint64 {
	return uint64(c) * 1_000 / p.freqHz
}
