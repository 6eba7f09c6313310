package simulator

import (
	"time"

	"go.uber.org/atomic"
)

// RunState is the per-run mutable state. The heartbeat loop is its only
// writer; readers may observe it from other goroutines.
type RunState struct {
	counter   *atomic.Uint64
	running   *atomic.Bool
	startTime time.Time
}

func newRunState(startTime time.Time) *RunState {
	return &RunState{
		counter:   atomic.NewUint64(0),
		running:   atomic.NewBool(true),
		startTime: startTime,
	}
}

// tick advances the counter by exactly one and returns the new value.
func (s *RunState) tick() uint64 {
	return s.counter.Inc()
}

// stop clears running; it reports false if it was already cleared.
func (s *RunState) stop() bool {
	return s.running.CAS(true, false)
}

func (s *RunState) Counter() uint64 {
	return s.counter.Load()
}

func (s *RunState) Running() bool {
	return s.running.Load()
}

func (s *RunState) StartTime() time.Time {
	return s.startTime
}

func (s *RunState) Uptime() time.Duration {
	return time.Since(s.startTime)
}
