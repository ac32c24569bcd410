// Package metrics counts API calls made by the storefront clients. Snapshots
// are cheap to take and safe to read while calls are in flight.
package metrics

import (
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing count. The zero value is ready to use.
type Counter struct {
	n atomic.Uint64
}

func (c *Counter) Inc() { c.n.Add(1) }
func (c *Counter) Add(n uint64) { c.n.Add(n) }
func (c *Counter) Load() uint64 { return c.n.Load() }

// Timer measures the latency of one call.
type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ClientStats counts API calls made by one client. The zero value is ready to use.
type ClientStats struct {
	Calls           Counter
	Failures        Counter
	Refreshes       Counter
	RefreshFailures Counter
	latencyNanos    Counter
}

// Observe records one finished call.
func (s *ClientStats) Observe(t *Timer, err error) {
	s.Calls.Inc()
	if err != nil {
		s.Failures.Inc()
	}
	s.latencyNanos.Add(uint64(t.Duration()))
}

// ObserveRefresh records one refresh attempt.
func (s *ClientStats) ObserveRefresh(err error) {
	s.Refreshes.Inc()
	if err != nil {
		s.RefreshFailures.Inc()
	}
}

type Snapshot struct {
	Calls           uint64
	Failures        uint64
	Refreshes       uint64
	RefreshFailures uint64
	MeanLatency     time.Duration
}

func (s *ClientStats) Snapshot() Snapshot {
	snap := Snapshot{
		Calls:           s.Calls.Load(),
		Failures:        s.Failures.Load(),
		Refreshes:       s.Refreshes.Load(),
		RefreshFailures: s.RefreshFailures.Load(),
	}
	if snap.Calls > 0 {
		snap.MeanLatency = time.Duration(s.latencyNanos.Load() / snap.Calls)
	}
	return snap
}
