package emotion

import (
	"sync"
	"time"
)

// Scheduler runs fn once at the next refresh. cancel prevents a pending run;
// it is a no-op once fn has started.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// RefreshScheduler Fires callbacks aligned on a fixed refresh interval.
// A tick that overruns the interval is followed immediately by the next one.
type RefreshScheduler struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewRefreshScheduler builds a scheduler ticking hz times per second.
func NewRefreshScheduler(hz float64) *RefreshScheduler {
	if hz <= 0 {
		hz = 60
	}
	return &RefreshScheduler{Interval: time.Duration(float64(time.Second) / hz)}
}

// Schedule implements Scheduler.
func (s *RefreshScheduler) Schedule(fn func()) func() {
	s.mu.Lock()
	now := time.Now()
	delay := s.last.Add(s.Interval).Sub(now)
	if delay < 0 {
		delay = 0
	}
	s.last = now.Add(delay)
	s.mu.Unlock()

	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
