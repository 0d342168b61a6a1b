package canvas

import (
	"context"
	"sync"
	"time"
)

// FrameScheduler runs a callback once on the next display frame, passing the
// frame time in milliseconds. A callback re-requests itself to keep a loop going.
type FrameScheduler interface {
	RequestFrame(fn func(time float64))
}

// ── TickerScheduler ────────────────────────────────────────

// TickerScheduler fires frames from a fixed-interval ticker. Frame times are
// milliseconds since the scheduler was created. At most one callback is
// pending; requesting another before the frame fires is ignored.
type TickerScheduler struct {
	interval time.Duration
	start    time.Time

	mu      sync.Mutex
	pending func(float64)
}

// DefaultFrameInterval approximates a 60 Hz display.
const DefaultFrameInterval = time.Second / 60

// NewTickerScheduler creates a scheduler; a non-positive interval uses
// DefaultFrameInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerScheduler{interval: interval, start: time.Now()}
}

// Now returns the current frame clock in milliseconds.
func (s *TickerScheduler) Now() float64 {
	return s.since(time.Now())
}

func (s *TickerScheduler) since(t time.Time) float64 {
	return float64(t.Sub(s.start)) / float64(time.Millisecond)
}

func (s *TickerScheduler) RequestFrame(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = fn
	}
}

// Run drives frames until ctx is cancelled.
func (s *TickerScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			fn := s.pending
			s.pending = nil
			s.mu.Unlock()
			if fn != nil {
				fn(s.since(now))
			}
		}
	}
}

// ── ManualScheduler ────────────────────────────────────────

// ManualScheduler fires frames only when told to. Used for replays and tests.
type ManualScheduler struct {
	mu      sync.Mutex
	pending func(float64)
}

func (s *ManualScheduler) RequestFrame(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = fn
	}
}

// Pending reports whether a callback is waiting.
func (s *ManualScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Fire runs the pending callback at time, reporting whether one ran.
func (s *ManualScheduler) Fire(time float64) bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(time)
	return true
}
