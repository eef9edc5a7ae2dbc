package timeline

import (
	"sync"
	"time"
)

// DefaultRebase is the raw stopwatch age after which it restarts at zero.
// This bounds numeric growth only; frame selection is correct without it.
const DefaultRebase = 24 * time.Hour

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock (monotonic reading included).
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Stopwatch measures elapsed time since it was started.
// Stopwatch is safe for concurrent use.
type Stopwatch struct {
	mu     sync.Mutex
	clock  Clock
	start  time.Time
	rebase time.Duration
	active bool
}

// NewStopwatch creates a stopped stopwatch.
// A nil clock uses SystemClock; a non-positive rebase uses DefaultRebase.
func NewStopwatch(clock Clock, rebase time.Duration) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	if rebase <= 0 {
		rebase = DefaultRebase
	}
	return &Stopwatch{clock: clock, rebase: rebase}
}

// Start starts (or restarts) the stopwatch at zero.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = s.clock.Now()
	s.active = true
}

// Running reports whether Start has been called.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Elapsed returns the time since Start, or zero if never started.
// Once the raw reading reaches the rebase interval the stopwatch restarts.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return 0
	}
	now := s.clock.Now()
	elapsed := now.Sub(s.start)
	if elapsed >= s.rebase {
		s.start = now
		return 0
	}
	return elapsed
}
