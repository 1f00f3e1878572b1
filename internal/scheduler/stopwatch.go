package scheduler

import (
	"sync"
	"time"
)

// Stopwatch measures elapsed time on the monotonic clock.
type Stopwatch struct {
	mu    sync.Mutex
	start time.Time
}

// Restart resets the stopwatch to zero.
func (s *Stopwatch) Restart() {
	s.mu.Lock()
	s.start = time.Now()
	s.mu.Unlock()
}

// Elapsed returns the time since Restart. A stopwatch that was never
// restarted starts on the first call.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.start.IsZero() {
		s.start = time.Now()
	}
	return time.Since(s.start)
}

// ElapsedMicros returns Elapsed in microseconds.
func (s *Stopwatch) ElapsedMicros() uint64 {
	return uint64(s.Elapsed() / time.Microsecond)
}

// ElapsedMillis returns Elapsed in fractional milliseconds.
func (s *Stopwatch) ElapsedMillis() float64 {
	return float64(s.Elapsed()) / float64(time.Millisecond)
}
