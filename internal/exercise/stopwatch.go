package exercise

import "time"

// Stopwatch accumulates running time and can be paused.
type Stopwatch struct {
	now     func() time.Time
	running bool
	paused  bool
	since   time.Time
	total   time.Duration
}

// NewStopwatch returns a stopped stopwatch using the wall clock.
func NewStopwatch() *Stopwatch {
	return NewStopwatchWithClock(time.Now)
}

// NewStopwatchWithClock returns a stopped stopwatch reading time from now.
func NewStopwatchWithClock(now func() time.Time) *Stopwatch {
	return &Stopwatch{now: now}
}

// Start resets the elapsed time and starts counting.
func (s *Stopwatch) Start() {
	s.running = true
	s.paused = false
	s.total = 0
	s.since = s.now()
}

// Pause stops accumulating time until Resume.
func (s *Stopwatch) Pause() {
	if !s.running || s.paused {
		return
	}
	s.total += s.now().Sub(s.since)
	s.paused = true
}

// Resume continues a paused stopwatch.
func (s *Stopwatch) Resume() {
	if !s.running || !s.paused {
		return
	}
	s.since = s.now()
	s.paused = false
}

// Stop freezes the elapsed time.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	if !s.paused {
		s.total += s.now().Sub(s.since)
	}
	s.running = false
	s.paused = false
}

// Running reports whether the stopwatch has been started and not stopped.
func (s *Stopwatch) Running() bool {
	return s.running
}

// Paused reports whether the stopwatch is running but paused.
func (s *Stopwatch) Paused() bool {
	return s.paused
}

// Elapsed returns the accumulated running time.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running && !s.paused {
		return s.total + s.now().Sub(s.since)
	}
	return s.total
}
