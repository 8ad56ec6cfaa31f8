// Package session holds the per-dashboard state: the history window and the
// user controls (run flag and refresh interval).
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"droneops-telemetry/internal/history"
	"droneops-telemetry/internal/telemetry"
)

// Default control bounds.
const (
	DefaultInterval    = 2 * time.Second
	DefaultMinInterval = time.Second
	DefaultMaxInterval = 10 * time.Second
)

// ErrIntervalOutOfRange is returned when a requested interval is outside the bounds.
var ErrIntervalOutOfRange = errors.New("interval out of range")

// ErrIntervalNotWholeSeconds is returned when a requested interval has a
// fractional second part.
var ErrIntervalNotWholeSeconds = errors.New("interval must be whole seconds")

// Options configures a new Session.
type Options struct {
	Capacity    int
	Interval    time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
	Running     bool
}

// Session owns one dashboard's history and controls.
type Session struct {
	id     string
	window *history.Window

	mu       sync.Mutex
	running  bool
	interval time.Duration
	min, max time.Duration
	resumed  chan struct{}
}

// New creates a session. Zero option values fall back to the defaults and an
// out-of-range interval is clamped into the bounds.
func New(opts Options) *Session {
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = DefaultMaxInterval
	}
	if opts.MaxInterval < opts.MinInterval {
		opts.MaxInterval = opts.MinInterval
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Session{
		id:       uuid.NewString(),
		window:   history.NewWindow(opts.Capacity),
		running:  opts.Running,
		interval: clamp(opts.Interval, opts.MinInterval, opts.MaxInterval),
		min:      opts.MinInterval,
		max:      opts.MaxInterval,
		resumed:  make(chan struct{}, 1),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Running reports whether ticking is enabled.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetRunning sets the run flag.
func (s *Session) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRunningLocked(running)
}

// Toggle flips the run flag and returns the new value.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRunningLocked(!s.running)
	return s.running
}

func (s *Session) setRunningLocked(running bool) {
	wasRunning := s.running
	s.running = running
	if running && !wasRunning {
		select {
		case s.resumed <- struct{}{}:
		default:
		}
	}
}

// Resumed is signalled when the session goes from stopped to running.
func (s *Session) Resumed() <-chan struct{} { return s.resumed }

// Interval returns the current refresh interval.
func (s *Session) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Bounds returns the allowed interval range.
func (s *Session) Bounds() (time.Duration, time.Duration) {
	return s.min, s.max
}

// SetInterval sets the refresh interval if it is a whole number of seconds
// within the bounds.
func (s *Session) SetInterval(d time.Duration) (time.Duration, error) {
	if d%time.Second != 0 {
		return s.Interval(), fmt.Errorf("%w: %s", ErrIntervalNotWholeSeconds, d)
	}
	if d < s.min || d > s.max {
		return s.Interval(), fmt.Errorf("%w: %s not in [%s, %s]", ErrIntervalOutOfRange, d, s.min, s.max)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
	return d, nil
}

// StepInterval moves the interval by delta whole seconds, clamped to the bounds.
func (s *Session) StepInterval(delta int) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = clamp(s.interval+time.Duration(delta)*time.Second, s.min, s.max)
	return s.interval
}

// Record appends a sample to the history window and returns the new snapshot.
// Only the tick loop records.
func (s *Session) Record(sample telemetry.Sample) []telemetry.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.Append(sample)
	return s.window.Snapshot()
}

// Capacity returns the size of the history window.
func (s *Session) Capacity() int { return s.window.Cap() }

// History returns a copy of the history window.
func (s *Session) History() []telemetry.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Snapshot()
}

func clamp(d, lo, hi time.Duration) time.Duration {
	return min(max(d, lo), hi)
}
