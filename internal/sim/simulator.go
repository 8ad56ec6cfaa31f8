// Simulator orchestrating telemetry ticks
package sim

import (
	"sync"
	"time"

	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
// Write is called once per tick with the latest reading and history snapshot.
type TelemetryWriter interface {
	Write(telemetry.Frame) error
}

// WriterFunc adapts a function to TelemetryWriter.
type WriterFunc func(telemetry.Frame) error

// Write calls f(frame).
func (f WriterFunc) Write(frame telemetry.Frame) error { return f(frame) }

// Simulator drives the generate → record → render → wait loop for one session.
type Simulator struct {
	session    *session.Session
	gen        *telemetry.Generator
	writer     TelemetryWriter
	thresholds telemetry.Thresholds
	now        func() time.Time
	after      func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	seq    uint64
	latest telemetry.Frame
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithClock overrides the wall clock used to stamp readings.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithAfter overrides the timer used between ticks.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Simulator) { s.after = after }
}

// WithThresholds sets the alert thresholds.
func WithThresholds(t telemetry.Thresholds) Option {
	return func(s *Simulator) { s.thresholds = t }
}

// NewSimulator wires a session, generator and writer. A nil writer discards frames.
func NewSimulator(sess *session.Session, gen *telemetry.Generator, writer TelemetryWriter, opts ...Option) *Simulator {
	if gen == nil {
		gen = telemetry.NewGenerator(nil)
	}
	if writer == nil {
		writer = WriterFunc(func(telemetry.Frame) error { return nil })
	}
	s := &Simulator{
		session:    sess,
		gen:        gen,
		writer:     writer,
		thresholds: telemetry.DefaultThresholds,
		now:        time.Now,
		after:      time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session driven by the simulator.
func (s *Simulator) Session() *session.Session { return s.session }

// Latest returns the most recent frame, if any tick has run.
func (s *Simulator) Latest() (telemetry.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.seq > 0
}

// Ticks returns how many ticks have completed.
func (s *Simulator) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
