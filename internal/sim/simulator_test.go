package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/telemetry"
)

type fakeTimer struct {
	requested chan time.Duration
	fire      chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{requested: make(chan time.Duration, 16), fire: make(chan time.Time)}
}

func (f *fakeTimer) after(d time.Duration) <-chan time.Time {
	f.requested <- d
	return f.fire
}

func recvFrame(t *testing.T, ch <-chan telemetry.Frame) telemetry.Frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame")
	}
	return telemetry.Frame{}
}

func expectNoFrame(t *testing.T, ch <-chan telemetry.Frame) {
	t.Helper()
	select {
	case f := <-ch:
		t.Fatalf("unexpected frame %d", f.Seq)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestSimulator(sess *session.Session, w TelemetryWriter, opts ...Option) *Simulator {
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewSimulator(sess, telemetry.NewGenerator(rand.New(rand.NewSource(1))), w, opts...)
}

func TestTickRecordsHistory(t *testing.T) {
	sess := session.New(session.Options{Running: true})
	var got []telemetry.Frame
	s := newTestSimulator(sess, WriterFunc(func(f telemetry.Frame) error {
		got = append(got, f)
		return nil
	}))
	if _, ok := s.Latest(); ok {
		t.Fatalf("expected no latest frame before first tick")
	}
	for i := 0; i < 55; i++ {
		s.Tick(context.Background())
	}
	if len(got) != 55 {
		t.Fatalf("expected 55 frames, got %d", len(got))
	}
	last := got[len(got)-1]
	if last.Seq != 55 || len(last.History) != 50 {
		t.Fatalf("seq=%d history=%d", last.Seq, len(last.History))
	}
	if last.SessionID != sess.ID() || !last.Running || last.Interval != sess.Interval() {
		t.Fatalf("frame missing session state: %+v", last)
	}
	if last.History[len(last.History)-1] != last.Latest.Sample() {
		t.Fatalf("latest reading not at the end of history")
	}
	latest, ok := s.Latest()
	if !ok || latest.Seq != 55 {
		t.Fatalf("Latest() = %d, %v", latest.Seq, ok)
	}
	if s.Ticks() != 55 {
		t.Fatalf("Ticks() = %d", s.Ticks())
	}
}

func TestTickEvaluatesAlerts(t *testing.T) {
	sess := session.New(session.Options{})
	s := newTestSimulator(sess, nil, WithThresholds(telemetry.Thresholds{LowBatteryVolts: 100, HighTemperatureC: -1}))
	f := s.Tick(context.Background())
	if len(f.Alerts) < 2 || f.Alerts[0].Kind != telemetry.AlertLowBattery || f.Alerts[1].Kind != telemetry.AlertHighTemperature {
		t.Fatalf("unexpected alerts %+v", f.Alerts)
	}
}

func TestTickWriterErrorDoesNotStop(t *testing.T) {
	sess := session.New(session.Options{})
	s := newTestSimulator(sess, WriterFunc(func(telemetry.Frame) error { return errors.New("boom") }))
	s.Tick(context.Background())
	s.Tick(context.Background())
	if s.Ticks() != 2 || len(sess.History()) != 2 {
		t.Fatalf("ticks=%d history=%d", s.Ticks(), len(sess.History()))
	}
}

func TestRunCoarseStopAndResume(t *testing.T) {
	sess := session.New(session.Options{Running: true, Interval: 2 * time.Second})
	frames := make(chan telemetry.Frame, 16)
	timer := newFakeTimer()
	s := newTestSimulator(sess, WriterFunc(func(f telemetry.Frame) error {
		frames <- f
		return nil
	}), WithAfter(timer.after))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	if f := recvFrame(t, frames); f.Seq != 1 {
		t.Fatalf("first frame seq = %d", f.Seq)
	}
	if d := <-timer.requested; d != 2*time.Second {
		t.Fatalf("waited %s, want 2s", d)
	}

	// stop lands only after the current wait
	sess.SetRunning(false)
	expectNoFrame(t, frames)
	timer.fire <- time.Now()
	expectNoFrame(t, frames)

	sess.SetRunning(true)
	if f := recvFrame(t, frames); f.Seq != 2 {
		t.Fatalf("resumed frame seq = %d", f.Seq)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunUsesCurrentInterval(t *testing.T) {
	sess := session.New(session.Options{Running: true, Interval: 2 * time.Second})
	frames := make(chan telemetry.Frame, 16)
	timer := newFakeTimer()
	s := newTestSimulator(sess, WriterFunc(func(f telemetry.Frame) error {
		frames <- f
		return nil
	}), WithAfter(timer.after))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	recvFrame(t, frames)
	<-timer.requested
	if _, err := sess.SetInterval(7 * time.Second); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	timer.fire <- time.Now()
	recvFrame(t, frames)
	if d := <-timer.requested; d != 7*time.Second {
		t.Fatalf("waited %s, want 7s", d)
	}
}

func TestRunStartsStopped(t *testing.T) {
	sess := session.New(session.Options{Running: false})
	frames := make(chan telemetry.Frame, 4)
	s := newTestSimulator(sess, WriterFunc(func(f telemetry.Frame) error {
		frames <- f
		return nil
	}), WithAfter(newFakeTimer().after))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	expectNoFrame(t, frames)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return while stopped")
	}
}
