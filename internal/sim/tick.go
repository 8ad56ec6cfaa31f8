package sim

import (
	"context"

	"droneops-telemetry/internal/logging"
	"droneops-telemetry/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done.
//
// The run flag is only re-read at the top of each iteration, after the wait,
// so a stop request lands once the current interval has elapsed. While stopped
// the loop idles until the session is resumed.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "session_id", s.session.ID(), "interval", s.session.Interval())

	for {
		if !s.session.Running() {
			log.Info("simulator stopped")
			select {
			case <-ctx.Done():
				log.Info("stopping simulator")
				return
			case <-s.session.Resumed():
				log.Info("simulator resumed", "interval", s.session.Interval())
				continue
			}
		}

		s.Tick(ctx)

		select {
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		case <-s.after(s.session.Interval()):
		}
	}
}

// Tick generates one reading, records it and hands the frame to the writer.
func (s *Simulator) Tick(ctx context.Context) telemetry.Frame {
	log := logging.FromContext(ctx)

	reading := s.gen.Generate(s.now())
	hist := s.session.Record(reading.Sample())

	s.mu.Lock()
	s.seq++
	frame := telemetry.Frame{
		SessionID: s.session.ID(),
		Seq:       s.seq,
		Latest:    reading,
		History:   hist,
		Alerts:    s.thresholds.Evaluate(reading),
		Running:   s.session.Running(),
		Interval:  s.session.Interval(),
		Capacity:  s.session.Capacity(),
	}
	s.latest = frame
	s.mu.Unlock()

	if err := s.writer.Write(frame); err != nil {
		log.Error("write failed", "seq", frame.Seq, "err", err)
	}
	for _, a := range frame.Alerts {
		log.Debug("alert", "seq", frame.Seq, "kind", a.Kind, "message", a.Message)
	}
	return frame
}
