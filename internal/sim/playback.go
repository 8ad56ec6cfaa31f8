package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/telemetry"
)

// ReplayLog replays exported readings from r through sess and writer. A speed >0
// accelerates playback. If speed <= 0, no artificial delay is inserted.
func ReplayLog(r io.Reader, sess *session.Session, writer TelemetryWriter, thresholds telemetry.Thresholds, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	var seq uint64
	for {
		var reading telemetry.Reading
		if err := dec.Decode(&reading); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		conn, err := telemetry.ParseConnectionState(string(reading.Connection))
		if err != nil {
			return fmt.Errorf("row %d: %w", seq+1, err)
		}
		reading.Connection = conn
		if !prev.IsZero() && speed > 0 {
			diff := reading.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		seq++
		frame := telemetry.Frame{
			SessionID: sess.ID(),
			Seq:       seq,
			Latest:    reading,
			History:   sess.Record(reading.Sample()),
			Alerts:    thresholds.Evaluate(reading),
			Running:   true,
			Interval:  sess.Interval(),
			Capacity:  sess.Capacity(),
		}
		if err := writer.Write(frame); err != nil {
			return err
		}
		prev = reading.Timestamp
	}
}

// ReplayLogFile opens a file and replays its readings.
func ReplayLogFile(path string, sess *session.Session, writer TelemetryWriter, thresholds telemetry.Thresholds, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, sess, writer, thresholds, speed)
}
