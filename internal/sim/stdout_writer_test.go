package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"droneops-telemetry/internal/telemetry"
)

func testFrame() telemetry.Frame {
	ts := time.Unix(60, 0).UTC()
	r := telemetry.Reading{
		Timestamp:   ts,
		Battery:     9.5,
		Temperature: 36.2,
		Altitude:    120.5,
		Latitude:    12.5,
		Longitude:   77.5,
		Connection:  telemetry.ConnectionNoSignal,
	}
	return telemetry.Frame{
		SessionID: "s1",
		Seq:       1234,
		Latest:    r,
		History:   []telemetry.Sample{{Timestamp: ts.Add(-time.Minute)}, r.Sample()},
		Alerts:    telemetry.DefaultThresholds.Evaluate(r),
		Running:   true,
		Interval:  2 * time.Second,
		Capacity:  50,
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	if err := w.Write(testFrame()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var got telemetry.Frame
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Seq != 1234 || got.Latest.Connection != telemetry.ConnectionNoSignal || len(got.Alerts) != 3 {
		t.Fatalf("unexpected frame %+v", got)
	}
}

func TestColorStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{out: buf}
	if err := w.Write(testFrame()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Drone Telemetry:") || !strings.Contains(output, "Session:") {
		t.Fatalf("overview not printed: %q", output)
	}
	for _, want := range []string{"tick=1,234", "batt=9.50V", "!low_battery", "!no_signal", "history=2/1 minute", colorWhite + "roll=0.00"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output: %q", want, output)
		}
	}

	buf.Reset()
	if err := w.Write(testFrame()); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Drone Telemetry:") {
		t.Fatalf("overview printed more than once")
	}
}
