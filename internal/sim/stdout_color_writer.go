// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"droneops-telemetry/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorGray    = "\x1b[90m"
)

// connectionColor maps link quality to the green/orange/red convention.
func connectionColor(c telemetry.ConnectionState) string {
	switch c {
	case telemetry.ConnectionExcellent:
		return colorGreen
	case telemetry.ConnectionPoor:
		return colorYellow
	default:
		return colorRed
	}
}

func severityColor(s telemetry.Severity) string {
	if s == telemetry.SeverityWarning {
		return colorYellow
	}
	return colorRed
}

// ColorStdoutWriter prints one ANSI-colored line per tick.
type ColorStdoutWriter struct {
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview(frame telemetry.Frame) {
	fmt.Fprintln(w.out, "Drone Telemetry:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Session:\t%s\n", frame.SessionID)
	fmt.Fprintf(tw, "Update Interval:\t%s\n", frame.Interval)
	fmt.Fprintf(tw, "Battery (V):\t%.1f..%.1f\n", telemetry.BatteryRange.Min, telemetry.BatteryRange.Max)
	fmt.Fprintf(tw, "Temperature (°C):\t%.0f..%.0f\n", telemetry.TemperatureRange.Min, telemetry.TemperatureRange.Max)
	fmt.Fprintf(tw, "Altitude (m):\t%.0f..%.0f\n", telemetry.AltitudeRange.Min, telemetry.AltitudeRange.Max)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single frame in colorized format.
func (w *ColorStdoutWriter) Write(frame telemetry.Frame) error {
	w.once.Do(func() { w.printOverview(frame) })

	r := frame.Latest
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]%s ", colorGray, r.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(&b, "%stick=%s%s ", colorBlue, humanize.Comma(int64(frame.Seq)), colorReset)
	fmt.Fprintf(&b, "%sbatt=%.2fV%s ", colorCyan, r.Battery, colorReset)
	fmt.Fprintf(&b, "%stemp=%.1f°C%s ", colorMagenta, r.Temperature, colorReset)
	fmt.Fprintf(&b, "%salt=%.1fm%s ", colorGreen, r.Altitude, colorReset)
	fmt.Fprintf(&b, "%sroll=%.2f pitch=%.2f yaw=%.2f%s ", colorWhite, r.Roll, r.Pitch, r.Yaw, colorReset)
	fmt.Fprintf(&b, "%slat=%.6f lon=%.6f%s ", colorYellow, r.Latitude, r.Longitude, colorReset)
	fmt.Fprintf(&b, "%sconn=%s%s", connectionColor(r.Connection), r.Connection, colorReset)
	if n := len(frame.History); n > 1 {
		span := strings.TrimSpace(humanize.RelTime(frame.History[0].Timestamp, frame.History[n-1].Timestamp, "", ""))
		fmt.Fprintf(&b, " %shistory=%d/%s%s", colorGray, n, span, colorReset)
	}
	for _, a := range frame.Alerts {
		fmt.Fprintf(&b, " %s!%s%s", severityColor(a.Severity), a.Kind, colorReset)
	}
	_, err := fmt.Fprintln(w.out, b.String())
	return err
}
