package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"droneops-telemetry/internal/telemetry"
)

// JSONStdoutWriter prints each frame as one JSON line to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a frame in JSON format.
func (w *JSONStdoutWriter) Write(frame telemetry.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
