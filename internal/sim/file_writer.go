package sim

import (
	"encoding/json"
	"os"

	"droneops-telemetry/internal/telemetry"
)

// FileWriter exports each tick's reading as one JSON line.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates (or truncates) the export file at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs the latest reading of a frame.
func (f *FileWriter) Write(frame telemetry.Frame) error {
	return f.enc.Encode(frame.Latest)
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}
