package sim

import (
	"errors"

	"droneops-telemetry/internal/telemetry"
)

// MultiWriter fan-outs frames to multiple writers.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter. Nil writers are skipped.
func NewMultiWriter(ws ...TelemetryWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Add appends a writer to the fan-out.
func (mw *MultiWriter) Add(w TelemetryWriter) {
	if w != nil {
		mw.writers = append(mw.writers, w)
	}
}

// Len returns the number of writers.
func (mw *MultiWriter) Len() int { return len(mw.writers) }

// Write sends a frame to all writers. A failing writer does not prevent the
// others from receiving the frame; all errors are joined.
func (mw *MultiWriter) Write(frame telemetry.Frame) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.Write(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that supports it.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
