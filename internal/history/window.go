package history

import "droneops-telemetry/internal/telemetry"

// DefaultCapacity is the number of samples kept for trend display.
const DefaultCapacity = 50

// Append returns buf with s added at the end, truncated from the front so that
// its length never exceeds capacity. buf itself is left untouched.
func Append(buf []telemetry.Sample, s telemetry.Sample, capacity int) []telemetry.Sample {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	start := 0
	if n := len(buf) + 1; n > capacity {
		start = n - capacity
	}
	out := make([]telemetry.Sample, 0, min(len(buf)+1, capacity))
	if start < len(buf) {
		out = append(out, buf[start:]...)
	}
	return append(out, s)
}

// Window is a fixed-size rolling buffer of samples, oldest first.
// It is owned by a single session and is not safe for concurrent use.
type Window struct {
	data  []telemetry.Sample
	size  int
	head  int // next write position
	count int // number of valid samples
}

// NewWindow creates a window holding at most capacity samples.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{
		data: make([]telemetry.Sample, capacity),
		size: capacity,
	}
}

// Append adds s, evicting the oldest sample once the window is full.
func (w *Window) Append(s telemetry.Sample) {
	w.data[w.head] = s
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Snapshot returns a copy of all samples in chronological order.
func (w *Window) Snapshot() []telemetry.Sample {
	result := make([]telemetry.Sample, w.count)
	start := (w.head - w.count + w.size) % w.size
	for i := 0; i < w.count; i++ {
		result[i] = w.data[(start+i)%w.size]
	}
	return result
}

// Latest returns the most recently appended sample.
func (w *Window) Latest() (telemetry.Sample, bool) {
	if w.count == 0 {
		return telemetry.Sample{}, false
	}
	return w.data[(w.head-1+w.size)%w.size], true
}

// Len returns the number of samples held.
func (w *Window) Len() int { return w.count }

// Cap returns the maximum number of samples held.
func (w *Window) Cap() int { return w.size }

// Reset empties the window.
func (w *Window) Reset() {
	w.head = 0
	w.count = 0
	clear(w.data)
}
