package history

import (
	"testing"
	"time"

	"droneops-telemetry/internal/telemetry"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// sampleAt returns the i-th sample (1-based) of a synthetic sequence.
func sampleAt(i int) telemetry.Sample {
	return telemetry.Sample{Timestamp: base.Add(time.Duration(i) * time.Second), Battery: float64(i)}
}

func TestWindowLength(t *testing.T) {
	for _, n := range []int{0, 1, 3, 49, 50, 51, 55, 200} {
		w := NewWindow(DefaultCapacity)
		for i := 1; i <= n; i++ {
			w.Append(sampleAt(i))
		}
		if got, want := w.Len(), min(n, DefaultCapacity); got != want {
			t.Errorf("after %d appends Len() = %d, want %d", n, got, want)
		}
		if got := len(w.Snapshot()); got != min(n, DefaultCapacity) {
			t.Errorf("after %d appends snapshot length = %d", n, got)
		}
	}
}

func TestWindowThreeAppends(t *testing.T) {
	w := NewWindow(DefaultCapacity)
	for i := 1; i <= 3; i++ {
		w.Append(sampleAt(i))
	}
	got := w.Snapshot()
	for i, s := range got {
		if want := sampleAt(i + 1); s != want {
			t.Fatalf("entry %d = %+v, want %+v", i, s, want)
		}
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(DefaultCapacity)
	for i := 1; i <= 55; i++ {
		w.Append(sampleAt(i))
	}
	got := w.Snapshot()
	if len(got) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(got))
	}
	for i, s := range got {
		if want := sampleAt(i + 6); !s.Timestamp.Equal(want.Timestamp) {
			t.Fatalf("entry %d has ts %v, want %v", i, s.Timestamp, want.Timestamp)
		}
	}
	latest, ok := w.Latest()
	if !ok || latest != sampleAt(55) {
		t.Fatalf("Latest() = %+v, %v", latest, ok)
	}
}

func TestWindowSnapshotIsCopy(t *testing.T) {
	w := NewWindow(3)
	w.Append(sampleAt(1))
	snap := w.Snapshot()
	snap[0].Battery = -1
	if again := w.Snapshot(); again[0].Battery != 1 {
		t.Fatalf("snapshot aliases window storage")
	}
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(0)
	if w.Cap() != DefaultCapacity {
		t.Fatalf("expected default capacity, got %d", w.Cap())
	}
	w.Append(sampleAt(1))
	w.Reset()
	if w.Len() != 0 {
		t.Fatalf("expected empty window after reset")
	}
	if _, ok := w.Latest(); ok {
		t.Fatalf("expected no latest sample after reset")
	}
}

func TestAppendPure(t *testing.T) {
	var buf []telemetry.Sample
	for i := 1; i <= 55; i++ {
		next := Append(buf, sampleAt(i), DefaultCapacity)
		if len(next) != min(i, DefaultCapacity) {
			t.Fatalf("after %d appends len = %d", i, len(next))
		}
		if len(buf) > 0 && buf[0] != sampleAt(max(1, i-DefaultCapacity)) {
			t.Fatalf("input buffer mutated at step %d", i)
		}
		buf = next
	}
	if buf[0] != sampleAt(6) || buf[len(buf)-1] != sampleAt(55) {
		t.Fatalf("unexpected bounds %+v .. %+v", buf[0], buf[len(buf)-1])
	}
}
