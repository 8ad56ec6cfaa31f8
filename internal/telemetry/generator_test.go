package telemetry

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestGenerateWithinDomains(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(42)))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fields := []struct {
		name   string
		bounds Bounds
		get    func(Reading) float64
	}{
		{"battery", BatteryRange, func(r Reading) float64 { return r.Battery }},
		{"roll", RollRange, func(r Reading) float64 { return r.Roll }},
		{"pitch", PitchRange, func(r Reading) float64 { return r.Pitch }},
		{"yaw", YawRange, func(r Reading) float64 { return r.Yaw }},
		{"temperature", TemperatureRange, func(r Reading) float64 { return r.Temperature }},
		{"altitude", AltitudeRange, func(r Reading) float64 { return r.Altitude }},
		{"latitude", LatitudeRange, func(r Reading) float64 { return r.Latitude }},
		{"longitude", LongitudeRange, func(r Reading) float64 { return r.Longitude }},
	}
	for i := 0; i < 5000; i++ {
		r := gen.Generate(now)
		for _, f := range fields {
			if v := f.get(r); !f.bounds.Contains(v) {
				t.Fatalf("%s=%v outside [%v, %v]", f.name, v, f.bounds.Min, f.bounds.Max)
			}
		}
		if !r.Connection.Valid() {
			t.Fatalf("invalid connection state %q", r.Connection)
		}
	}
}

func TestGenerateRounding(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		r := gen.Generate(time.Now())
		if r.Battery != round(r.Battery, 2) {
			t.Fatalf("battery not rounded to hundredths: %v", r.Battery)
		}
		if r.Temperature != round(r.Temperature, 1) {
			t.Fatalf("temperature not rounded to tenths: %v", r.Temperature)
		}
		if r.Latitude != round(r.Latitude, 6) || r.Longitude != round(r.Longitude, 6) {
			t.Fatalf("coordinates not rounded: %v,%v", r.Latitude, r.Longitude)
		}
	}
}

// Rounding an upper-edge draw must never leave the domain.
type edgeSource struct{ v float64 }

func (e edgeSource) Int63() int64    { return int64(e.v * (1 << 63)) }
func (e edgeSource) Seed(seed int64) {}

func TestDrawClampsAtEdges(t *testing.T) {
	for _, v := range []float64{0, 0.9999999999} {
		r := rand.New(edgeSource{v: v})
		for _, b := range []Bounds{BatteryRange, TemperatureRange, LatitudeRange, AltitudeRange} {
			got := b.draw(r)
			if !b.Contains(got) {
				t.Fatalf("draw %v outside [%v, %v]", got, b.Min, b.Max)
			}
		}
	}
}

func TestGenerateTimestampSecondPrecision(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)))
	now := time.Date(2024, 5, 1, 12, 0, 3, 987654321, time.UTC)
	r := gen.Generate(now)
	if want := time.Date(2024, 5, 1, 12, 0, 3, 0, time.UTC); !r.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", r.Timestamp, want)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	now := time.Unix(0, 0).UTC()
	g1 := NewGenerator(rand.New(rand.NewSource(99)))
	g2 := NewGenerator(rand.New(rand.NewSource(99)))
	for i := 0; i < 10; i++ {
		if a, b := g1.Generate(now), g2.Generate(now); a != b {
			t.Fatalf("seeded generators diverged at %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestGenerateCoverage(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(3)))
	seen := map[ConnectionState]int{}
	minB, maxB := math.Inf(1), math.Inf(-1)
	distinct := map[float64]struct{}{}
	const n = 3000
	for i := 0; i < n; i++ {
		r := gen.Generate(time.Now())
		seen[r.Connection]++
		minB = math.Min(minB, r.Battery)
		maxB = math.Max(maxB, r.Battery)
		distinct[r.Altitude] = struct{}{}
	}
	for _, c := range ConnectionStates {
		// each state should land near n/3
		if seen[c] < n/5 {
			t.Errorf("connection %q seen %d times out of %d", c, seen[c], n)
		}
	}
	if minB > 9.2 || maxB < 11.8 {
		t.Errorf("battery range not covered: [%v, %v]", minB, maxB)
	}
	if len(distinct) < n/2 {
		t.Errorf("expected independent altitude draws, got %d distinct values", len(distinct))
	}
}

func TestSampleProjection(t *testing.T) {
	ts := time.Unix(10, 0).UTC()
	r := Reading{Timestamp: ts, Battery: 11.1, Altitude: 120.5, Temperature: 30.2, Roll: 5}
	s := r.Sample()
	if s.Timestamp != ts || s.Battery != 11.1 || s.Altitude != 120.5 || s.Temperature != 30.2 {
		t.Fatalf("unexpected sample %+v", s)
	}
}

func TestParseConnectionState(t *testing.T) {
	for _, c := range ConnectionStates {
		got, err := ParseConnectionState(string(c))
		if err != nil || got != c {
			t.Fatalf("ParseConnectionState(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseConnectionState("Great"); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}

func TestReadingTableName(t *testing.T) {
	orig := TelemetryTableName
	TelemetryTableName = "custom"
	defer func() { TelemetryTableName = orig }()
	if (Reading{}).TableName() != "custom" {
		t.Errorf("expected custom table name, got %s", (Reading{}).TableName())
	}
}
