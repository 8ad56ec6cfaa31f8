package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Bounds is the inclusive domain of one numeric field and its display precision.
type Bounds struct {
	Min      float64
	Max      float64
	Decimals int
}

// Contains reports whether v lies inside the inclusive domain.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Span returns Max-Min.
func (b Bounds) Span() float64 { return b.Max - b.Min }

// draw picks a uniform value, rounds it and keeps it inside the domain.
func (b Bounds) draw(r *rand.Rand) float64 {
	v := b.Min + r.Float64()*b.Span()
	v = round(v, b.Decimals)
	return math.Min(math.Max(v, b.Min), b.Max)
}

// Field domains.
var (
	BatteryRange     = Bounds{Min: 9.0, Max: 12.0, Decimals: 2}
	RollRange        = Bounds{Min: -180, Max: 180, Decimals: 2}
	PitchRange       = Bounds{Min: -90, Max: 90, Decimals: 2}
	YawRange         = Bounds{Min: -180, Max: 180, Decimals: 2}
	TemperatureRange = Bounds{Min: 20, Max: 40, Decimals: 1}
	AltitudeRange    = Bounds{Min: 0, Max: 500, Decimals: 1}
	LatitudeRange    = Bounds{Min: 12.0, Max: 13.0, Decimals: 6}
	LongitudeRange   = Bounds{Min: 77.0, Max: 78.0, Decimals: 6}
)

// Generator simulates drone sensor readings.
// It is not safe for concurrent use.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator creates a generator drawing from r. A nil r uses a time-seeded source.
func NewGenerator(r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rand: r}
}

// Generate returns a fresh reading stamped with now truncated to the second.
func (g *Generator) Generate(now time.Time) Reading {
	return Reading{
		Timestamp:   now.Truncate(time.Second),
		Battery:     BatteryRange.draw(g.rand),
		Roll:        RollRange.draw(g.rand),
		Pitch:       PitchRange.draw(g.rand),
		Yaw:         YawRange.draw(g.rand),
		Temperature: TemperatureRange.draw(g.rand),
		Altitude:    AltitudeRange.draw(g.rand),
		Latitude:    LatitudeRange.draw(g.rand),
		Longitude:   LongitudeRange.draw(g.rand),
		Connection:  ConnectionStates[g.rand.Intn(len(ConnectionStates))],
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
