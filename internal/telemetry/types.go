// Telemetry structs shared by the generator, history window and renderers
package telemetry

import (
	"fmt"
	"os"
	"time"
)

// ConnectionState is the categorical link quality reported with each reading.
type ConnectionState string

// Connection states.
const (
	ConnectionExcellent ConnectionState = "Excellent"
	ConnectionPoor      ConnectionState = "Poor"
	ConnectionNoSignal  ConnectionState = "No Signal"
)

// ConnectionStates lists every valid state in display order.
var ConnectionStates = []ConnectionState{ConnectionExcellent, ConnectionPoor, ConnectionNoSignal}

// Valid reports whether c is one of the known connection states.
func (c ConnectionState) Valid() bool {
	switch c {
	case ConnectionExcellent, ConnectionPoor, ConnectionNoSignal:
		return true
	}
	return false
}

// ParseConnectionState converts the text form of a connection state.
func ParseConnectionState(s string) (ConnectionState, error) {
	c := ConnectionState(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown connection state %q", s)
	}
	return c, nil
}

// Reading is one synthetic telemetry sample.
type Reading struct {
	Timestamp   time.Time       `json:"ts"`          // second precision
	Battery     float64         `json:"battery"`     // volts
	Roll        float64         `json:"roll"`        // degrees
	Pitch       float64         `json:"pitch"`       // degrees
	Yaw         float64         `json:"yaw"`         // degrees
	Temperature float64         `json:"temperature"` // °C
	Altitude    float64         `json:"altitude"`    // meters
	Latitude    float64         `json:"lat"`         // degrees
	Longitude   float64         `json:"lon"`         // degrees
	Connection  ConnectionState `json:"connection"`
}

// Sample returns the reduced form kept in the history window.
func (r Reading) Sample() Sample {
	return Sample{
		Timestamp:   r.Timestamp,
		Battery:     r.Battery,
		Altitude:    r.Altitude,
		Temperature: r.Temperature,
	}
}

// Sample is the reduced reading used for trend display.
type Sample struct {
	Timestamp   time.Time `json:"ts"`
	Battery     float64   `json:"battery"`
	Altitude    float64   `json:"altitude"`
	Temperature float64   `json:"temperature"`
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	SessionID string        `json:"session_id"`
	Seq       uint64        `json:"seq"`
	Latest    Reading       `json:"latest"`
	History   []Sample      `json:"history"`
	Alerts    []Alert       `json:"alerts"`
	Running   bool          `json:"running"`
	Interval  time.Duration `json:"interval_ns"`
	Capacity  int           `json:"capacity"`
}

// TelemetryTableName holds the table name used when writing to GreptimeDB.
// It defaults to "drone_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "drone_telemetry"
}()

func (Reading) TableName() string {
	return TelemetryTableName
}
