package telemetry

import "fmt"

// AlertKind identifies a display alert.
type AlertKind string

const (
	AlertLowBattery      AlertKind = "low_battery"
	AlertHighTemperature AlertKind = "high_temperature"
	AlertNoSignal        AlertKind = "no_signal"
)

// AlertKinds lists every alert in evaluation order.
var AlertKinds = []AlertKind{AlertLowBattery, AlertHighTemperature, AlertNoSignal}

// Severity controls how a renderer colors an alert.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a threshold condition raised by a reading.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Thresholds configures when alerts fire.
type Thresholds struct {
	LowBatteryVolts  float64 `json:"low_battery_volts"`
	HighTemperatureC float64 `json:"high_temperature_c"`
}

// DefaultThresholds matches the stock dashboard: 10 V and 35 °C.
var DefaultThresholds = Thresholds{LowBatteryVolts: 10.0, HighTemperatureC: 35.0}

// LowBattery is true when the battery is strictly below the threshold.
func (t Thresholds) LowBattery(r Reading) bool {
	return r.Battery < t.LowBatteryVolts
}

// HighTemperature is true when the temperature is strictly above the threshold.
func (t Thresholds) HighTemperature(r Reading) bool {
	return r.Temperature > t.HighTemperatureC
}

// NoSignal is true when the link reports no signal.
func NoSignal(r Reading) bool {
	return r.Connection == ConnectionNoSignal
}

// Evaluate returns the alerts raised by r in AlertKinds order.
func (t Thresholds) Evaluate(r Reading) []Alert {
	var alerts []Alert
	if t.LowBattery(r) {
		alerts = append(alerts, Alert{
			Kind:     AlertLowBattery,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Low battery: %.2fV", r.Battery),
		})
	}
	if t.HighTemperature(r) {
		alerts = append(alerts, Alert{
			Kind:     AlertHighTemperature,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("High temperature: %.1f°C", r.Temperature),
		})
	}
	if NoSignal(r) {
		alerts = append(alerts, Alert{
			Kind:     AlertNoSignal,
			Severity: SeverityError,
			Message:  "No signal detected",
		})
	}
	return alerts
}
