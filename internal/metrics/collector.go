// Package metrics exports the latest drone telemetry as Prometheus gauges.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"droneops-telemetry/internal/telemetry"
)

const namespace = "drone"

// Collector is a TelemetryWriter that mirrors each frame into its own registry.
type Collector struct {
	registry *prometheus.Registry

	reading     *prometheus.GaugeVec
	connection  *prometheus.GaugeVec
	alertActive *prometheus.GaugeVec
	historyLen  prometheus.Gauge
	running     prometheus.Gauge
	interval    prometheus.Gauge
	ticks       prometheus.Counter
}

// NewCollector registers the drone metrics on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		reading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reading",
			Help:      "Latest telemetry reading by field.",
		}, []string{"field"}),
		connection: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "1 for the current connection state, 0 otherwise.",
		}, []string{"state"}),
		alertActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_active",
			Help:      "1 while the alert condition holds for the latest reading.",
		}, []string{"kind"}),
		historyLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_length",
			Help:      "Samples currently held in the history window.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while the refresh loop is generating samples.",
		}),
		interval: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_interval_seconds",
			Help:      "Current refresh interval.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Frames observed.",
		}),
	}
	c.registry.MustRegister(c.reading, c.connection, c.alertActive, c.historyLen, c.running, c.interval, c.ticks)
	for _, s := range telemetry.ConnectionStates {
		c.connection.WithLabelValues(string(s)).Set(0)
	}
	for _, k := range telemetry.AlertKinds {
		c.alertActive.WithLabelValues(string(k)).Set(0)
	}
	return c
}

// Write updates every gauge from frame.
func (c *Collector) Write(frame telemetry.Frame) error {
	r := frame.Latest
	fields := map[string]float64{
		"battery":     r.Battery,
		"roll":        r.Roll,
		"pitch":       r.Pitch,
		"yaw":         r.Yaw,
		"temperature": r.Temperature,
		"altitude":    r.Altitude,
		"lat":         r.Latitude,
		"lon":         r.Longitude,
	}
	for f, v := range fields {
		c.reading.WithLabelValues(f).Set(v)
	}
	for _, s := range telemetry.ConnectionStates {
		c.connection.WithLabelValues(string(s)).Set(boolGauge(s == r.Connection))
	}
	active := make(map[telemetry.AlertKind]bool, len(frame.Alerts))
	for _, a := range frame.Alerts {
		active[a.Kind] = true
	}
	for _, k := range telemetry.AlertKinds {
		c.alertActive.WithLabelValues(string(k)).Set(boolGauge(active[k]))
	}
	c.historyLen.Set(float64(len(frame.History)))
	c.running.Set(boolGauge(frame.Running))
	c.interval.Set(frame.Interval.Seconds())
	c.ticks.Inc()
	return nil
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
