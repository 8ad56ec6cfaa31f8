// YAML config loader with CUE validation integration
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"droneops-telemetry/internal/history"
	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/telemetry"
)

// RefreshConfig controls the tick loop. Values are whole seconds.
type RefreshConfig struct {
	IntervalSeconds int  `yaml:"interval"`
	MinSeconds      int  `yaml:"min"`
	MaxSeconds      int  `yaml:"max"`
	StartRunning    bool `yaml:"start_running"`
}

// HistoryConfig sizes the rolling window.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// AlertConfig holds the alert thresholds.
type AlertConfig struct {
	LowBatteryVolts  float64 `yaml:"low_battery_volts"`
	HighTemperatureC float64 `yaml:"high_temperature_c"`
}

// AdminConfig configures the HTTP dashboard.
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures application logs.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the root dronedash configuration.
type Config struct {
	Refresh RefreshConfig `yaml:"refresh"`
	History HistoryConfig `yaml:"history"`
	Alerts  AlertConfig   `yaml:"alerts"`
	Admin   AdminConfig   `yaml:"admin"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Refresh: RefreshConfig{
			IntervalSeconds: int(session.DefaultInterval / time.Second),
			MinSeconds:      int(session.DefaultMinInterval / time.Second),
			MaxSeconds:      int(session.DefaultMaxInterval / time.Second),
			StartRunning:    true,
		},
		History: HistoryConfig{Capacity: history.DefaultCapacity},
		Alerts: AlertConfig{
			LowBatteryVolts:  telemetry.DefaultThresholds.LowBatteryVolts,
			HighTemperatureC: telemetry.DefaultThresholds.HighTemperatureC,
		},
		Admin:   AdminConfig{Enabled: true, Addr: ":8080"},
		Logging: LoggingConfig{Level: "info", File: "dronedash.log"},
	}
}

// Load reads a YAML config, validates it against the CUE schema and overlays
// it on Default. An empty configPath returns Default. An empty cueSchemaPath
// uses the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read YAML config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := ValidateWithCue(configPath, data, cueSchemaPath); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Check enforces constraints spanning several fields.
func (c *Config) Check() error {
	r := c.Refresh
	if r.MinSeconds > r.MaxSeconds {
		return fmt.Errorf("refresh.min (%d) exceeds refresh.max (%d)", r.MinSeconds, r.MaxSeconds)
	}
	if r.IntervalSeconds < r.MinSeconds || r.IntervalSeconds > r.MaxSeconds {
		return fmt.Errorf("refresh.interval %d outside [%d, %d]: %w",
			r.IntervalSeconds, r.MinSeconds, r.MaxSeconds, session.ErrIntervalOutOfRange)
	}
	return nil
}

// SessionOptions converts the refresh and history sections.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Capacity:    c.History.Capacity,
		Interval:    time.Duration(c.Refresh.IntervalSeconds) * time.Second,
		MinInterval: time.Duration(c.Refresh.MinSeconds) * time.Second,
		MaxInterval: time.Duration(c.Refresh.MaxSeconds) * time.Second,
		Running:     c.Refresh.StartRunning,
	}
}

// Thresholds converts the alerts section.
func (c *Config) Thresholds() telemetry.Thresholds {
	return telemetry.Thresholds{
		LowBatteryVolts:  c.Alerts.LowBatteryVolts,
		HighTemperatureC: c.Alerts.HighTemperatureC,
	}
}
