package main

import (
	"os"

	"droneops-telemetry/internal/admin"
	"droneops-telemetry/internal/metrics"
	"droneops-telemetry/internal/sim"
)

// writerOptions selects the outputs a command renders to.
type writerOptions struct {
	PrintOnly bool
	Color     bool
	TUI       bool
	LogFile   string
	Admin     bool
}

// outputs bundles the fan-out writer with the pieces other components need.
type outputs struct {
	Writer  *sim.MultiWriter
	TUI     *sim.TUIWriter
	Hub     *admin.Hub
	Metrics *metrics.Collector
}

// Close closes every writer that holds resources.
func (o *outputs) Close() error {
	return o.Writer.Close()
}

// newWriters sets up the writers based on flags and env vars.
func newWriters(opts writerOptions) (*outputs, error) {
	out := &outputs{Writer: sim.NewMultiWriter()}
	switch {
	case opts.TUI && !opts.PrintOnly:
		out.TUI = sim.NewTUIWriter()
		out.Writer.Add(out.TUI)
	case opts.Color:
		out.Writer.Add(sim.NewColorStdoutWriter())
	default:
		out.Writer.Add(sim.NewJSONStdoutWriter())
	}

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !opts.PrintOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		gw, err := sim.NewGreptimeDBWriter(endpoint, database, "")
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.Writer.Add(gw)
	}

	if opts.LogFile != "" {
		fw, err := sim.NewFileWriter(opts.LogFile)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.Writer.Add(fw)
	}

	if opts.Admin {
		out.Hub = admin.NewHub()
		out.Metrics = metrics.NewCollector()
		out.Writer.Add(out.Hub)
		out.Writer.Add(out.Metrics)
	}
	return out, nil
}
