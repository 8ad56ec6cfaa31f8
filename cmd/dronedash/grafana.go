package main

import (
	"github.com/spf13/cobra"

	"droneops-telemetry/internal/dashboard"
)

var grafanaOut string

var grafanaCmd = &cobra.Command{
	Use:   "grafana",
	Short: "Render the Grafana dashboard for the telemetry table",
	Long:  "grafana renders the GreptimeDB-backed Grafana dashboard JSON. GREPTIMEDB_DATASOURCE_UID must be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboard.Render(grafanaOut)
	},
}

func init() {
	grafanaCmd.Flags().StringVar(&grafanaOut, "out", "build", "Output directory for rendered dashboards")
}
