package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"droneops-telemetry/internal/config"
	"droneops-telemetry/internal/logging"
	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayColor     bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a telemetry log file",
	Long:  "replay feeds readings exported with --log-file back through a fresh session to STDOUT or GreptimeDB.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg := config.Default()
		out, err := newWriters(writerOptions{PrintOnly: replayPrintOnly, Color: replayColor})
		if err != nil {
			return err
		}
		defer out.Close()

		logger := logging.New(os.Stderr, cfg.Logging.Level)
		opts := cfg.SessionOptions()
		opts.Running = true
		sess := session.New(opts)
		logger.Info("replaying telemetry", "input", replayInput, "speed", replaySpeed, "session_id", sess.ID())
		if err := sim.ReplayLogFile(replayInput, sess, out.Writer, cfg.Thresholds(), replaySpeed); err != nil {
			return err
		}
		logger.Info("replay finished")
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 disables delays)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayColor, "color", false, "Print colorized lines instead of JSON")
	replayCmd.MarkFlagRequired("input")
}
