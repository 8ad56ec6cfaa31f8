package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"droneops-telemetry/internal/admin"
	"droneops-telemetry/internal/config"
	"droneops-telemetry/internal/logging"
	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/sim"
	"droneops-telemetry/internal/telemetry"
)

var (
	runConfigPath string
	runSchemaPath string
	runInterval   time.Duration
	runStopped    bool
	runPrintOnly  bool
	runColor      bool
	runLogFile    string
	runAdminAddr  string
	runNoAdmin    bool
	runSeed       int64
	runAppLog     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live telemetry dashboard",
	Long:  "run generates a telemetry sample every refresh interval and renders it to the terminal, the browser dashboard and any configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		sess := session.New(cfg.SessionOptions())
		interval, ok, err := intervalOverride(cmd)
		if err != nil {
			return err
		}
		if ok {
			if _, err := sess.SetInterval(interval); err != nil {
				return err
			}
		}

		useTUI := !runPrintOnly && !runColor && term.IsTerminal(int(os.Stdout.Fd()))
		out, err := newWriters(writerOptions{
			PrintOnly: runPrintOnly,
			Color:     runColor,
			TUI:       useTUI,
			LogFile:   runLogFile,
			Admin:     cfg.Admin.Enabled,
		})
		if err != nil {
			return err
		}
		defer out.Close()

		var logger *slog.Logger
		if useTUI {
			l, closer := logging.NewFile(cfg.Logging.File, cfg.Logging.Level)
			defer closer.Close()
			logger = l
		} else {
			logger = logging.New(os.Stderr, cfg.Logging.Level)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		var rng *rand.Rand
		if cmd.Flags().Changed("seed") {
			rng = rand.New(rand.NewSource(runSeed))
		}
		simulator := sim.NewSimulator(sess, telemetry.NewGenerator(rng), out.Writer, sim.WithThresholds(cfg.Thresholds()))

		if out.TUI != nil {
			out.TUI.SetControls(sess)
		}
		if cfg.Admin.Enabled {
			srv := admin.NewServer(simulator, out.Hub, out.Metrics.Handler())
			go func() {
				logger.Info("admin UI listening", "addr", cfg.Admin.Addr)
				if err := srv.Start(ctx, cfg.Admin.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("admin server failed", "err", err)
					if out.TUI != nil {
						out.TUI.SetAdminStatus(false)
					}
				}
			}()
			if out.TUI != nil {
				out.TUI.SetAdminStatus(true)
			}
		}

		simulator.Run(ctx)
		logger.Info("drone telemetry stopped", "ticks", simulator.Ticks())
		return nil
	},
}

// applyRunFlags overlays explicit flags on the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if runStopped {
		cfg.Refresh.StartRunning = false
	}
	if cmd.Flags().Changed("admin-addr") {
		cfg.Admin.Addr = runAdminAddr
	}
	if runNoAdmin {
		cfg.Admin.Enabled = false
	}
	if cmd.Flags().Changed("app-log") {
		cfg.Logging.File = runAppLog
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = "dronedash.log"
	}
}

// intervalOverride returns the refresh interval from TICK_INTERVAL or --interval.
// The environment wins over the flag.
func intervalOverride(cmd *cobra.Command) (time.Duration, bool, error) {
	if env := os.Getenv("TICK_INTERVAL"); env != "" {
		d, err := time.ParseDuration(env)
		if err != nil {
			return 0, false, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		return d, true, nil
	}
	if cmd.Flags().Changed("interval") {
		return runInterval, true, nil
	}
	return 0, false, nil
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to dronedash configuration YAML (defaults apply when empty)")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "", "Path to a CUE schema overriding the embedded one")
	runCmd.Flags().DurationVar(&runInterval, "interval", session.DefaultInterval, "Refresh interval in whole seconds between 1s and 10s")
	runCmd.Flags().BoolVar(&runStopped, "stopped", false, "Start with the refresh loop stopped")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print JSON frames to STDOUT and skip the TUI and database")
	runCmd.Flags().BoolVar(&runColor, "color", false, "Print colorized lines instead of the TUI")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export readings (JSONL)")
	runCmd.Flags().StringVar(&runAdminAddr, "admin-addr", ":8080", "Listen address for the browser dashboard")
	runCmd.Flags().BoolVar(&runNoAdmin, "no-admin", false, "Disable the browser dashboard")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed for reproducible telemetry")
	runCmd.Flags().StringVar(&runAppLog, "app-log", "dronedash.log", "Application log file used while the TUI owns the terminal")
}
