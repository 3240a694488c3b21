package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"moove-sim/internal/admin"
	"moove-sim/internal/config"
	"moove-sim/internal/logging"
	"moove-sim/internal/report"
	"moove-sim/internal/sim"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simSeed       int64
	simLogFile    string
	simCSV        string
	simReports    string
	simAdminAddr  string
	simLogLevel   string
	simLogFormat  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time pasture simulator",
	Long:  "simulate runs the herd and its drone on a fixed tick, emitting telemetry until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(simLogLevel)
		if err != nil {
			return err
		}
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = simSeed
		}
		if simReports != "" {
			set, err := report.Load(simReports)
			if err != nil {
				return err
			}
			cfg.Report.Messages = set.Messages
			if set.Interval > 0 {
				cfg.Report.Interval = set.Interval
			}
		}
		tickInterval, err := resolveTick(cmd.Flags().Changed("tick"), simTick)
		if err != nil {
			return err
		}

		kind := selectOutput(simPrintOnly, simTUI)
		writer, cleanup, err := newWriters(cfg, kind, simLogFile, simCSV)
		if err != nil {
			return err
		}
		defer cleanup()

		var logOut io.Writer = os.Stderr
		if kind == outputTUI {
			logOut = io.Discard
		}
		logger := logging.New(logOut, level, simLogFormat)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		simulator := sim.NewSimulator(ctx, sessionID(), cfg, writer, tickInterval)
		go simulator.Reports().Run(ctx, cfg.Report.Interval)

		if simAdminAddr != "" {
			srv := admin.NewServer(simulator)
			go func() {
				if err := srv.Start(ctx, simAdminAddr); err != nil {
					logger.Error("admin server failed", "addr", simAdminAddr, "err", err)
					stop()
				}
			}()
		}

		simulator.Run(ctx)
		logger.Info("simulation stopped", "session_id", simulator.SessionID(), "ticks", simulator.Ticks())
		return nil
	},
}

// sessionID stamps every row of this run; SESSION_ID pins it for repeatable dashboards.
func sessionID() string {
	if id := os.Getenv("SESSION_ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// resolveTick prefers an explicit --tick, then TICK_INTERVAL, then the config value (zero).
func resolveTick(flagSet bool, flagValue time.Duration) (time.Duration, error) {
	if flagSet {
		return flagValue, nil
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return 0, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		return d, nil
	}
	return 0, nil
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Force the interactive terminal UI")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Tick interval (e.g. 100ms); defaults to the config value")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed; 0 seeds from the clock")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export drone telemetry as JSONL (cows, state and events go to sibling files)")
	simulateCmd.Flags().StringVar(&simCSV, "csv", "", "Path to export herd state rows as CSV")
	simulateCmd.Flags().StringVar(&simReports, "reports", "", "YAML file with report messages to rotate")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin UI listen address; empty disables it")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	simulateCmd.Flags().StringVar(&simLogFormat, "log-format", "text", "Log format (text or json)")
}
