package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"moove-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a drone telemetry log file",
	Long:  "replay feeds drone rows from a JSONL log (see simulate --log-file) back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := outputJSON
		if !replayPrintOnly && greptimeEndpoint() != "" {
			kind = outputGreptime
		}
		writer, cleanup, err := newWriters(nil, kind, "", "")
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		n, err := sim.ReplayLogFile(ctx, replayInput, writer, replaySpeed)
		fmt.Fprintf(cmd.ErrOrStderr(), "replayed %d rows from %s\n", n, replayInput)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to drone telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier; 0 replays without delay")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
