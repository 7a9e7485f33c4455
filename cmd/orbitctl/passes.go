package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmewall/orbital-space-objects/internal/passes"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
)

var (
	passFlags     orbitFlags
	passObsLat    float64
	passObsLon    float64
	passHours     float64
	passMinEl     float64
	passMaxPasses int
	passStart     string
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "Predict passes over a ground observer",
	Long: `
Predict when the orbit rises above the observer's horizon, culminates and sets.
The geometric policy has no time model and cannot be used here.

Example:
  orbitctl passes --policy sgp4 --line1 "..." --line2 "..." --obs-lat 40.71 --obs-lon -74.01 --hours 48
`,
	Args: cobra.NoArgs,
	RunE: runPasses,
}

func init() {
	passFlags.register(passesCmd)
	fs := passesCmd.Flags()
	fs.Float64Var(&passObsLat, "obs-lat", 0, "observer latitude (degrees)")
	fs.Float64Var(&passObsLon, "obs-lon", 0, "observer longitude (degrees)")
	fs.Float64Var(&passHours, "hours", 24, "prediction window (hours)")
	fs.Float64Var(&passMinEl, "min-el", 0, "minimum elevation (degrees)")
	fs.IntVar(&passMaxPasses, "max-passes", 10, "stop after this many passes")
	fs.StringVar(&passStart, "start", "", "window start, RFC 3339 (default now)")
	rootCmd.AddCommand(passesCmd)
}

func runPasses(cmd *cobra.Command, args []string) error {
	now := time.Now().UTC()
	req, err := passFlags.request(cmd, now)
	if err != nil {
		return err
	}
	tr, err := propagation.NewTracker(req)
	if err != nil {
		return err
	}

	start := now
	if passStart != "" {
		if start, err = time.Parse(time.RFC3339, passStart); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
	}
	if passHours <= 0 {
		return fmt.Errorf("--hours must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	found, err := passes.PredictOne(ctx, tr, passes.Request{
		Observer:     passes.Observer{Latitude: passObsLat, Longitude: passObsLon},
		Start:        start,
		Horizon:      time.Duration(passHours * float64(time.Hour)),
		MinElevation: passMinEl,
		MaxPasses:    passMaxPasses,
	})
	if err != nil {
		return err
	}
	logger.Debug("passes predicted", "count", len(found))
	return printJSON(found)
}
