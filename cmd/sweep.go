package cmd

import (
	"Pantry-Planner/cmd/config"
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/pkg/waste"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var flagSweepInterval time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the waste detector for every user with active pantry items",
	Long: "Runs the waste detector once. With --interval (or SWEEP_INTERVAL_MINUTES) " +
		"it keeps running on that interval until interrupted.",
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().DurationVar(&flagSweepInterval, "interval", 0, "Repeat the sweep on this interval (0 runs once)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	interval := flagSweepInterval
	if !cmd.Flags().Changed("interval") {
		interval = time.Duration(utils.GetConfigInt("SWEEP_INTERVAL_MINUTES", 0)) * time.Minute
	}

	db, err := openDB(false)
	if err != nil {
		return err
	}
	wasteService := config.NewServices(db).Waste

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sweepOnce(ctx, wasteService); err != nil || interval <= 0 {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := sweepOnce(ctx, wasteService); err != nil {
				log.Errorw("waste sweep failed", "error", err)
			}
		}
	}
}

func sweepOnce(ctx context.Context, wasteService waste.WasteService) error {
	res, err := wasteService.SweepAll(ctx)
	if err != nil {
		return err
	}
	log.Infow("waste sweep finished",
		"scanned", res.Scanned,
		"expired", res.Expired,
		"stale", res.Stale,
		"failed", res.Failed,
	)
	return nil
}
