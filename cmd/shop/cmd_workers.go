package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/pkg/app"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/schedule"
)

// reconcileSchedule runs the reconciler on RECONCILE_CRON. Runs never
// overlap.
func reconcileSchedule(a *app.App) (*schedule.Scheduler, error) {
	s := schedule.New()
	err := s.Cron(config.ReconcileCron()).
		Name("reconcile-discounts").
		WithoutOverlapping().
		Run(func(ctx context.Context) {
			if _, err := a.Reconciler(false).Run(ctx); err != nil {
				logger.WithCtx(ctx).Error("scheduled reconcile failed", "error", err)
			}
		})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// shop schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the reconcile schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := reconcileSchedule(a)
		if err != nil {
			return err
		}

		fmt.Println("Registered scheduled tasks:")
		for _, t := range s.List() {
			fmt.Println("  •", t)
		}
		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		s.Start(ctx)
		fmt.Println("Scheduler stopped.")
		return nil
	},
}
