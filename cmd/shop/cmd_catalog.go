package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/database/seeders"
	"github.com/shashiranjanraj/minimalshop/pkg/app"
	"github.com/shashiranjanraj/minimalshop/pkg/storage"
)

var (
	reconcileDryRun bool
	reconcileJSON   bool
	seedOnly        []string
	seedDisk        string
)

// shop reconcile
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rewrite every discount's product targets as canonical product ids",
	Long: `Resolves legacy slugs and SKUs to product ids, drops targets that no longer
exist and expands category-scoped discounts to the whole category. Safe to
re-run: a second run against an unchanged catalog changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Reconciler(reconcileDryRun).Run(ctx)
		if err != nil {
			return err
		}

		if reconcileJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Run %s (%s)\n", report.RunID, report.Status())
		fmt.Printf("  discounts examined: %d\n", report.Examined)
		fmt.Printf("  discounts changed:  %d\n", len(report.Changes))
		fmt.Printf("  discounts updated:  %d\n", report.Updated)
		fmt.Printf("  productIds added from legacy references: %d\n", report.InferredLegacy)
		fmt.Printf("  productIds added by category inference:  %d\n", report.InferredCategory)
		for _, f := range report.Failures {
			fmt.Printf("  FAILED %s: %s\n", f.DiscountID, f.Error)
		}
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d discount(s) not updated; re-run to retry", len(report.Failures))
		}
		return nil
	},
}

// shop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import products.json and discounts.json, then reconcile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		source, err := storage.Default()
		if seedDisk != "" {
			source, err = storage.Use(seedDisk)
		}
		if err != nil {
			return err
		}

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, seeders.Env{
			Catalog:   a.Stores.Catalog,
			Discounts: a.Stores.Discounts,
			Source:    source,
			Dir:       config.SeedDir(),
			Out:       os.Stdout,
		}, seedOnly...)
	},
}

// shop seed:status
var seedStatusCmd = &cobra.Command{
	Use:   "seed:status",
	Short: "Print product and discount counts and dangling discount targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.Catalog.SeedStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("products:                          %d\n", status.Products)
		fmt.Printf("discounts:                         %d\n", status.Discounts)
		fmt.Printf("discounts with invalid productIds: %d\n", status.DiscountsWithInvalidProductIDs)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "plan only; write nothing")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "print the full report as JSON")

	seedCmd.Flags().StringSliceVar(&seedOnly, "only", nil, "run only the named seeders")
	seedCmd.Flags().StringVar(&seedDisk, "disk", "", "storage disk holding the seed files (default STORAGE_DISK)")
}
