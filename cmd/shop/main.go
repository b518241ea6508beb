// Command shop runs the storefront API and its maintenance jobs.
//
//	shop serve               start the HTTP API (and the reconcile schedule with --schedule)
//	shop reconcile           normalise discount targets once
//	shop seed                import data/products.json and data/discounts.json
//	shop seed:status         print catalog integrity counts
//	shop migrate             run SQL migrations (STORE_DRIVER=sql)
//	shop schedule:run        run the reconcile schedule in the foreground
//	shop route:list          print the HTTP routes
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	// Register SQL migrations and seeders.
	_ "github.com/shashiranjanraj/minimalshop/database/migrations"
	_ "github.com/shashiranjanraj/minimalshop/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shop",
	Short:         "minimalshop storefront API and maintenance jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Catalog
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(seedStatusCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)

	// Workers
	rootCmd.AddCommand(scheduleRunCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
