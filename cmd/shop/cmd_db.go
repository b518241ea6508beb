package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/pkg/database"
	"github.com/shashiranjanraj/minimalshop/pkg/migration"
)

var (
	migrateRollback bool
	migrateStatus   bool
)

// shop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending SQL migrations (STORE_DRIVER=sql)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := config.Load(); err != nil {
			return err
		}
		db, err := database.Connect(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck

		runner := migration.New(db)
		switch {
		case migrateStatus:
			entries, err := runner.Status(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
			for _, e := range entries {
				batch := "-"
				if e.Ran {
					batch = fmt.Sprint(e.Batch)
				}
				fmt.Fprintf(w, "%s\t%t\t%s\n", e.Name, e.Ran, batch)
			}
			return w.Flush()

		case migrateRollback:
			names, err := runner.Rollback(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println("Rolled back:", n)
			}
			if len(names) == 0 {
				fmt.Println("Nothing to roll back.")
			}
			return nil
		}

		names, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println("Migrated:", n)
		}
		if len(names) == 0 {
			fmt.Println("Nothing to migrate.")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateRollback, "rollback", false, "roll back the last batch")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "show which migrations ran")
}
