package main

import (
	"fmt"
	"net"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/minimalshop/app/repositories"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/internal/kernel"
	"github.com/shashiranjanraj/minimalshop/internal/server"
	"github.com/shashiranjanraj/minimalshop/pkg/app"
	"github.com/shashiranjanraj/minimalshop/pkg/middleware"
)

var serveWithSchedule bool

// shop serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := kernel.NewHTTPKernel(kernel.Options{
			Catalog:     a.Catalog,
			Driver:      a.Stores.Driver,
			CORSOrigins: middleware.ParseOrigins(config.CORSOrigins()),
		})
		if err != nil {
			return err
		}

		if serveWithSchedule {
			s, err := reconcileSchedule(a)
			if err != nil {
				return err
			}
			go s.Start(ctx)
		}

		return server.Start(ctx, net.JoinHostPort("", config.AppPort()), r.Handler())
	},
}

// shop route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the HTTP routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Routes are mounted over an unconnected in-memory catalog.
		svc := services.NewCatalogService(repositories.NewMemoryCatalog(), repositories.NewMemoryDiscounts(), nil, 0)
		r, err := kernel.NewHTTPKernel(kernel.Options{Catalog: svc})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range r.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveWithSchedule, "schedule", false, "also run the reconcile schedule in this process")
}
