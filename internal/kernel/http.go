// Package kernel assembles the shop's HTTP handler: global middleware,
// the /metrics endpoint and the API routes.
package kernel

import (
	"net/http"

	"github.com/shashiranjanraj/minimalshop/app/routes"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/pkg/metrics"
	"github.com/shashiranjanraj/minimalshop/pkg/middleware"
	"github.com/shashiranjanraj/minimalshop/pkg/reqid"
	"github.com/shashiranjanraj/minimalshop/pkg/response"
	"github.com/shashiranjanraj/minimalshop/pkg/router"
)

// Options configures NewHTTPKernel.
type Options struct {
	Catalog *services.CatalogService
	// Driver is reported by /api/health.
	Driver string
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
}

// NewHTTPKernel builds the router. Global middleware, outermost first:
//
//  1. Prometheus metrics, for total latency
//  2. Recovery
//  3. Request id
//  4. Request logger, tagged with the request id
//  5. CORS
func NewHTTPKernel(opts Options) (*router.Router, error) {
	r := router.New()

	cors := middleware.DefaultCORSOptions()
	if len(opts.CORSOrigins) > 0 {
		cors.AllowedOrigins = opts.CORSOrigins
	}

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cors))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())

	if err := routes.RegisterAPI(r, opts.Catalog, opts.Driver); err != nil {
		return nil, err
	}
	return r, nil
}
