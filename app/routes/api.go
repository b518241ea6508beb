package routes

import (
	"github.com/shashiranjanraj/minimalshop/app/controllers"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/pkg/router"
)

// RegisterAPI mounts the read-only storefront API and the GraphQL endpoint.
func RegisterAPI(r *router.Router, catalog *services.CatalogService, driver string) error {
	status := controllers.NewStatusController(catalog, driver)
	products := controllers.NewProductController(catalog)
	discounts := controllers.NewDiscountController(catalog)

	graph, err := controllers.NewGraphQLController(catalog)
	if err != nil {
		return err
	}

	api := r.Group("/api")
	api.Get("/health", "health", status.Health)
	api.Get("/seed-status", "seed.status", status.SeedStatus)
	api.Get("/products", "products.index", products.Index)
	api.Get("/products/{slug}", "products.show", products.Show)
	api.Get("/discounts", "discounts.index", discounts.Index)

	r.Get("/graphql", "graphql", graph.Serve)
	r.Post("/graphql", "", graph.Serve)
	return nil
}
