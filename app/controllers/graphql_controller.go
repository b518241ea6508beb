package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/services"
	gql "github.com/shashiranjanraj/minimalshop/pkg/graphql"
)

// GraphQLController serves the read-only catalog schema:
//
//	{ products(flavor: "mango", discount: true) { slug price priceFinal } }
//	{ product(slug: "mango-lassi") { name priceFinal variants { name stock } } }
type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(service *services.CatalogService) (*GraphQLController, error) {
	schema, err := gql.NewSchema(catalogQuery(service))
	if err != nil {
		return nil, err
	}
	return &GraphQLController{schema: schema}, nil
}

func (c *GraphQLController) Serve(w http.ResponseWriter, r *http.Request) {
	gql.Handler(c.schema)(w, r)
}

// resolve adapts a typed getter to a field resolver.
func resolve[T any](get func(T) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		src, ok := p.Source.(T)
		if !ok {
			return nil, nil
		}
		return get(src), nil
	}
}

func timeString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

var variantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Variant",
	Fields: graphql.Fields{
		"name":  &graphql.Field{Type: graphql.String, Resolve: resolve(func(v models.Variant) any { return v.Name })},
		"stock": &graphql.Field{Type: graphql.Int, Resolve: resolve(func(v models.Variant) any { return v.Stock })},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: resolve(func(p models.PricedProduct) any { return p.ID })},
		"name":       &graphql.Field{Type: graphql.String, Resolve: resolve(func(p models.PricedProduct) any { return p.Name })},
		"slug":       &graphql.Field{Type: graphql.String, Resolve: resolve(func(p models.PricedProduct) any { return p.Slug })},
		"sku":        &graphql.Field{Type: graphql.String, Resolve: resolve(func(p models.PricedProduct) any { return p.SKU })},
		"category":   &graphql.Field{Type: graphql.String, Resolve: resolve(func(p models.PricedProduct) any { return p.Category })},
		"price":      &graphql.Field{Type: graphql.Float, Resolve: resolve(func(p models.PricedProduct) any { return p.Price })},
		"priceFinal": &graphql.Field{Type: graphql.Float, Resolve: resolve(func(p models.PricedProduct) any { return p.PriceFinal })},
		"discounted": &graphql.Field{Type: graphql.Boolean, Resolve: resolve(func(p models.PricedProduct) any { return p.Discounted() })},
		"popularity": &graphql.Field{Type: graphql.Float, Resolve: resolve(func(p models.PricedProduct) any { return p.Popularity })},
		"flavors":    &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: resolve(func(p models.PricedProduct) any { return p.Flavors })},
		"variants":   &graphql.Field{Type: graphql.NewList(variantType), Resolve: resolve(func(p models.PricedProduct) any { return p.Variants })},
		"imageUrl":   &graphql.Field{Type: graphql.String, Resolve: resolve(func(p models.PricedProduct) any { return p.ImageURL })},
	},
})

var discountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Discount",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: resolve(func(d models.Discount) any { return d.ID })},
		"type":       &graphql.Field{Type: graphql.String, Resolve: resolve(func(d models.Discount) any { return string(d.Kind) })},
		"value":      &graphql.Field{Type: graphql.Float, Resolve: resolve(func(d models.Discount) any { return d.Value })},
		"productIds": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: resolve(func(d models.Discount) any { return d.ProductIDs })},
		"category":   &graphql.Field{Type: graphql.String, Resolve: resolve(func(d models.Discount) any { return d.Category })},
		"active":     &graphql.Field{Type: graphql.Boolean, Resolve: resolve(func(d models.Discount) any { return d.Active })},
		"startsAt":   &graphql.Field{Type: graphql.String, Resolve: resolve(func(d models.Discount) any { return timeString(d.StartsAt) })},
		"endsAt":     &graphql.Field{Type: graphql.String, Resolve: resolve(func(d models.Discount) any { return timeString(d.EndsAt) })},
	},
})

func catalogQuery(service *services.CatalogService) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"flavor":     &graphql.ArgumentConfig{Type: graphql.String},
					"minPrice":   &graphql.ArgumentConfig{Type: graphql.Float},
					"maxPrice":   &graphql.ArgumentConfig{Type: graphql.Float},
					"discount":   &graphql.ArgumentConfig{Type: graphql.Boolean},
					"popularity": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					var f services.ListFilter
					f.Flavor, _ = p.Args["flavor"].(string)
					if v, ok := p.Args["minPrice"].(float64); ok {
						f.MinPrice = &v
					}
					if v, ok := p.Args["maxPrice"].(float64); ok {
						f.MaxPrice = &v
					}
					f.OnlyDiscounted, _ = p.Args["discount"].(bool)
					f.ByPopularityDesc = p.Args["popularity"] == "desc"
					return service.Products(p.Context, f)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					slug, _ := p.Args["slug"].(string)
					product, err := service.Product(p.Context, slug)
					if errors.Is(err, services.ErrProductNotFound) {
						return nil, nil
					}
					return product, err
				},
			},
			"discounts": &graphql.Field{
				Type: graphql.NewList(discountType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return service.Discounts(p.Context)
				},
			},
		},
	})
}
