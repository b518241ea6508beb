package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/response"
	"github.com/shashiranjanraj/minimalshop/pkg/validate"
)

type ProductController struct {
	service *services.CatalogService
}

func NewProductController(service *services.CatalogService) *ProductController {
	return &ProductController{service: service}
}

// listQuery is the raw query string of GET /api/products.
type listQuery struct {
	Flavor     string `json:"flavor"`
	MinPrice   string `json:"minPrice" validate:"nullable,numeric"`
	MaxPrice   string `json:"maxPrice" validate:"nullable,numeric"`
	Discount   string `json:"discount"`
	Popularity string `json:"popularity"`
}

func (q listQuery) filter() services.ListFilter {
	f := services.ListFilter{
		Flavor:           q.Flavor,
		OnlyDiscounted:   q.Discount == "true",
		ByPopularityDesc: q.Popularity == "desc",
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(q.MinPrice), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(q.MaxPrice), 64); err == nil {
		f.MaxPrice = &v
	}
	return f
}

// Index lists products with their final price.
//
//	GET /api/products?flavor=mango&minPrice=10&maxPrice=50&discount=true&popularity=desc
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := listQuery{
		Flavor:     v.Get("flavor"),
		MinPrice:   v.Get("minPrice"),
		MaxPrice:   v.Get("maxPrice"),
		Discount:   v.Get("discount"),
		Popularity: v.Get("popularity"),
	}
	if errs := validate.Struct(q); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	products, err := c.service.Products(r.Context(), q.filter())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list products failed", "error", err)
		response.ServerError(w)
		return
	}
	response.List[models.PricedProduct](w, products)
}

// Show returns one product by slug.
//
//	GET /api/products/{slug}
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := c.service.Product(r.Context(), slug)
	if errors.Is(err, services.ErrProductNotFound) {
		response.NotFound(w)
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("show product failed", "slug", slug, "error", err)
		response.ServerError(w)
		return
	}
	response.Success(w, product)
}
