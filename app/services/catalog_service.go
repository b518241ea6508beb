package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/repositories"
	"github.com/shashiranjanraj/minimalshop/pkg/cache"
	"github.com/shashiranjanraj/minimalshop/pkg/collection"
	"github.com/shashiranjanraj/minimalshop/pkg/event"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/workerpool"
)

// DiscountsCacheKey holds the cached discount list used for pricing.
const DiscountsCacheKey = "pricing:discounts"

// ErrProductNotFound is returned for an unknown slug.
var ErrProductNotFound = errors.New("product not found")

func init() {
	event.Listen(EventDiscountsReconciled, func(ctx context.Context, _ any) {
		if err := cache.Forget(ctx, DiscountsCacheKey); err != nil {
			logger.WithCtx(ctx).Warn("discount cache not invalidated", "error", err)
		}
	})
}

// ListFilter narrows and orders a product listing. Price bounds apply to
// the final, discounted price.
type ListFilter struct {
	Flavor           string
	MinPrice         *float64
	MaxPrice         *float64
	OnlyDiscounted   bool
	ByPopularityDesc bool
}

// SeedStatus summarises what the stores hold.
type SeedStatus struct {
	Products                       int `json:"products"`
	Discounts                      int `json:"discounts"`
	DiscountsWithInvalidProductIDs int `json:"discountsWithInvalidProductIds"`
}

// CatalogService answers read requests: products decorated with their
// final price, discounts and the seed status.
type CatalogService struct {
	catalog   repositories.CatalogStore
	discounts repositories.DiscountStore
	pool      *workerpool.Pool
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewCatalogService builds the service. pool may be nil; a zero cacheTTL
// reads discounts straight from the store without touching Redis.
func NewCatalogService(catalog repositories.CatalogStore, discounts repositories.DiscountStore, pool *workerpool.Pool, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		catalog:   catalog,
		discounts: discounts,
		pool:      pool,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Discounts returns every discount, newest first, which is also the order
// they are applied in when pricing.
func (s *CatalogService) Discounts(ctx context.Context) ([]models.Discount, error) {
	var list []models.Discount
	err := cache.Remember(ctx, DiscountsCacheKey, s.cacheTTL, &list, func() ([]models.Discount, error) {
		return s.discounts.List(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: load discounts: %w", err)
	}
	return list, nil
}

// Products lists products with their final prices after f is applied.
func (s *CatalogService) Products(ctx context.Context, f ListFilter) ([]models.PricedProduct, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	if f.Flavor != "" {
		products = collection.Filter(products, func(p models.Product) bool { return p.HasFlavor(f.Flavor) })
	}

	discounts, err := s.Discounts(ctx)
	if err != nil {
		return nil, err
	}

	priced, err := PriceAll(ctx, products, discounts, s.now(), s.pool)
	if err != nil {
		return nil, fmt.Errorf("catalog: price products: %w", err)
	}

	priced = collection.Filter(priced, func(p models.PricedProduct) bool {
		if f.MinPrice != nil && p.PriceFinal < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && p.PriceFinal > *f.MaxPrice {
			return false
		}
		return !f.OnlyDiscounted || p.Discounted()
	})
	if f.ByPopularityDesc {
		priced = collection.SortBy(priced, func(a, b models.PricedProduct) bool { return a.Popularity > b.Popularity })
	}
	return priced, nil
}

// Product returns one product by slug with its final price.
func (s *CatalogService) Product(ctx context.Context, slug string) (models.PricedProduct, error) {
	p, err := s.catalog.GetBySlug(ctx, slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.PricedProduct{}, ErrProductNotFound
	}
	if err != nil {
		return models.PricedProduct{}, fmt.Errorf("catalog: get %q: %w", slug, err)
	}

	discounts, err := s.Discounts(ctx)
	if err != nil {
		return models.PricedProduct{}, err
	}
	return Price(p, discounts, s.now()), nil
}

// SeedStatus counts products and discounts, and the discounts holding at
// least one target that is not an existing product id.
func (s *CatalogService) SeedStatus(ctx context.Context) (SeedStatus, error) {
	refs, err := s.catalog.Refs(ctx)
	if err != nil {
		return SeedStatus{}, fmt.Errorf("catalog: seed status: %w", err)
	}
	discounts, err := s.discounts.List(ctx)
	if err != nil {
		return SeedStatus{}, fmt.Errorf("catalog: seed status: %w", err)
	}

	known := NewTargetSet(collection.Map(refs, func(r models.ProductRef) string { return r.ID })...)
	invalid := collection.Filter(discounts, func(d models.Discount) bool {
		return collection.Contains(d.ProductIDs, func(id string) bool { return !known.Has(id) })
	})

	return SeedStatus{
		Products:                       len(refs),
		Discounts:                      len(discounts),
		DiscountsWithInvalidProductIDs: len(invalid),
	}, nil
}
