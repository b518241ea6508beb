package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/repositories"
	"github.com/shashiranjanraj/minimalshop/pkg/collection"
	"github.com/shashiranjanraj/minimalshop/pkg/workerpool"
)

type catalogFixture struct {
	svc       *CatalogService
	catalog   *repositories.MemoryCatalog
	discounts *repositories.MemoryDiscounts
	bySlug    map[string]models.Product
}

// newCatalogFixture stores four products and a 10% discount on the two
// mango products.
func newCatalogFixture(t *testing.T) catalogFixture {
	t.Helper()
	catalog := repositories.NewMemoryCatalog()
	discounts := repositories.NewMemoryDiscounts()

	products := seedCatalog(t, catalog,
		models.Product{Name: "Mango Lassi", Slug: "mango-lassi", Category: "drinks", Price: 40, Popularity: 7, Flavors: []string{"mango"}},
		models.Product{Name: "Mango Kulfi", Slug: "mango-kulfi", Category: "desserts", Price: 60, Popularity: 9, Flavors: []string{"mango", "pista"}},
		models.Product{Name: "Masala Chai", Slug: "masala-chai", Category: "drinks", Price: 20, Popularity: 3, Flavors: []string{"ginger"}},
		models.Product{Name: "Rose Falooda", Slug: "rose-falooda", Category: "desserts", Price: 80, Popularity: 5, Flavors: []string{"rose"}},
	)
	bySlug := make(map[string]models.Product, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p
	}
	seedDiscount(t, discounts, models.Discount{
		Kind:       models.KindPercent,
		Value:      10,
		ProductIDs: []string{bySlug["mango-lassi"].ID, bySlug["mango-kulfi"].ID},
	})

	pool := workerpool.New(2)
	t.Cleanup(pool.Shutdown)

	svc := NewCatalogService(catalog, discounts, pool, 0)
	svc.now = func() time.Time { return asOf }
	return catalogFixture{svc: svc, catalog: catalog, discounts: discounts, bySlug: bySlug}
}

func slugs(list []models.PricedProduct) []string {
	return collection.Map(list, func(p models.PricedProduct) string { return p.Slug })
}

func ptr(v float64) *float64 { return &v }

func TestProductsPricesEveryProduct(t *testing.T) {
	f := newCatalogFixture(t)

	list, err := f.svc.Products(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 4)

	final := map[string]float64{}
	for _, p := range list {
		final[p.Slug] = p.PriceFinal
	}
	assert.Equal(t, 36.0, final["mango-lassi"])
	assert.Equal(t, 54.0, final["mango-kulfi"])
	assert.Equal(t, 20.0, final["masala-chai"])
	assert.Equal(t, 80.0, final["rose-falooda"])
}

func TestProductsFilters(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"flavor", ListFilter{Flavor: "mango"}, []string{"mango-lassi", "mango-kulfi"}},
		{"min on final price", ListFilter{MinPrice: ptr(54)}, []string{"mango-kulfi", "rose-falooda"}},
		{"max on final price", ListFilter{MaxPrice: ptr(36)}, []string{"mango-lassi", "masala-chai"}},
		{"discounted", ListFilter{OnlyDiscounted: true}, []string{"mango-lassi", "mango-kulfi"}},
		{"popularity", ListFilter{ByPopularityDesc: true}, []string{"mango-kulfi", "mango-lassi", "rose-falooda", "masala-chai"}},
		{"combined", ListFilter{Flavor: "mango", MaxPrice: ptr(50), ByPopularityDesc: true}, []string{"mango-lassi"}},
		{"no match", ListFilter{Flavor: "durian"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := f.svc.Products(ctx, tc.filter)
			require.NoError(t, err)
			if tc.filter.ByPopularityDesc {
				assert.Equal(t, tc.want, slugs(list))
				return
			}
			assert.ElementsMatch(t, tc.want, slugs(list))
		})
	}
}

func TestProductBySlug(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	p, err := f.svc.Product(ctx, "mango-kulfi")
	require.NoError(t, err)
	assert.Equal(t, 60.0, p.Price)
	assert.Equal(t, 54.0, p.PriceFinal)
	assert.True(t, p.Discounted())

	_, err = f.svc.Product(ctx, "no-such-thing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDiscountsNewestFirst(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	old := models.Discount{Kind: models.KindAmount, Value: 1, Active: true, CreatedAt: older}
	require.NoError(t, f.discounts.Upsert(ctx, &old))

	list, err := f.svc.Discounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, old.ID, list[1].ID)
}

func TestSeedStatusCountsInvalidTargets(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	seedDiscount(t, f.discounts, models.Discount{Kind: models.KindAmount, Value: 5, ProductIDs: []string{"rose-falooda"}})
	seedDiscount(t, f.discounts, models.Discount{Kind: models.KindAmount, Value: 6, ProductIDs: []string{primitive.NewObjectID().Hex()}})
	seedDiscount(t, f.discounts, models.Discount{Kind: models.KindAmount, Value: 7, Category: "drinks"})

	status, err := f.svc.SeedStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedStatus{Products: 4, Discounts: 4, DiscountsWithInvalidProductIDs: 2}, status)

	_, err = NewReconciler(f.catalog, f.discounts).Run(ctx)
	require.NoError(t, err)

	status, err = f.svc.SeedStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.DiscountsWithInvalidProductIDs)
}
