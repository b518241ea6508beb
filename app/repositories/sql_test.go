package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/pkg/database"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite", "file::memory:")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Discount{}))
	return db
}

func TestSQLCatalogUpsertAndRefs(t *testing.T) {
	ctx := context.Background()
	s := NewSQLCatalog(openSQLite(t))

	p := &models.Product{Name: "Chai", Slug: "chai", SKU: "CH-1", Category: "drinks", Price: 3, Flavors: []string{"masala"}}
	require.NoError(t, s.UpsertBySlug(ctx, p))
	id := p.ID
	require.Len(t, id, 24)

	p2 := &models.Product{Name: "Chai Latte", Slug: "chai", Category: "drinks", Price: 4}
	require.NoError(t, s.UpsertBySlug(ctx, p2))
	assert.Equal(t, id, p2.ID)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Chai Latte", got.Name)

	refs, err := s.Refs(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, models.ProductRef{ID: id, Slug: "chai", SKU: "", Category: "drinks"}, refs[0])

	_, err = s.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLDiscountsUpsertAndUpdateTargets(t *testing.T) {
	ctx := context.Background()
	s := NewSQLDiscounts(openSQLite(t))

	d := &models.Discount{Kind: models.KindPercent, Value: 10, Category: "snacks", Active: false, ProductIDs: []string{"legacy"}}
	require.NoError(t, s.Upsert(ctx, d))

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.Active, "explicit inactive survives the column default")

	require.NoError(t, s.UpdateTargets(ctx, d.ID, []string{"b", "c"}))
	got, _ = s.Get(ctx, d.ID)
	assert.Equal(t, []string{"b", "c"}, got.ProductIDs)

	again := &models.Discount{Kind: models.KindPercent, Value: 10, Category: "snacks", Active: true}
	require.NoError(t, s.Upsert(ctx, again))
	assert.Equal(t, d.ID, again.ID)

	assert.ErrorIs(t, s.UpdateTargets(ctx, "000000000000000000000000", nil), ErrNotFound)
}

func TestSQLDiscountsListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewSQLDiscounts(openSQLite(t))

	old := &models.Discount{Kind: models.KindAmount, Value: 1, Active: true, CreatedAt: time.Now().Add(-time.Hour)}
	fresh := &models.Discount{Kind: models.KindAmount, Value: 2, Active: true}
	require.NoError(t, s.Upsert(ctx, old))
	require.NoError(t, s.Upsert(ctx, fresh))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, fresh.ID, list[0].ID)
}
