// Package repositories provides the catalog and discount stores. Three
// drivers implement the same interfaces: Mongo (the default), SQL through
// GORM and an in-memory store used by tests and demos.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/pkg/database"
	"github.com/shashiranjanraj/minimalshop/pkg/mongodb"
)

// ErrNotFound is returned when no product or discount matches.
var ErrNotFound = errors.New("repositories: not found")

// CatalogStore reads and seeds products.
type CatalogStore interface {
	// List returns every product, oldest first.
	List(ctx context.Context) ([]models.Product, error)
	// Refs returns the id/slug/SKU/category snapshot used for reconciliation.
	Refs(ctx context.Context) ([]models.ProductRef, error)
	Get(ctx context.Context, id string) (models.Product, error)
	GetBySlug(ctx context.Context, slug string) (models.Product, error)
	// UpsertBySlug inserts p or overwrites the product with the same slug.
	// p.ID is set to the stored product's id.
	UpsertBySlug(ctx context.Context, p *models.Product) error
}

// DiscountStore reads discounts and writes their targets.
type DiscountStore interface {
	// List returns every discount, newest first.
	List(ctx context.Context) ([]models.Discount, error)
	Get(ctx context.Context, id string) (models.Discount, error)
	// UpdateTargets replaces the product targets of one discount.
	UpdateTargets(ctx context.Context, id string, targets []string) error
	// Upsert matches on kind, value, category and window, then sets the
	// active flag and targets; otherwise it inserts. d.ID is set.
	Upsert(ctx context.Context, d *models.Discount) error
}

// Stores bundles the two stores of one driver.
type Stores struct {
	Driver    string
	Catalog   CatalogStore
	Discounts DiscountStore
	closer    func() error
}

// Close releases the driver's connection.
func (s *Stores) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

// Open connects the driver selected by STORE_DRIVER.
func Open(ctx context.Context) (*Stores, error) {
	driver := config.StoreDriver()

	switch driver {
	case "memory":
		return &Stores{Driver: driver, Catalog: NewMemoryCatalog(), Discounts: NewMemoryDiscounts()}, nil

	case "sql":
		db, err := database.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:    driver,
			Catalog:   NewSQLCatalog(db),
			Discounts: NewSQLDiscounts(db),
			closer:    func() error { return database.Close(db) },
		}, nil

	default:
		client, err := mongodb.Connect(ctx, config.MongoURI(), mongodb.Options{})
		if err != nil {
			return nil, err
		}
		db := client.Database(config.MongoDatabase())
		catalog := NewMongoCatalog(db)
		if err := catalog.EnsureIndexes(ctx); err != nil {
			_ = mongodb.Disconnect(client)
			return nil, fmt.Errorf("repositories: mongo indexes: %w", err)
		}
		return &Stores{
			Driver:    "mongo",
			Catalog:   catalog,
			Discounts: NewMongoDiscounts(db),
			closer:    func() error { return mongodb.Disconnect(client) },
		}, nil
	}
}

// sameInstant treats two nil bounds as equal.
func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// newestFirst orders discounts by creation time descending, id breaking ties.
func newestFirst(list []models.Discount) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}
