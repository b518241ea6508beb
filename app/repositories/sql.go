package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/pkg/metrics"
)

// SQLCatalog is the CatalogStore over the products table. Ids are minted
// as ObjectID hex strings so every driver shares one id syntax.
type SQLCatalog struct {
	db *gorm.DB
}

func NewSQLCatalog(db *gorm.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

func (s *SQLCatalog) List(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("sql.products.select", time.Now())

	var list []models.Product
	if err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("repositories: list products: %w", err)
	}
	return list, nil
}

func (s *SQLCatalog) Refs(ctx context.Context) ([]models.ProductRef, error) {
	defer metrics.ObserveDBQuery("sql.products.refs", time.Now())

	var refs []models.ProductRef
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("id", "slug", "sku", "category").
		Order("created_at asc, id asc").
		Find(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: product refs: %w", err)
	}
	return refs, nil
}

func (s *SQLCatalog) Get(ctx context.Context, id string) (models.Product, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *SQLCatalog) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.first(ctx, "slug = ?", slug)
}

func (s *SQLCatalog) first(ctx context.Context, query string, arg string) (models.Product, error) {
	defer metrics.ObserveDBQuery("sql.products.first", time.Now())

	var p models.Product
	if err := s.db.WithContext(ctx).Where(query, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("repositories: find product: %w", err)
	}
	return p, nil
}

func (s *SQLCatalog) UpsertBySlug(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("sql.products.upsert", time.Now())

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		err := tx.Where("slug = ?", p.Slug).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if p.ID == "" {
				p.ID = primitive.NewObjectID().Hex()
			}
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("repositories: insert product %q: %w", p.Slug, err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("repositories: upsert product %q: %w", p.Slug, err)
		}

		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("repositories: update product %q: %w", p.Slug, err)
		}
		return nil
	})
}

// SQLDiscounts is the DiscountStore over the discounts table.
type SQLDiscounts struct {
	db *gorm.DB
}

func NewSQLDiscounts(db *gorm.DB) *SQLDiscounts {
	return &SQLDiscounts{db: db}
}

func (s *SQLDiscounts) List(ctx context.Context) ([]models.Discount, error) {
	defer metrics.ObserveDBQuery("sql.discounts.select", time.Now())

	var list []models.Discount
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("repositories: list discounts: %w", err)
	}
	return list, nil
}

func (s *SQLDiscounts) Get(ctx context.Context, id string) (models.Discount, error) {
	var d models.Discount
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Discount{}, ErrNotFound
		}
		return models.Discount{}, fmt.Errorf("repositories: get discount: %w", err)
	}
	return d, nil
}

func (s *SQLDiscounts) UpdateTargets(ctx context.Context, id string, targets []string) error {
	defer metrics.ObserveDBQuery("sql.discounts.update_targets", time.Now())

	// Model carries the serializer for product_ids.
	res := s.db.WithContext(ctx).Model(&models.Discount{ID: id}).
		Select("ProductIDs", "UpdatedAt").
		Updates(&models.Discount{ProductIDs: append([]string{}, targets...), UpdatedAt: time.Now()})
	if res.Error != nil {
		return fmt.Errorf("repositories: update discount %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLDiscounts) Upsert(ctx context.Context, d *models.Discount) error {
	defer metrics.ObserveDBQuery("sql.discounts.upsert", time.Now())

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("type = ? AND value = ? AND category = ?", d.Kind, d.Value, d.Category)
		q = whereInstant(q, "starts_at", d.StartsAt)
		q = whereInstant(q, "ends_at", d.EndsAt)

		var existing models.Discount
		err := q.First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if d.ID == "" {
				d.ID = primitive.NewObjectID().Hex()
			}
			// Select keeps an explicit Active=false from being replaced by the column default.
			if err := tx.Select("*").Create(d).Error; err != nil {
				return fmt.Errorf("repositories: insert discount: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("repositories: upsert discount: %w", err)
		}

		existing.Active = d.Active
		existing.ProductIDs = append([]string{}, d.ProductIDs...)
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("repositories: update discount %s: %w", existing.ID, err)
		}
		*d = existing
		return nil
	})
}

func whereInstant(q *gorm.DB, column string, t *time.Time) *gorm.DB {
	if t == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *t)
}
