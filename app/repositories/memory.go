package repositories

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/minimalshop/app/models"
)

// MemoryCatalog is a CatalogStore held in process memory.
type MemoryCatalog struct {
	mu    sync.RWMutex
	byID  map[string]models.Product
	order []string
	now   func() time.Time
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{byID: map[string]models.Product{}, now: time.Now}
}

func (s *MemoryCatalog) List(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.byID[id]))
	}
	return out, nil
}

func (s *MemoryCatalog) Refs(ctx context.Context) ([]models.ProductRef, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]models.ProductRef, len(list))
	for i, p := range list {
		refs[i] = p.Ref()
	}
	return refs, nil
}

func (s *MemoryCatalog) Get(_ context.Context, id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return clone(p), nil
}

func (s *MemoryCatalog) GetBySlug(_ context.Context, slug string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if p := s.byID[id]; p.Slug == slug {
			return clone(p), nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (s *MemoryCatalog) UpsertBySlug(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, id := range s.order {
		if existing := s.byID[id]; existing.Slug == p.Slug {
			p.ID = id
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = now
			s.byID[id] = clone(*p)
			return nil
		}
	}

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	s.byID[p.ID] = clone(*p)
	s.order = append(s.order, p.ID)
	return nil
}

// Delete removes a product, leaving any discount targets pointing at it
// dangling.
func (s *MemoryCatalog) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(p models.Product) models.Product {
	p.Flavors = append([]string(nil), p.Flavors...)
	p.Variants = append([]models.Variant(nil), p.Variants...)
	return p
}

// MemoryDiscounts is a DiscountStore held in process memory.
type MemoryDiscounts struct {
	mu   sync.RWMutex
	byID map[string]models.Discount
	now  func() time.Time
}

func NewMemoryDiscounts() *MemoryDiscounts {
	return &MemoryDiscounts{byID: map[string]models.Discount{}, now: time.Now}
}

func (s *MemoryDiscounts) List(_ context.Context) ([]models.Discount, error) {
	s.mu.RLock()
	out := make([]models.Discount, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, cloneDiscount(d))
	}
	s.mu.RUnlock()

	newestFirst(out)
	return out, nil
}

func (s *MemoryDiscounts) Get(_ context.Context, id string) (models.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return models.Discount{}, ErrNotFound
	}
	return cloneDiscount(d), nil
}

func (s *MemoryDiscounts) UpdateTargets(_ context.Context, id string, targets []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	d.ProductIDs = append([]string{}, targets...)
	d.UpdatedAt = s.now()
	s.byID[id] = d
	return nil
}

func (s *MemoryDiscounts) Upsert(_ context.Context, d *models.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, existing := range s.byID {
		if sameNaturalKey(existing, *d) {
			existing.Active = d.Active
			existing.ProductIDs = append([]string{}, d.ProductIDs...)
			existing.UpdatedAt = now
			s.byID[id] = existing
			*d = cloneDiscount(existing)
			return nil
		}
	}

	// Insert keeps a caller-provided id so tests can plant stale records.
	if d.ID == "" {
		d.ID = primitive.NewObjectID().Hex()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	s.byID[d.ID] = cloneDiscount(*d)
	return nil
}

func sameNaturalKey(a, b models.Discount) bool {
	return a.Kind == b.Kind && a.Value == b.Value && a.Category == b.Category &&
		sameInstant(a.StartsAt, b.StartsAt) && sameInstant(a.EndsAt, b.EndsAt)
}

func cloneDiscount(d models.Discount) models.Discount {
	if d.ProductIDs != nil {
		d.ProductIDs = append([]string{}, d.ProductIDs...)
	}
	return d
}
