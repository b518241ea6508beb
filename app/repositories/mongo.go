package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/pkg/metrics"
)

const (
	productsCollection  = "products"
	discountsCollection = "discounts"
)

type productDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Slug       string             `bson:"slug"`
	SKU        string             `bson:"sku,omitempty"`
	Category   string             `bson:"category,omitempty"`
	Price      float64            `bson:"price"`
	Popularity float64            `bson:"popularity"`
	Flavors    []string           `bson:"flavors"`
	Variants   []models.Variant   `bson:"variants"`
	ImageURL   string             `bson:"imageUrl,omitempty"`
	SEO        models.SEO         `bson:"seo"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d productDoc) model() models.Product {
	return models.Product{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Slug:       d.Slug,
		SKU:        d.SKU,
		Category:   d.Category,
		Price:      d.Price,
		Popularity: d.Popularity,
		Flavors:    d.Flavors,
		Variants:   d.Variants,
		ImageURL:   d.ImageURL,
		SEO:        d.SEO,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoCatalog is the CatalogStore over the products collection.
type MongoCatalog struct {
	col *mongo.Collection
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{col: db.Collection(productsCollection)}
}

// EnsureIndexes creates the unique slug index.
func (s *MongoCatalog) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoCatalog) List(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("mongo.products.find", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repositories: list products: %w", err)
	}

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("repositories: list products: %w", err)
	}

	out := make([]models.Product, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (s *MongoCatalog) Refs(ctx context.Context) ([]models.ProductRef, error) {
	defer metrics.ObserveDBQuery("mongo.products.refs", time.Now())

	opts := options.Find().
		SetProjection(bson.D{{Key: "slug", Value: 1}, {Key: "sku", Value: 1}, {Key: "category", Value: 1}}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repositories: product refs: %w", err)
	}

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("repositories: product refs: %w", err)
	}

	refs := make([]models.ProductRef, len(docs))
	for i, d := range docs {
		refs[i] = models.ProductRef{ID: d.ID.Hex(), Slug: d.Slug, SKU: d.SKU, Category: d.Category}
	}
	return refs, nil
}

func (s *MongoCatalog) Get(ctx context.Context, id string) (models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, ErrNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *MongoCatalog) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (s *MongoCatalog) findOne(ctx context.Context, filter bson.D) (models.Product, error) {
	defer metrics.ObserveDBQuery("mongo.products.find_one", time.Now())

	var doc productDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("repositories: find product: %w", err)
	}
	return doc.model(), nil
}

func (s *MongoCatalog) UpsertBySlug(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("mongo.products.upsert", time.Now())

	now := time.Now().UTC()
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: p.Name},
			{Key: "sku", Value: p.SKU},
			{Key: "category", Value: p.Category},
			{Key: "price", Value: p.Price},
			{Key: "popularity", Value: p.Popularity},
			{Key: "flavors", Value: nonNil(p.Flavors)},
			{Key: "variants", Value: nonNilVariants(p.Variants)},
			{Key: "imageUrl", Value: p.ImageURL},
			{Key: "seo", Value: p.SEO},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc productDoc
	err := s.col.FindOneAndUpdate(ctx, bson.D{{Key: "slug", Value: p.Slug}}, update, opts).Decode(&doc)
	if err != nil {
		return fmt.Errorf("repositories: upsert product %q: %w", p.Slug, err)
	}
	*p = doc.model()
	return nil
}

type discountDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Type       string             `bson:"type"`
	Value      float64            `bson:"value"`
	ProductIDs []bson.RawValue    `bson:"productIds"`
	Category   *string            `bson:"category"`
	Active     *bool              `bson:"active"`
	StartsAt   *time.Time         `bson:"startsAt"`
	EndsAt     *time.Time         `bson:"endsAt"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d discountDoc) model() models.Discount {
	m := models.Discount{
		ID:         d.ID.Hex(),
		Kind:       models.DiscountKind(d.Type),
		Value:      d.Value,
		ProductIDs: make([]string, 0, len(d.ProductIDs)),
		Active:     d.Active == nil || *d.Active,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.Category != nil {
		m.Category = *d.Category
	}
	for _, rv := range d.ProductIDs {
		m.ProductIDs = append(m.ProductIDs, rawTarget(rv))
	}
	return m
}

// rawTarget renders a stored target as the string the reconciler sees.
// Canonical ids are ObjectIDs; legacy entries are usually strings but hand
// edits have left numbers and other types behind.
func rawTarget(rv bson.RawValue) string {
	switch rv.Type {
	case bsontype.ObjectID:
		return rv.ObjectID().Hex()
	case bsontype.String:
		return rv.StringValue()
	case bsontype.Int32:
		return strconv.FormatInt(int64(rv.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(rv.Int64(), 10)
	case bsontype.Double:
		return strconv.FormatFloat(rv.Double(), 'f', -1, 64)
	default:
		return rv.String()
	}
}

// storedTargets writes canonical ids as ObjectIDs and anything else as-is.
func storedTargets(targets []string) bson.A {
	out := make(bson.A, 0, len(targets))
	for _, t := range targets {
		if oid, err := primitive.ObjectIDFromHex(t); err == nil {
			out = append(out, oid)
			continue
		}
		out = append(out, t)
	}
	return out
}

// MongoDiscounts is the DiscountStore over the discounts collection.
type MongoDiscounts struct {
	col *mongo.Collection
}

func NewMongoDiscounts(db *mongo.Database) *MongoDiscounts {
	return &MongoDiscounts{col: db.Collection(discountsCollection)}
}

func (s *MongoDiscounts) List(ctx context.Context) ([]models.Discount, error) {
	defer metrics.ObserveDBQuery("mongo.discounts.find", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repositories: list discounts: %w", err)
	}

	var docs []discountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("repositories: list discounts: %w", err)
	}

	out := make([]models.Discount, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (s *MongoDiscounts) Get(ctx context.Context, id string) (models.Discount, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Discount{}, ErrNotFound
	}

	var doc discountDoc
	if err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Discount{}, ErrNotFound
		}
		return models.Discount{}, fmt.Errorf("repositories: get discount: %w", err)
	}
	return doc.model(), nil
}

func (s *MongoDiscounts) UpdateTargets(ctx context.Context, id string, targets []string) error {
	defer metrics.ObserveDBQuery("mongo.discounts.update_targets", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "productIds", Value: storedTargets(targets)},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("repositories: update discount %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDiscounts) Upsert(ctx context.Context, d *models.Discount) error {
	defer metrics.ObserveDBQuery("mongo.discounts.upsert", time.Now())

	var category any
	if d.Category != "" {
		category = d.Category
	}
	filter := bson.D{
		{Key: "type", Value: string(d.Kind)},
		{Key: "value", Value: d.Value},
		{Key: "category", Value: category},
		{Key: "startsAt", Value: d.StartsAt},
		{Key: "endsAt", Value: d.EndsAt},
	}

	now := time.Now().UTC()
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "active", Value: d.Active},
			{Key: "productIds", Value: storedTargets(d.ProductIDs)},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc discountDoc
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("repositories: upsert discount: %w", err)
	}
	*d = doc.model()
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilVariants(v []models.Variant) []models.Variant {
	if v == nil {
		return []models.Variant{}
	}
	return v
}
