package seeders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/storage"
	"github.com/shashiranjanraj/minimalshop/pkg/validate"
)

func init() {
	Register("catalog", SeedCatalog)
}

type variantRow struct {
	Name  string `json:"name"  validate:"required"`
	Stock any    `json:"stock" validate:"nullable,integer,gte=0"`
}

type productRow struct {
	Name       string       `json:"name"       validate:"required"`
	Slug       string       `json:"slug"`
	SKU        string       `json:"sku"`
	Category   string       `json:"category"`
	Price      any          `json:"price"      validate:"required,numeric,gte=0"`
	Popularity any          `json:"popularity" validate:"nullable,numeric"`
	Flavors    []string     `json:"flavors"`
	Variants   []variantRow `json:"variants"`
	ImageURL   string       `json:"imageUrl"`
	SEO        models.SEO   `json:"seo"`
}

type discountRow struct {
	Type       string `json:"type"       validate:"required,in=percent,amount"`
	Value      any    `json:"value"      validate:"required,numeric,gte=0"`
	ProductIDs any    `json:"productIds"`
	Category   string `json:"category"`
	Active     *bool  `json:"active"`
	StartsAt   string `json:"startsAt"   validate:"nullable,date"`
	EndsAt     string `json:"endsAt"     validate:"nullable,date"`
}

// Rejected is a seed row that was skipped.
type Rejected struct {
	File   string
	Index  int
	Reason string
}

// Summary is the outcome of one catalog import.
type Summary struct {
	Products  int
	Discounts int
	Rejected  []Rejected
	Reconcile services.Report
}

// SeedCatalog imports products.json and discounts.json and reconciles the
// discount targets.
func SeedCatalog(ctx context.Context, env Env) error {
	sum, err := ImportCatalog(ctx, env)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "  products upserted:  %d\n", sum.Products)
	fmt.Fprintf(env.Out, "  discounts upserted: %d\n", sum.Discounts)
	for _, r := range sum.Rejected {
		fmt.Fprintf(env.Out, "  skipped %s[%d]: %s\n", r.File, r.Index, r.Reason)
	}
	fmt.Fprintf(env.Out, "  discounts updated:  %d\n", sum.Reconcile.Updated)
	fmt.Fprintf(env.Out, "  productIds added from legacy references: %d\n", sum.Reconcile.InferredLegacy)
	fmt.Fprintf(env.Out, "  productIds added by category inference:  %d\n", sum.Reconcile.InferredCategory)
	return nil
}

// ImportCatalog upserts products by slug, then discounts by natural key,
// then runs the reconciler so legacy targets become product ids. Invalid
// rows are skipped and listed in the summary. A missing or empty file
// imports nothing.
func ImportCatalog(ctx context.Context, env Env) (Summary, error) {
	var sum Summary
	log := logger.WithCtx(ctx)

	products, err := readRows[productRow](ctx, env.Source, path.Join(env.Dir, "products.json"))
	if err != nil {
		return sum, err
	}
	for i, row := range products {
		p, reason := row.model()
		if reason != "" {
			sum.Rejected = append(sum.Rejected, Rejected{File: "products.json", Index: i, Reason: reason})
			log.Warn("seed: product skipped", "index", i, "reason", reason)
			continue
		}
		if err := env.Catalog.UpsertBySlug(ctx, &p); err != nil {
			return sum, fmt.Errorf("seed: upsert product %q: %w", p.Slug, err)
		}
		sum.Products++
	}

	discounts, err := readRows[discountRow](ctx, env.Source, path.Join(env.Dir, "discounts.json"))
	if err != nil {
		return sum, err
	}
	for i, row := range discounts {
		d, reason := row.model()
		if reason != "" {
			sum.Rejected = append(sum.Rejected, Rejected{File: "discounts.json", Index: i, Reason: reason})
			log.Warn("seed: discount skipped", "index", i, "reason", reason)
			continue
		}
		if err := env.Discounts.Upsert(ctx, &d); err != nil {
			return sum, fmt.Errorf("seed: upsert discount %d: %w", i, err)
		}
		sum.Discounts++
	}

	sum.Reconcile, err = services.NewReconciler(env.Catalog, env.Discounts).Run(ctx)
	if err != nil {
		return sum, fmt.Errorf("seed: %w", err)
	}
	log.Info("seed: catalog imported",
		"products", sum.Products, "discounts", sum.Discounts, "rejected", len(sum.Rejected))
	return sum, nil
}

func readRows[T any](ctx context.Context, disk storage.Disk, file string) ([]T, error) {
	raw, err := disk.Get(ctx, file)
	if errors.Is(err, storage.ErrNotExist) {
		logger.WithCtx(ctx).Warn("seed: file missing", "file", file)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", file, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", file, err)
	}
	return rows, nil
}

func (row productRow) model() (models.Product, string) {
	if errs := validate.Struct(row); validate.HasErrors(errs) {
		return models.Product{}, errs.Error()
	}

	slug := row.Slug
	if slug == "" {
		slug = row.Name
	}
	slug = Slugify(slug)
	if slug == "" {
		return models.Product{}, "name produces an empty slug"
	}

	p := models.Product{
		Name:     row.Name,
		Slug:     slug,
		SKU:      strings.TrimSpace(row.SKU),
		Category: row.Category,
		Flavors:  row.Flavors,
		ImageURL: row.ImageURL,
		SEO:      row.SEO,
	}
	p.Price, _ = toFloat(row.Price)
	p.Popularity, _ = toFloat(row.Popularity)
	if p.Flavors == nil {
		p.Flavors = []string{}
	}

	p.Variants = make([]models.Variant, 0, len(row.Variants))
	for i, v := range row.Variants {
		if errs := validate.Struct(v); validate.HasErrors(errs) {
			return models.Product{}, fmt.Sprintf("variant %d: %s", i, errs.Error())
		}
		stock, _ := toFloat(v.Stock)
		p.Variants = append(p.Variants, models.Variant{Name: v.Name, Stock: int(stock)})
	}
	return p, ""
}

func (row discountRow) model() (models.Discount, string) {
	if errs := validate.Struct(row); validate.HasErrors(errs) {
		return models.Discount{}, errs.Error()
	}

	d := models.Discount{
		Kind:       models.DiscountKind(row.Type),
		Category:   strings.TrimSpace(row.Category),
		Active:     row.Active == nil || *row.Active,
		ProductIDs: []string{},
	}
	d.Value, _ = toFloat(row.Value)

	list, _ := row.ProductIDs.([]any)
	for _, raw := range list {
		if ref := targetString(raw); ref != "" {
			d.ProductIDs = append(d.ProductIDs, ref)
		}
	}
	if row.StartsAt != "" {
		t, _ := validate.ParseDate(row.StartsAt)
		d.StartsAt = &t
	}
	if row.EndsAt != "" {
		t, _ := validate.ParseDate(row.EndsAt)
		d.EndsAt = &t
	}

	if err := d.Validate(); err != nil {
		return models.Discount{}, err.Error()
	}
	return d, ""
}

// targetString flattens a JSON target: strings and numbers as text,
// extended-JSON {"$oid": "..."} as its hex. Anything else is dropped.
func targetString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any:
		if oid, ok := v["$oid"].(string); ok {
			return oid
		}
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Slugify lowercases s, collapses every run of characters outside a-z and
// 0-9 into one hyphen and trims leading and trailing hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
