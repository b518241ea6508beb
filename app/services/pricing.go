// Package services holds the shop's domain logic: the price resolver, the
// discount reference reconciler and the catalog read service built on them.
package services

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/pkg/metrics"
	"github.com/shashiranjanraj/minimalshop/pkg/workerpool"
)

var hundred = decimal.NewFromInt(100)

// ResolvePrice returns p's effective price after applying discounts in the
// order given. Each applicable discount works on the running price, which is
// floored at zero and rounded half away from zero to cents after every step,
// so order matters. A zero asOf means now.
//
// Inactive, out-of-window and malformed discounts are ignored. The result is
// never negative and ResolvePrice never panics.
func ResolvePrice(p models.Product, discounts []models.Discount, asOf time.Time) float64 {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return 0
	}

	price := decimal.NewFromFloat(p.Price)
	applied := false
	for _, d := range discounts {
		if !Applies(p, d, asOf) {
			continue
		}
		price = applyDiscount(price, d)
		applied = true
	}

	if !applied {
		return p.Price
	}
	return price.InexactFloat64()
}

// Applies reports whether d takes part in pricing p at asOf. Targeting is
// (empty targets or p listed) AND (no category or p's category).
func Applies(p models.Product, d models.Discount, asOf time.Time) bool {
	if !d.Active || !wellFormed(d) || !d.InWindow(asOf) {
		return false
	}
	if d.Category != "" && d.Category != p.Category {
		return false
	}
	if len(d.ProductIDs) == 0 {
		return true
	}
	for _, id := range d.ProductIDs {
		if id == p.ID {
			return true
		}
	}
	return false
}

func wellFormed(d models.Discount) bool {
	if !d.Kind.Valid() || !d.WindowValid() {
		return false
	}
	return !math.IsNaN(d.Value) && !math.IsInf(d.Value, 0) && d.Value >= 0
}

func applyDiscount(price decimal.Decimal, d models.Discount) decimal.Decimal {
	v := decimal.NewFromFloat(d.Value)

	switch d.Kind {
	case models.KindPercent:
		if v.GreaterThan(hundred) {
			v = hundred
		}
		price = price.Mul(hundred.Sub(v)).Div(hundred)
	case models.KindAmount:
		price = price.Sub(v)
	}

	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Round(2)
}

// Price decorates p with its resolved price.
func Price(p models.Product, discounts []models.Discount, asOf time.Time) models.PricedProduct {
	return models.PricedProduct{Product: p, PriceFinal: ResolvePrice(p, discounts, asOf)}
}

// PriceAll prices every product against the same discount list, keeping
// input order. With a pool the work is split across its workers.
func PriceAll(ctx context.Context, products []models.Product, discounts []models.Discount, asOf time.Time, pool *workerpool.Pool) ([]models.PricedProduct, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	out := make([]models.PricedProduct, len(products))

	if pool == nil || len(products) < 2 {
		defer metrics.ObservePricing("sequential", time.Now())
		for i, p := range products {
			out[i] = Price(p, discounts, asOf)
		}
		return out, nil
	}

	defer metrics.ObservePricing("pool", time.Now())
	err := pool.Each(ctx, len(products), func(i int) {
		out[i] = Price(products[i], discounts, asOf)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
