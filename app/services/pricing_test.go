package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/pkg/workerpool"
)

var asOf = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func percent(v float64) models.Discount {
	return models.Discount{Kind: models.KindPercent, Value: v, Active: true}
}

func amount(v float64) models.Discount {
	return models.Discount{Kind: models.KindAmount, Value: v, Active: true}
}

func TestResolvePriceExamples(t *testing.T) {
	cases := []struct {
		name      string
		base      float64
		discounts []models.Discount
		want      float64
	}{
		{"no discounts", 12.34, nil, 12.34},
		{"ten percent", 20, []models.Discount{percent(10)}, 18},
		{"amount floors at zero", 5, []models.Discount{amount(20)}, 0},
		{"percent then amount", 100, []models.Discount{percent(10), amount(5)}, 85},
		{"amount then percent", 100, []models.Discount{amount(5), percent(10)}, 85.5},
		{"percent over 100 clamps", 40, []models.Discount{percent(150)}, 0},
		{"rounds half away from zero each step", 10.05, []models.Discount{percent(50)}, 5.03},
		{"rounding compounds", 0.99, []models.Discount{percent(50), percent(50)}, 0.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := models.Product{ID: "p1", Price: tc.base}
			assert.Equal(t, tc.want, ResolvePrice(p, tc.discounts, asOf))
		})
	}
}

func TestResolvePriceIgnoresInactiveAndOutOfWindow(t *testing.T) {
	before := asOf.Add(-48 * time.Hour)
	yesterday := asOf.Add(-24 * time.Hour)
	tomorrow := asOf.Add(24 * time.Hour)

	inactive := percent(50)
	inactive.Active = false
	expired := percent(50)
	expired.StartsAt, expired.EndsAt = &before, &yesterday
	future := amount(3)
	future.StartsAt = &tomorrow
	inverted := percent(50)
	inverted.StartsAt, inverted.EndsAt = &tomorrow, &yesterday
	unknown := models.Discount{Kind: "bogo", Value: 1, Active: true}
	negative := amount(-4)
	nan := amount(math.NaN())

	ignored := []models.Discount{inactive, expired, future, inverted, unknown, negative, nan}
	p := models.Product{ID: "p1", Price: 10}

	assert.Equal(t, 10.0, ResolvePrice(p, ignored, asOf))
	for i := range ignored {
		mixed := append([]models.Discount{percent(10)}, ignored[i:]...)
		mixed = append(mixed, ignored[:i]...)
		assert.Equal(t, 9.0, ResolvePrice(p, mixed, asOf))
	}
}

func TestResolvePriceWindowIsInclusive(t *testing.T) {
	d := percent(10)
	d.StartsAt, d.EndsAt = &asOf, &asOf

	assert.Equal(t, 9.0, ResolvePrice(models.Product{Price: 10}, []models.Discount{d}, asOf))
}

func TestResolvePriceTargeting(t *testing.T) {
	chips := models.Product{ID: "aaaaaaaaaaaaaaaaaaaaaaaa", Category: "snacks", Price: 10}
	chai := models.Product{ID: "bbbbbbbbbbbbbbbbbbbbbbbb", Category: "drinks", Price: 10}

	listed := percent(10)
	listed.ProductIDs = []string{chips.ID}
	snacksOnly := percent(10)
	snacksOnly.Category = "snacks"
	listedButWrongCategory := percent(10)
	listedButWrongCategory.ProductIDs = []string{chai.ID}
	listedButWrongCategory.Category = "snacks"

	assert.Equal(t, 9.0, ResolvePrice(chips, []models.Discount{listed}, asOf))
	assert.Equal(t, 10.0, ResolvePrice(chai, []models.Discount{listed}, asOf))
	assert.Equal(t, 9.0, ResolvePrice(chips, []models.Discount{snacksOnly}, asOf))
	assert.Equal(t, 10.0, ResolvePrice(chai, []models.Discount{snacksOnly}, asOf))
	assert.Equal(t, 10.0, ResolvePrice(chai, []models.Discount{listedButWrongCategory}, asOf))

	// empty targets and no category is a wildcard
	assert.Equal(t, 9.0, ResolvePrice(chai, []models.Discount{percent(10)}, asOf))
}

func TestResolvePriceNeverNegative(t *testing.T) {
	discounts := []models.Discount{amount(3), percent(99.99), amount(0.01), percent(100), amount(7)}
	for _, base := range []float64{0, 0.01, 1, 2.5, 3, 999.99} {
		got := ResolvePrice(models.Product{Price: base}, discounts, asOf)
		assert.GreaterOrEqual(t, got, 0.0, "base %v", base)
	}

	assert.Equal(t, 0.0, ResolvePrice(models.Product{Price: math.Inf(1)}, nil, asOf))
	assert.Equal(t, 0.0, ResolvePrice(models.Product{Price: -5}, nil, asOf))
}

func TestResolvePriceDefaultsToNow(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	d := percent(10)
	d.EndsAt = &past

	assert.Equal(t, 10.0, ResolvePrice(models.Product{Price: 10}, []models.Discount{d}, time.Time{}))
}

func TestPriceAllKeepsOrder(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	products := make([]models.Product, 50)
	for i := range products {
		products[i] = models.Product{ID: string(rune('a' + i%26)), Price: float64(i + 1)}
	}
	discounts := []models.Discount{amount(1)}

	pooled, err := PriceAll(context.Background(), products, discounts, asOf, pool)
	require.NoError(t, err)
	sequential, err := PriceAll(context.Background(), products, discounts, asOf, nil)
	require.NoError(t, err)

	require.Len(t, pooled, 50)
	assert.Equal(t, sequential, pooled)
	for i, p := range pooled {
		assert.Equal(t, float64(i), p.PriceFinal)
	}
}

func TestPriceAllOnClosedPool(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	_, err := PriceAll(context.Background(), make([]models.Product, 3), nil, asOf, pool)
	assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
}
