package models_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/minimalshop/app/models"
)

func TestDiscountValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	cases := []struct {
		name string
		d    models.Discount
		ok   bool
	}{
		{"percent", models.Discount{Kind: models.KindPercent, Value: 10}, true},
		{"amount zero", models.Discount{Kind: models.KindAmount, Value: 0}, true},
		{"unknown kind", models.Discount{Kind: "bogo", Value: 1}, false},
		{"negative", models.Discount{Kind: models.KindAmount, Value: -1}, false},
		{"nan", models.Discount{Kind: models.KindAmount, Value: math.NaN()}, false},
		{"percent over 100", models.Discount{Kind: models.KindPercent, Value: 120}, false},
		{"amount over 100", models.Discount{Kind: models.KindAmount, Value: 120}, true},
		{"ordered window", models.Discount{Kind: models.KindPercent, Value: 5, StartsAt: &now, EndsAt: &later}, true},
		{"inverted window", models.Discount{Kind: models.KindPercent, Value: 5, StartsAt: &later, EndsAt: &now}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, models.ErrInvalidDiscount), "got %v", err)
		})
	}
}

func TestDiscountInWindowIsInclusive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	d := models.Discount{StartsAt: &start, EndsAt: &end}

	assert.True(t, d.InWindow(start))
	assert.True(t, d.InWindow(end))
	assert.False(t, d.InWindow(start.Add(-time.Second)))
	assert.False(t, d.InWindow(end.Add(time.Second)))

	open := models.Discount{StartsAt: &start}
	assert.True(t, open.InWindow(end.AddDate(10, 0, 0)))
	assert.True(t, models.Discount{}.InWindow(time.Time{}))
}

func TestPricedProductDiscounted(t *testing.T) {
	p := models.PricedProduct{Product: models.Product{Price: 10}, PriceFinal: 9.5}
	assert.True(t, p.Discounted())
	p.PriceFinal = 10
	assert.False(t, p.Discounted())
}
