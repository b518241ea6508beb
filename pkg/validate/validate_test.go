package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/minimalshop/pkg/validate"
)

type discountRow struct {
	Type     string `json:"type"     validate:"required,in=percent,amount"`
	Value    any    `json:"value"    validate:"required,numeric,gte=0"`
	Category string `json:"category" validate:"nullable,alpha_dash,max=40"`
	StartsAt string `json:"startsAt" validate:"nullable,date"`
}

func TestValidRow(t *testing.T) {
	errs := validate.Struct(discountRow{Type: "percent", Value: 10.0, StartsAt: "2026-01-01"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestZeroInsideAnyIsPresent(t *testing.T) {
	errs := validate.Struct(discountRow{Type: "amount", Value: 0.0})
	assert.Empty(t, errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(discountRow{})
	assert.Contains(t, errs, "type")
	assert.Contains(t, errs, "value")
	assert.NotContains(t, errs, "category")
}

func TestInRule(t *testing.T) {
	errs := validate.Struct(discountRow{Type: "bogo", Value: 1})
	assert.Equal(t, "The selected type is invalid.", errs["type"])
}

func TestNumericAcceptsStringsAndRejectsWords(t *testing.T) {
	assert.Empty(t, validate.Struct(discountRow{Type: "amount", Value: "2.50"}))

	errs := validate.Struct(discountRow{Type: "amount", Value: "ten"})
	assert.Equal(t, "The value field must be a number.", errs["value"])
}

func TestNumericBounds(t *testing.T) {
	errs := validate.Struct(discountRow{Type: "amount", Value: -1})
	assert.Contains(t, errs["value"], "greater than or equal to 0")

	type popularity struct {
		Score int `json:"score" validate:"integer,lte=100"`
	}
	assert.NotEmpty(t, validate.Struct(popularity{Score: 101}))
	assert.Empty(t, validate.Struct(popularity{Score: 100}))
}

func TestAlphaDashAndMax(t *testing.T) {
	errs := validate.Struct(discountRow{Type: "percent", Value: 1, Category: "hot drinks"})
	assert.Contains(t, errs, "category")

	type slugged struct {
		Slug string `json:"slug" validate:"required,min=2,max=5"`
	}
	assert.Contains(t, validate.Struct(slugged{Slug: "a"})["slug"], "at least 2 characters")
	assert.Contains(t, validate.Struct(slugged{Slug: "abcdef"})["slug"], "not be greater than 5")
}

func TestDateRule(t *testing.T) {
	errs := validate.Struct(discountRow{Type: "percent", Value: 1, StartsAt: "next tuesday"})
	assert.Equal(t, "The startsAt is not a valid date.", errs["startsAt"])

	_, err := validate.ParseDate("2026-02-01T10:00:00Z")
	assert.NoError(t, err)
}

func TestURLRule(t *testing.T) {
	type img struct {
		URL string `json:"imageUrl" validate:"nullable,url"`
	}
	assert.Empty(t, validate.Struct(img{}))
	assert.Empty(t, validate.Struct(img{URL: "https://cdn.example.com/a.png"}))
	assert.NotEmpty(t, validate.Struct(img{URL: "ftp://x"}))
}

func TestErrorsString(t *testing.T) {
	errs := validate.Errors{"value": "b.", "type": "a."}
	assert.Equal(t, "a. b.", errs.Error())
}
