package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DiscountKind selects how Value is applied to a price.
type DiscountKind string

const (
	// KindPercent takes Value percent off the running price.
	KindPercent DiscountKind = "percent"
	// KindAmount subtracts Value from the running price.
	KindAmount DiscountKind = "amount"
)

// Valid reports whether k is a known kind.
func (k DiscountKind) Valid() bool {
	return k == KindPercent || k == KindAmount
}

// ErrInvalidDiscount wraps every rejection returned by Discount.Validate.
var ErrInvalidDiscount = errors.New("invalid discount")

// Discount is a pricing rule.
//
// ProductIDs are weak references: after reconciliation they hold canonical
// product ids only, but a dangling id is inert rather than an error. An empty
// ProductIDs list targets every product (optionally narrowed by Category).
type Discount struct {
	ID         string       `gorm:"primaryKey;size:24"         json:"id"`
	Kind       DiscountKind `gorm:"column:type;size:16;not null" json:"type"`
	Value      float64      `gorm:"not null"                   json:"value"`
	ProductIDs []string     `gorm:"serializer:json"            json:"productIds"`
	Category   string       `gorm:"size:255;index"             json:"category,omitempty"`
	Active     bool         `gorm:"not null;default:true"      json:"active"`
	StartsAt   *time.Time   `json:"startsAt,omitempty"`
	EndsAt     *time.Time   `json:"endsAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Validate enforces the write-boundary rules: a known kind, a finite
// non-negative value, percent no greater than 100, and an ordered window.
func (d Discount) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDiscount, d.Kind)
	}
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) || d.Value < 0 {
		return fmt.Errorf("%w: value must be a non-negative number", ErrInvalidDiscount)
	}
	if d.Kind == KindPercent && d.Value > 100 {
		return fmt.Errorf("%w: percent value %.2f exceeds 100", ErrInvalidDiscount, d.Value)
	}
	if !d.WindowValid() {
		return fmt.Errorf("%w: startsAt is after endsAt", ErrInvalidDiscount)
	}
	return nil
}

// WindowValid is false only when both bounds are set and inverted.
func (d Discount) WindowValid() bool {
	return d.StartsAt == nil || d.EndsAt == nil || !d.StartsAt.After(*d.EndsAt)
}

// InWindow reports whether t falls inside [StartsAt, EndsAt]; a missing bound
// is unbounded on that side.
func (d Discount) InWindow(t time.Time) bool {
	if d.StartsAt != nil && t.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && t.After(*d.EndsAt) {
		return false
	}
	return true
}
