package models

import "time"

// Variant is a purchasable flavour/size of a product with its own stock.
type Variant struct {
	Name  string `json:"name"  validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// SEO carries the optional search-engine metadata of a product page.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Product represents a product in the catalogue.
//
// ID is the canonical identifier assigned by the store (a 24-hex Mongo
// ObjectID string for every driver). Slug is the unique human key.
type Product struct {
	ID         string    `gorm:"primaryKey;size:24"              json:"id"`
	Name       string    `gorm:"size:255;not null"               json:"name"`
	Slug       string    `gorm:"size:255;uniqueIndex;not null"   json:"slug"`
	SKU        string    `gorm:"size:100;index"                  json:"sku,omitempty"`
	Category   string    `gorm:"size:255;index"                  json:"category"`
	Price      float64   `gorm:"not null;default:0"              json:"price"`
	Popularity float64   `gorm:"not null;default:0"              json:"popularity"`
	Flavors    []string  `gorm:"serializer:json"                 json:"flavors"`
	Variants   []Variant `gorm:"serializer:json"                 json:"variants"`
	ImageURL   string    `gorm:"size:1024"                       json:"imageUrl,omitempty"`
	SEO        SEO       `gorm:"serializer:json"                 json:"seo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Ref returns the identifying subset of p used to build reconciliation indexes.
func (p Product) Ref() ProductRef {
	return ProductRef{ID: p.ID, Slug: p.Slug, SKU: p.SKU, Category: p.Category}
}

// HasFlavor reports whether flavor is one of p's flavours.
func (p Product) HasFlavor(flavor string) bool {
	for _, f := range p.Flavors {
		if f == flavor {
			return true
		}
	}
	return false
}

// ProductRef is a catalog snapshot row: every key a discount may use to point
// at a product, plus the category used for expansion.
type ProductRef struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	SKU      string `json:"sku,omitempty"`
	Category string `json:"category"`
}

// PricedProduct is a product decorated with its effective price.
type PricedProduct struct {
	Product
	PriceFinal float64 `json:"priceFinal"`
}

// Discounted reports whether any discount lowered the base price.
func (p PricedProduct) Discounted() bool {
	return p.PriceFinal < p.Price
}
