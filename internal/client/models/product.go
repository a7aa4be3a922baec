package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for products that carry no image.
const PlaceholderImage = "/placeholder-image.jpg"

// Product is a reference to a catalog product plus the display fields the
// client keeps alongside it. The backend is inconsistent about field names,
// so both spellings are kept; use the accessor methods instead of the raw
// fields.
type Product struct {
	MongoID     string              `json:"_id,omitempty"`
	ID          string              `json:"id,omitempty"`
	Name        string              `json:"name"`
	Price       decimal.NullDecimal `json:"price"`
	Amount      decimal.NullDecimal `json:"amount"`
	Image       string              `json:"image,omitempty"`
	ImageURL    string              `json:"imageurl,omitempty"`
	Category    string              `json:"category,omitempty"`
	Description string              `json:"description,omitempty"`
	IsNew       bool                `json:"isNew,omitempty"`
	IsFeatured  bool                `json:"isFeatured,omitempty"`
	CreatedAt   *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time          `json:"updatedAt,omitempty"`
}

// ProductID returns "_id", then "id", then "" when neither is set.
func (p Product) ProductID() string {
	if p.MongoID != "" {
		return p.MongoID
	}
	return p.ID
}

// UnitPrice returns "price", then "amount", then zero. Display only; the
// server prices the order at checkout.
func (p Product) UnitPrice() decimal.Decimal {
	if p.Price.Valid {
		return p.Price.Decimal
	}
	if p.Amount.Valid {
		return p.Amount.Decimal
	}
	return decimal.Zero
}

// ImageRef returns "image", then "imageurl", then PlaceholderImage.
func (p Product) ImageRef() string {
	switch {
	case p.Image != "":
		return p.Image
	case p.ImageURL != "":
		return p.ImageURL
	default:
		return PlaceholderImage
	}
}

// ProductFilter narrows a catalog listing. Zero values are not sent.
type ProductFilter struct {
	Limit    int
	Page     int
	Search   string
	Category string
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	TotalCount int       `json:"totalCount"`
	Data       []Product `json:"data"`
}
