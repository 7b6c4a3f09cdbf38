package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxProductNameLength is the longest product name accepted anywhere in the store
const MaxProductNameLength = 120

// Product represents a product in the catalog
type Product struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductUpdate carries the fields of a partial product update.
// A nil field is left unchanged.
type ProductUpdate struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	ImageURL *string  `json:"image_url,omitempty"`
}

// IsEmpty reports whether the update would change nothing
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.ImageURL == nil
}

// Apply copies the supplied fields onto p
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
}

// NewProductInput holds the fields needed to add a product
type NewProductInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}
