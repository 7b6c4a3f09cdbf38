package domain

import "github.com/google/uuid"

// CartLine is a product snapshot plus the quantity held in a cart
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url"`
	Quantity  int       `json:"quantity"`
}

// LineTotal returns price × quantity
func (l CartLine) LineTotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CustomerInfo is collected at checkout and consumed by the order message.
// It is never persisted.
type CustomerInfo struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,len=10,numeric"`
	Address string `json:"address" validate:"required"`
}

// StagedImportRow is a CSV row waiting for submission to the catalog
type StagedImportRow struct {
	TempID   string  `json:"temp_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}
