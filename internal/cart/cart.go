package cart

import (
	"smart-store/internal/domain"
)

// Cart is an ordered list of cart lines, at most one per product.
// The zero value is an empty cart ready to use.
type Cart struct {
	Lines []domain.CartLine `json:"lines"`
}

// Add puts one unit of product into the cart. An existing line for the same
// product keeps its position and gains one unit; otherwise a new line is appended.
func (c *Cart) Add(product domain.Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == product.ID {
			c.Lines[i].Quantity++
			return
		}
	}

	c.Lines = append(c.Lines, domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Quantity:  1,
	})
}

// ChangeQuantity adds delta to the line at index. A line whose quantity drops
// to zero or below is removed. It returns false when index is out of range,
// in which case the cart is untouched.
func (c *Cart) ChangeQuantity(index, delta int) bool {
	if index < 0 || index >= len(c.Lines) {
		return false
	}

	c.Lines[index].Quantity += delta
	if c.Lines[index].Quantity <= 0 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	}

	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Count is the total number of units, not the number of distinct lines
func (c *Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Subtotal is the sum of price × quantity over all lines
func (c *Cart) Subtotal() float64 {
	subtotal := 0.0
	for _, line := range c.Lines {
		subtotal += line.LineTotal()
	}
	return subtotal
}

// Total adds the flat delivery fee to the subtotal
func (c *Cart) Total(deliveryFee float64) float64 {
	return c.Subtotal() + deliveryFee
}

// Snapshot returns a copy of the lines that does not alias the cart
func (c *Cart) Snapshot() []domain.CartLine {
	lines := make([]domain.CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return lines
}

// Summary is the read-only view of a cart shown to shoppers
type Summary struct {
	Lines       []domain.CartLine `json:"lines"`
	Count       int               `json:"count"`
	Subtotal    float64           `json:"subtotal"`
	DeliveryFee float64           `json:"delivery_fee"`
	Total       float64           `json:"total"`
}

// Summarize builds the cart view with the given delivery fee
func (c *Cart) Summarize(deliveryFee float64) Summary {
	return Summary{
		Lines:       c.Snapshot(),
		Count:       c.Count(),
		Subtotal:    c.Subtotal(),
		DeliveryFee: deliveryFee,
		Total:       c.Total(deliveryFee),
	}
}
