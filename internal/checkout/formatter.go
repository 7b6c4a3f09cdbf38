package checkout

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"smart-store/internal/domain"
)

const handoffBaseURL = "https://wa.me/"

var ErrEmptyCart = errors.New("cart is empty")

// Config holds the fixed parts of the order message
type Config struct {
	StoreName      string
	CountryCode    string
	CurrencySymbol string
	DeliveryFee    float64
	// WhatsAppNumber is the destination of the handoff, digits only
	WhatsAppNumber string
}

// Message is an order ready to hand off to the messaging app
type Message struct {
	Address string `json:"address"`
	Text    string `json:"text"`
}

// URL returns the wa.me link that opens a chat with Address pre-filled with Text
func (m Message) URL() string {
	return handoffBaseURL + m.Address + "?text=" + encodeComponent(m.Text)
}

// Formatter renders a cart and customer details into an order message
type Formatter struct {
	cfg Config
}

// NewFormatter creates a Formatter
func NewFormatter(cfg Config) *Formatter {
	return &Formatter{cfg: cfg}
}

// DeliveryFee returns the flat delivery fee added to every order
func (f *Formatter) DeliveryFee() float64 {
	return f.cfg.DeliveryFee
}

// Format builds the order message. Identical input always yields identical text.
func (f *Formatter) Format(lines []domain.CartLine, customer domain.CustomerInfo) (Message, error) {
	if len(lines) == 0 {
		return Message{}, ErrEmptyCart
	}

	var b strings.Builder

	fmt.Fprintf(&b, "*New Order from %s*\n\n", f.cfg.StoreName)
	b.WriteString("*Customer Details:*\n")
	fmt.Fprintf(&b, "Name: %s\n", customer.Name)
	fmt.Fprintf(&b, "Phone: +%s%s\n", f.cfg.CountryCode, customer.Phone)
	fmt.Fprintf(&b, "Address: %s\n\n", customer.Address)
	b.WriteString("*Order Items:*\n")

	subtotal := 0.0
	for i, line := range lines {
		lineTotal := line.LineTotal()
		subtotal += lineTotal

		fmt.Fprintf(&b, "%d. %s\n", i+1, line.Name)
		fmt.Fprintf(&b, "   Quantity: %d\n", line.Quantity)
		fmt.Fprintf(&b, "   Price: %s x %d = %s\n\n", f.money(line.Price), line.Quantity, f.money(lineTotal))
	}

	b.WriteString("*Order Summary:*\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", f.money(subtotal))
	fmt.Fprintf(&b, "Delivery: %s\n", f.money(f.cfg.DeliveryFee))
	fmt.Fprintf(&b, "*Total: %s*", f.money(subtotal+f.cfg.DeliveryFee))

	return Message{
		Address: f.cfg.WhatsAppNumber,
		Text:    b.String(),
	}, nil
}

func (f *Formatter) money(v float64) string {
	return f.cfg.CurrencySymbol + FormatAmount(v)
}

// FormatAmount rounds v to two decimal places and prints it without
// trailing zeros: 40, 9.99, 29.97.
func FormatAmount(v float64) string {
	rounded := math.Round(v*100) / 100
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// encodeComponent percent-encodes s for use inside a query value, spaces as %20
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
