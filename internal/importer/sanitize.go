package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"smart-store/internal/domain"
)

var (
	controlReplacer = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")

	// leading decimal number, optionally signed, with optional exponent
	numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// SanitizeName replaces carriage returns, newlines and tabs with a space,
// trims surrounding whitespace and truncates to the maximum name length.
// Runs of spaces are kept as they are.
func SanitizeName(raw string) string {
	name := strings.TrimSpace(controlReplacer.Replace(raw))

	runes := []rune(name)
	if len(runes) > domain.MaxProductNameLength {
		name = string(runes[:domain.MaxProductNameLength])
	}

	return name
}

// ParsePrice reads the leading number of raw. Leading whitespace and any
// text after the number are ignored, so "9.99 USD" parses as 9.99.
// It returns false when no finite, non-negative number is found.
func ParsePrice(raw string) (float64, bool) {
	match := numericPrefix.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// out of range values come back as ±Inf with an error
		return 0, false
	}

	if !ValidPrice(price) {
		return 0, false
	}

	return price, true
}

// ValidPrice reports whether price may be stored on a product
func ValidPrice(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price >= 0
}
