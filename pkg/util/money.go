package util

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice   = errors.New("invalid price")
	ErrNegativePrice  = errors.New("price must be zero or greater")
	ErrPricePrecision = errors.New("price must have at most 2 decimal places")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// ParsePriceToCents parses a decimal price ("4.50", "4,50", "12") into
// integer cents. A comma is accepted as the decimal separator.
func ParsePriceToCents(raw string) (int64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	return DecimalToCents(d)
}

// DecimalToCents converts d to cents, rejecting negatives and sub-cent precision.
func DecimalToCents(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrNegativePrice
	}
	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrPricePrecision
	}
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidPrice
	}
	return cents.IntPart(), nil
}

// CentsToDecimal is the inverse of DecimalToCents.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders cents as a fixed two-decimal string ("4.50").
func FormatCents(cents int64) string {
	return CentsToDecimal(cents).StringFixed(2)
}
