package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits kept for cash amounts.
const CurrencyPlaces = 2

// AverageCostPlaces is the number of fractional digits kept for a
// position's average cost. Only rendering rounds it to CurrencyPlaces.
const AverageCostPlaces = 16

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a decimal string into a monetary value. It rejects
// values with more than 2 decimal places and negative values.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckAmount validates that d is non-negative and carries at most
// 2 decimal places.
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("monetary values must be >= 0")
	}
	if !d.Equal(d.Truncate(CurrencyPlaces)) {
		return fmt.Errorf("monetary values must have at most 2 decimal places")
	}
	return nil
}

// RoundCurrency rounds d half away from zero to 2 decimal places.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// FormatAmount renders d with exactly 2 decimal places. This is the only
// place internal precision is reduced for external representation.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
