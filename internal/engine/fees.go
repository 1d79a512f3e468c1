package engine

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
)

// CommissionRateStore supplies per-symbol commission overrides.
type CommissionRateStore interface {
	RateFor(symbol string) (decimal.Decimal, bool)
}

// Fees is the fee breakdown of a fill.
type Fees struct {
	Gross      decimal.Decimal
	Commission decimal.Decimal
	Tax        decimal.Decimal
	Net        decimal.Decimal
}

// FeeCalculator computes commission, tax and net settlement for fills.
// Commission and tax are rounded to currency precision.
type FeeCalculator struct {
	commissionRate decimal.Decimal
	taxRate        decimal.Decimal
	rates          CommissionRateStore
}

// NewFeeCalculator creates a FeeCalculator with default rates. rates may
// be nil when there are no per-symbol overrides.
func NewFeeCalculator(commissionRate, taxRate decimal.Decimal, rates CommissionRateStore) *FeeCalculator {
	return &FeeCalculator{
		commissionRate: commissionRate,
		taxRate:        taxRate,
		rates:          rates,
	}
}

// Commission returns the commission on gross for symbol.
func (f *FeeCalculator) Commission(symbol string, gross decimal.Decimal) decimal.Decimal {
	rate := f.commissionRate
	if f.rates != nil {
		if r, ok := f.rates.RateFor(symbol); ok {
			rate = r
		}
	}
	return domain.RoundCurrency(gross.Mul(rate))
}

// Tax returns the transaction tax on gross.
func (f *FeeCalculator) Tax(gross decimal.Decimal) decimal.Decimal {
	return domain.RoundCurrency(gross.Mul(f.taxRate))
}

// NetSettlement returns the cash moved by a fill: buyers pay gross plus
// fees, sellers receive gross minus fees.
func (f *FeeCalculator) NetSettlement(side domain.OrderSide, gross, commission, tax decimal.Decimal) decimal.Decimal {
	if side == domain.OrderSideSell {
		return gross.Sub(commission).Sub(tax)
	}
	return gross.Add(commission).Add(tax)
}

// Quote returns the full fee breakdown for a fill.
func (f *FeeCalculator) Quote(side domain.OrderSide, symbol string, gross decimal.Decimal) Fees {
	c := f.Commission(symbol, gross)
	t := f.Tax(gross)
	return Fees{
		Gross:      gross,
		Commission: c,
		Tax:        t,
		Net:        f.NetSettlement(side, gross, c, t),
	}
}
