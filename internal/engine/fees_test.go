package engine

import (
	"testing"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
	"github.com/shopspring/decimal"
)

func TestFeeCalculator_Quote(t *testing.T) {
	rates := store.NewRateTable(map[string]decimal.Decimal{"TSLA": d("0.002")})
	f := NewFeeCalculator(d("0.001"), d("0.0005"), rates)

	tests := []struct {
		name       string
		side       domain.OrderSide
		symbol     string
		gross      string
		commission string
		tax        string
		net        string
	}{
		{"buy default rate", domain.OrderSideBuy, "AAPL", "1700", "1.70", "0.85", "1702.55"},
		{"sell default rate", domain.OrderSideSell, "AAPL", "1900", "1.90", "0.95", "1897.15"},
		{"per-symbol override", domain.OrderSideBuy, "TSLA", "1000", "2.00", "0.50", "1002.50"},
		{"rounds half up", domain.OrderSideBuy, "AAPL", "15", "0.02", "0.01", "15.03"},
		{"tiny gross", domain.OrderSideSell, "AAPL", "0.01", "0.00", "0.00", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := f.Quote(tt.side, tt.symbol, d(tt.gross))
			if !q.Commission.Equal(d(tt.commission)) {
				t.Errorf("commission = %s, want %s", q.Commission, tt.commission)
			}
			if !q.Tax.Equal(d(tt.tax)) {
				t.Errorf("tax = %s, want %s", q.Tax, tt.tax)
			}
			if !q.Net.Equal(d(tt.net)) {
				t.Errorf("net = %s, want %s", q.Net, tt.net)
			}
		})
	}
}

func TestFeeCalculator_NilRates(t *testing.T) {
	f := NewFeeCalculator(d("0.001"), d("0"), nil)
	if c := f.Commission("ANY", d("1000")); !c.Equal(d("1")) {
		t.Fatalf("commission = %s, want 1", c)
	}
}
