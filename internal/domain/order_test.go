package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrder_Gross(t *testing.T) {
	o := &Order{Quantity: 10, Price: decimal.RequireFromString("170.00")}
	if got := o.Gross(); !got.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("Gross() = %s, want 1700", got)
	}
}

func TestOrder_CanTransition(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending,
		OrderStatusExecuted,
		OrderStatusCancelled,
		OrderStatusExpired,
		OrderStatusPartiallyExecuted,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			o := &Order{Status: from}
			want := from == OrderStatusPending &&
				(to == OrderStatusExecuted || to == OrderStatusCancelled || to == OrderStatusExpired)
			if got := o.CanTransition(to); got != want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrder_IsExpired(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name      string
		status    OrderStatus
		expiresAt *time.Time
		want      bool
	}{
		{"pending past", OrderStatusPending, &past, true},
		{"pending exactly now", OrderStatusPending, &now, true},
		{"pending future", OrderStatusPending, &future, false},
		{"pending no expiry", OrderStatusPending, nil, false},
		{"executed past", OrderStatusExecuted, &past, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := o.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrder_CloneIsDeep(t *testing.T) {
	sl := decimal.NewFromInt(150)
	exp := time.Now()
	o := &Order{OrderID: "o1", StopLoss: &sl, ExpiresAt: &exp}

	c := o.Clone()
	*c.StopLoss = decimal.NewFromInt(1)
	*c.ExpiresAt = exp.Add(time.Hour)
	c.OrderID = "changed"

	if !o.StopLoss.Equal(decimal.NewFromInt(150)) {
		t.Error("mutating clone's StopLoss changed the original")
	}
	if !o.ExpiresAt.Equal(exp) {
		t.Error("mutating clone's ExpiresAt changed the original")
	}
	if o.OrderID != "o1" {
		t.Error("mutating clone's OrderID changed the original")
	}
}
