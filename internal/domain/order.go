package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusExecuted  OrderStatus = "executed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
	// OrderStatusPartiallyExecuted is reserved. Fills are all-or-nothing,
	// so no transition leads here.
	OrderStatusPartiallyExecuted OrderStatus = "partially_executed"
)

// Order is a buy or sell instruction placed by an account. Price is the
// instrument's quoted price snapshotted at placement.
type Order struct {
	OrderID      string
	AccountID    string
	InstrumentID string
	Symbol       string
	Side         OrderSide
	Quantity     int64
	Price        decimal.Decimal
	StopLoss     *decimal.Decimal // advisory only
	Target       *decimal.Decimal // advisory only
	Status       OrderStatus
	Mode         AccountMode
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresAt    *time.Time
	ExecutedAt   *time.Time
	CancelledAt  *time.Time
	ExpiredAt    *time.Time
}

// Gross returns quantity × snapshotted price.
func (o *Order) Gross() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

// IsTerminal reports whether the order can no longer change.
func (o *Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}

// CanTransition reports whether the order may move from its current status
// to next. Only pending orders move, and only to executed, cancelled or
// expired.
func (o *Order) CanTransition(next OrderStatus) bool {
	if o.Status != OrderStatusPending {
		return false
	}
	switch next {
	case OrderStatusExecuted, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// IsExpired reports whether a pending order's expiry has passed at now.
func (o *Order) IsExpired(now time.Time) bool {
	return o.Status == OrderStatusPending && o.ExpiresAt != nil && !o.ExpiresAt.After(now)
}

// Clone returns a deep copy of the order so callers can't mutate
// store-owned state.
func (o *Order) Clone() *Order {
	c := *o
	c.StopLoss = cloneDecimal(o.StopLoss)
	c.Target = cloneDecimal(o.Target)
	c.ExpiresAt = cloneTime(o.ExpiresAt)
	c.ExecutedAt = cloneTime(o.ExecutedAt)
	c.CancelledAt = cloneTime(o.CancelledAt)
	c.ExpiredAt = cloneTime(o.ExpiredAt)
	return &c
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
