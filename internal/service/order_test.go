package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/tradesim/internal/domain"
)

// pendingBuy places a buy of 10 AAPL funded for the gross amount only, so
// the fee-exclusive check passes but the fill cannot settle and the order
// stays pending.
func (env *testEnv) pendingBuy(t *testing.T, accountID string, expiresAt *time.Time) *domain.Order {
	t.Helper()
	env.registerAccount(t, accountID, domain.RoleRegularUser, domain.AccountModeReal, "1700.00")
	o, err := env.orderSvc.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID:    accountID,
		InstrumentID: "aapl",
		Side:         domain.OrderSideBuy,
		Quantity:     10,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if o.Status != domain.OrderStatusPending {
		t.Fatalf("got status %q, want pending", o.Status)
	}
	return o
}

func TestPlaceOrder_BySymbol(t *testing.T) {
	env := newTestEnv(t)
	env.registerAccount(t, "alice", domain.RoleRegularUser, domain.AccountModeReal, "10000")

	o, err := env.orderSvc.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID: "alice",
		Symbol:    "AAPL",
		Side:      domain.OrderSideBuy,
		Quantity:  10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.InstrumentID != "aapl" {
		t.Errorf("got instrument_id %q, want aapl", o.InstrumentID)
	}
	if o.Status != domain.OrderStatusExecuted {
		t.Errorf("got status %q, want executed", o.Status)
	}
	if !o.Price.Equal(dec("170.00")) {
		t.Errorf("got price %s, want 170.00", o.Price)
	}
}

func TestPlaceOrder_UnknownSymbol(t *testing.T) {
	env := newTestEnv(t)
	env.registerAccount(t, "alice", domain.RoleRegularUser, domain.AccountModeReal, "10000")

	_, err := env.orderSvc.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID: "alice",
		Symbol:    "ZZZ",
		Side:      domain.OrderSideBuy,
		Quantity:  1,
	})
	if !errors.Is(err, domain.ErrInstrumentUnavailable) {
		t.Fatalf("expected ErrInstrumentUnavailable, got %v", err)
	}
}

func TestPlaceOrder_VirtualWhileClosed(t *testing.T) {
	env := newTestEnv(t)
	env.registerAccount(t, "vera", domain.RoleRegularUser, domain.AccountModeVirtual, "10000")
	env.marketSvc.ForceClose()

	_, err := env.orderSvc.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID: "vera", InstrumentID: "aapl", Side: domain.OrderSideBuy, Quantity: 1,
	})
	if !errors.Is(err, domain.ErrMarketClosed) {
		t.Fatalf("expected ErrMarketClosed, got %v", err)
	}
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv(t)
	env.registerAccount(t, "alice", domain.RoleRegularUser, domain.AccountModeReal, "10000")
	placed := env.buy(t, "alice", "aapl", 1)

	got, err := env.orderSvc.GetOrder(placed.OrderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderID != placed.OrderID || got.Status != domain.OrderStatusExecuted {
		t.Errorf("got %+v", got)
	}

	if _, err := env.orderSvc.GetOrder("nope"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	o := env.pendingBuy(t, "alice", nil)
	env.registerAccount(t, "mallory", domain.RoleRegularUser, domain.AccountModeReal, "0")
	ctx := context.Background()

	var ve *domain.ValidationError
	if _, err := env.orderSvc.CancelOrder(ctx, o.OrderID, ""); !errors.As(err, &ve) {
		t.Errorf("missing account_id: expected ValidationError, got %v", err)
	}
	if _, err := env.orderSvc.CancelOrder(ctx, o.OrderID, "mallory"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("foreign cancel: expected ErrOrderNotFound, got %v", err)
	}

	cancelled, err := env.orderSvc.CancelOrder(ctx, o.OrderID, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Errorf("got %+v, want cancelled with timestamp", cancelled)
	}

	if _, err := env.orderSvc.CancelOrder(ctx, o.OrderID, "alice"); !errors.Is(err, domain.ErrOrderNotPending) {
		t.Errorf("second cancel: expected ErrOrderNotPending, got %v", err)
	}
	if _, err := env.orderSvc.CancelOrder(ctx, "nope", "alice"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("unknown order: expected ErrOrderNotFound, got %v", err)
	}
}

func TestModifyOrder(t *testing.T) {
	env := newTestEnv(t)
	o := env.pendingBuy(t, "alice", nil)
	ctx := context.Background()

	qty := int64(5)
	price := dec("100.00")
	got, err := env.orderSvc.ModifyOrder(ctx, o.OrderID, ModifyOrderRequest{
		AccountID: "alice",
		Price:     &price,
		Quantity:  &qty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != 5 || !got.Price.Equal(price) {
		t.Errorf("got quantity %d price %s, want 5 and 100.00", got.Quantity, got.Price)
	}
	if got.Status != domain.OrderStatusPending {
		t.Errorf("got status %q, want pending", got.Status)
	}
}

func TestModifyOrder_Errors(t *testing.T) {
	env := newTestEnv(t)
	o := env.pendingBuy(t, "alice", nil)
	ctx := context.Background()
	qty := int64(1)
	zero := int64(0)

	var ve *domain.ValidationError
	if _, err := env.orderSvc.ModifyOrder(ctx, o.OrderID, ModifyOrderRequest{AccountID: "alice"}); !errors.As(err, &ve) {
		t.Errorf("empty modification: expected ValidationError, got %v", err)
	}
	if _, err := env.orderSvc.ModifyOrder(ctx, o.OrderID, ModifyOrderRequest{Quantity: &qty}); !errors.As(err, &ve) {
		t.Errorf("missing account_id: expected ValidationError, got %v", err)
	}
	if _, err := env.orderSvc.ModifyOrder(ctx, o.OrderID, ModifyOrderRequest{AccountID: "alice", Quantity: &zero}); !errors.As(err, &ve) {
		t.Errorf("zero quantity: expected ValidationError, got %v", err)
	}

	if _, err := env.orderSvc.CancelOrder(ctx, o.OrderID, "alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := env.orderSvc.ModifyOrder(ctx, o.OrderID, ModifyOrderRequest{AccountID: "alice", Quantity: &qty}); !errors.Is(err, domain.ErrOrderNotPending) {
		t.Errorf("cancelled order: expected ErrOrderNotPending, got %v", err)
	}
}

func TestListOrdersByAccount_Pagination(t *testing.T) {
	env := newTestEnv(t)
	env.registerAccount(t, "alice", domain.RoleRegularUser, domain.AccountModeReal, "100000")

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, env.buy(t, "alice", "aapl", 1).OrderID)
	}

	page1, total, err := env.orderSvc.ListOrdersByAccount("alice", nil, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("got total %d, want 5", total)
	}
	if len(page1) != 2 || page1[0].OrderID != ids[4] || page1[1].OrderID != ids[3] {
		t.Errorf("page 1 should hold the two newest orders")
	}

	page3, _, err := env.orderSvc.ListOrdersByAccount("alice", nil, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page3) != 1 || page3[0].OrderID != ids[0] {
		t.Errorf("page 3 should hold only the oldest order")
	}

	empty, total, err := env.orderSvc.ListOrdersByAccount("alice", nil, 9, 2)
	if err != nil || len(empty) != 0 || total != 5 {
		t.Errorf("page past the end = %d orders, total %d, err %v", len(empty), total, err)
	}
}

func TestListOrdersByAccount_StatusFilter(t *testing.T) {
	env := newTestEnv(t)
	o := env.pendingBuy(t, "alice", nil)
	if _, err := env.accountSvc.Deposit("alice", dec("1000")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	env.buy(t, "alice", "aapl", 1)

	pending := domain.OrderStatusPending
	got, total, err := env.orderSvc.ListOrdersByAccount("alice", &pending, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || got[0].OrderID != o.OrderID {
		t.Errorf("got %d pending orders, want only %s", total, o.OrderID)
	}

	executed := domain.OrderStatusExecuted
	if _, total, _ := env.orderSvc.ListOrdersByAccount("alice", &executed, 1, 20); total != 1 {
		t.Errorf("got %d executed orders, want 1", total)
	}
}

func TestListOrdersByAccount_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.registerAccount(t, "alice", domain.RoleRegularUser, domain.AccountModeReal, "0")
	bogus := domain.OrderStatus("filled")

	tests := []struct {
		name      string
		accountID string
		status    *domain.OrderStatus
		page      int
		limit     int
		want      error // nil means *domain.ValidationError
	}{
		{"unknown account", "ghost", nil, 1, 20, domain.ErrAccountNotFound},
		{"invalid status", "alice", &bogus, 1, 20, nil},
		{"page zero", "alice", nil, 0, 20, nil},
		{"limit zero", "alice", nil, 1, 0, nil},
		{"limit too large", "alice", nil, 1, 101, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.orderSvc.ListOrdersByAccount(tt.accountID, tt.status, tt.page, tt.limit)
			if tt.want == nil {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProcessExpiredOrders(t *testing.T) {
	env := newTestEnv(t)
	expiresAt := monday10am.Add(time.Hour)
	o := env.pendingBuy(t, "alice", &expiresAt)
	ctx := context.Background()

	if n := env.orderSvc.ProcessExpiredOrders(ctx); n != 0 {
		t.Fatalf("expired %d orders before the deadline, want 0", n)
	}

	env.now = monday10am.Add(2 * time.Hour)
	if n := env.orderSvc.ProcessExpiredOrders(ctx); n != 1 {
		t.Fatalf("expired %d orders, want 1", n)
	}
	if n := env.orderSvc.ProcessExpiredOrders(ctx); n != 0 {
		t.Fatalf("second sweep expired %d orders, want 0", n)
	}

	got, err := env.orderSvc.GetOrder(o.OrderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.OrderStatusExpired {
		t.Errorf("got status %q, want expired", got.Status)
	}
	if got.ExpiredAt == nil || !got.ExpiredAt.Equal(expiresAt) {
		t.Errorf("got expired_at %v, want %v", got.ExpiredAt, expiresAt)
	}
}

func TestExecutePending(t *testing.T) {
	env := newTestEnv(t)
	o := env.pendingBuy(t, "alice", nil)
	ctx := context.Background()

	if n := env.orderSvc.ExecutePending(ctx); n != 0 {
		t.Fatalf("executed %d orders without funds, want 0", n)
	}

	if _, err := env.accountSvc.Deposit("alice", dec("10.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if n := env.orderSvc.ExecutePending(ctx); n != 1 {
		t.Fatalf("executed %d orders, want 1", n)
	}

	got, _ := env.orderSvc.GetOrder(o.OrderID)
	if got.Status != domain.OrderStatusExecuted {
		t.Errorf("got status %q, want executed", got.Status)
	}
	a, _ := env.accountSvc.Get("alice")
	// 1700.00 + 10.00 - (1700.00 + 1.70 + 0.85)
	if !a.Balance.Equal(dec("7.45")) {
		t.Errorf("got balance %s, want 7.45", a.Balance)
	}
}
