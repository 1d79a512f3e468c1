package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/store"
)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:           true,
	domain.OrderStatusExecuted:          true,
	domain.OrderStatusCancelled:         true,
	domain.OrderStatusExpired:           true,
	domain.OrderStatusPartiallyExecuted: true,
}

// PlaceOrderRequest represents the input for order placement. The
// instrument may be named by ID or by symbol.
type PlaceOrderRequest struct {
	AccountID    string
	InstrumentID string
	Symbol       string // used when InstrumentID is empty
	Side         domain.OrderSide
	Quantity     int64
	StopLoss     *decimal.Decimal
	Target       *decimal.Decimal
	ExpiresAt    *time.Time
	Notes        string
}

// ModifyOrderRequest changes the price and/or quantity of a pending order.
type ModifyOrderRequest struct {
	AccountID string
	Price     *decimal.Decimal
	Quantity  *int64
}

// OrderService handles order placement, retrieval, cancellation,
// modification and listing.
type OrderService struct {
	engine      *engine.OrderEngine
	orders      *store.OrderStore
	accounts    *store.AccountStore
	instruments *store.InstrumentStore
	now         func() time.Time
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	eng *engine.OrderEngine,
	orders *store.OrderStore,
	accounts *store.AccountStore,
	instruments *store.InstrumentStore,
	now func() time.Time,
) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		engine:      eng,
		orders:      orders,
		accounts:    accounts,
		instruments: instruments,
		now:         now,
	}
}

// PlaceOrder resolves the instrument and hands the order to the engine.
// The returned order is executed, or pending if the fill could not run.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	instrumentID := req.InstrumentID
	if instrumentID == "" && req.Symbol != "" {
		inst, err := s.instruments.GetBySymbol(req.Symbol)
		if err != nil {
			return nil, err
		}
		instrumentID = inst.InstrumentID
	}

	return s.engine.PlaceOrder(ctx, engine.PlaceOrderRequest{
		AccountID:    req.AccountID,
		InstrumentID: instrumentID,
		Side:         req.Side,
		Quantity:     req.Quantity,
		StopLoss:     req.StopLoss,
		Target:       req.Target,
		ExpiresAt:    req.ExpiresAt,
		Notes:        req.Notes,
	})
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(orderID string) (*domain.Order, error) {
	return s.orders.Get(orderID)
}

// CancelOrder cancels a pending order owned by accountID.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, accountID string) (*domain.Order, error) {
	if accountID == "" {
		return nil, &domain.ValidationError{Message: "account_id is required"}
	}
	return s.engine.Cancel(ctx, orderID, accountID)
}

// ModifyOrder updates a pending order. Quantity is applied before price;
// if the price change fails the quantity change stays.
func (s *OrderService) ModifyOrder(ctx context.Context, orderID string, req ModifyOrderRequest) (*domain.Order, error) {
	if req.AccountID == "" {
		return nil, &domain.ValidationError{Message: "account_id is required"}
	}
	if req.Price == nil && req.Quantity == nil {
		return nil, &domain.ValidationError{Message: "price or quantity is required"}
	}

	var (
		o   *domain.Order
		err error
	)
	if req.Quantity != nil {
		if o, err = s.engine.ModifyQuantity(ctx, orderID, req.AccountID, *req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if o, err = s.engine.ModifyPrice(ctx, orderID, req.AccountID, *req.Price); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ListOrdersByAccount returns a paginated list of an account's orders,
// newest first, with optional status filtering.
func (s *OrderService) ListOrdersByAccount(accountID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, 0, err
	}

	if status != nil {
		if !ValidOrderStatuses[*status] {
			return nil, 0, &domain.ValidationError{
				Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: pending, executed, cancelled, expired, partially_executed", *status),
			}
		}
	}

	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	orders, total := s.orders.ListByAccount(accountID, status, page, limit)
	return orders, total, nil
}

// ProcessExpiredOrders expires every pending order that is due and returns
// how many it expired.
func (s *OrderService) ProcessExpiredOrders(ctx context.Context) int {
	return s.engine.ProcessExpired(ctx, s.now())
}

// ExecutePending retries every pending order and returns how many filled.
func (s *OrderService) ExecutePending(ctx context.Context) int {
	return s.engine.ExecutePending(ctx)
}
