package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

// MaxNotesLength is the longest order note accepted, in characters.
const MaxNotesLength = 500

// AccountModeResolver decides which mode an account trades in.
type AccountModeResolver interface {
	ModeFor(a *domain.Account) domain.AccountMode
}

// PersistedMode resolves the mode from the account's stored Mode field.
type PersistedMode struct{}

// ModeFor returns a.Mode.
func (PersistedMode) ModeFor(a *domain.Account) domain.AccountMode {
	return a.Mode
}

// PlaceOrderRequest is the input to PlaceOrder.
type PlaceOrderRequest struct {
	AccountID    string
	InstrumentID string
	Side         domain.OrderSide
	Quantity     int64
	StopLoss     *decimal.Decimal
	Target       *decimal.Decimal
	ExpiresAt    *time.Time
	Notes        string
}

// Dependencies wires an OrderEngine.
type Dependencies struct {
	Accounts    AccountStore
	Instruments InstrumentCatalog
	Orders      *store.OrderStore
	Ledger      *AccountLedger
	Holdings    *HoldingsBook
	Fees        *FeeCalculator
	Router      *CommissionRouter
	Brokers     BrokerResolver
	Journal     *TransactionLedger
	Clock       *MarketClock
	Modes       AccountModeResolver // defaults to PersistedMode
	Logger      *slog.Logger        // defaults to slog.Default()
	Now         func() time.Time    // defaults to time.Now
}

// OrderEngine places, executes, cancels and expires orders. It owns the
// order state machine and runs each fill as one unit of work.
//
// All state changes of an account happen while holding that account's
// serialization token. A fill additionally holds the token of the broker
// that receives its commission.
type OrderEngine struct {
	accounts    AccountStore
	instruments InstrumentCatalog
	orders      *store.OrderStore
	ledger      *AccountLedger
	holdings    *HoldingsBook
	fees        *FeeCalculator
	router      *CommissionRouter
	brokers     BrokerResolver
	journal     *TransactionLedger
	clock       *MarketClock
	modes       AccountModeResolver
	logger      *slog.Logger
	now         func() time.Time

	tokens   *KeyedMutex
	expiries *expiryIndex
}

// NewOrderEngine creates an OrderEngine.
func NewOrderEngine(d Dependencies) *OrderEngine {
	if d.Modes == nil {
		d.Modes = PersistedMode{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	e := &OrderEngine{
		accounts:    d.Accounts,
		instruments: d.Instruments,
		orders:      d.Orders,
		ledger:      d.Ledger,
		holdings:    d.Holdings,
		fees:        d.Fees,
		router:      d.Router,
		brokers:     d.Brokers,
		journal:     d.Journal,
		clock:       d.Clock,
		modes:       d.Modes,
		logger:      d.Logger,
		now:         d.Now,
		tokens:      NewKeyedMutex(),
		expiries:    newExpiryIndex(),
	}
	// Pick up pending orders that already carry an expiry.
	for _, o := range d.Orders.ListPending() {
		e.expiries.add(o)
	}
	return e
}

// LockAccount acquires the serialization token of accountID. Services use
// it for balance changes that happen outside of fills.
func (e *OrderEngine) LockAccount(accountID string) (unlock func()) {
	return e.tokens.Lock(accountID)
}

func (e *OrderEngine) brokerFor(accountID string) string {
	if e.brokers == nil {
		return ""
	}
	b, _ := e.brokers.ResolveBrokerFor(accountID)
	return b
}

// PlaceOrder validates req, creates a pending order and immediately tries
// to execute it. Validation failures are returned as errors and leave no
// state behind. If the execution attempt fails the order stays pending and
// is returned without error.
func (e *OrderEngine) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}

	broker := e.brokerFor(req.AccountID)
	unlock := e.tokens.Lock(req.AccountID, broker)
	defer unlock()

	// Step 1: Account eligibility.
	account, err := e.accounts.Get(req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, domain.ErrAccountInactive
	}
	mode := e.modes.ModeFor(account)

	// Step 2: Market hours, keyed by mode.
	if allowed, reason := e.clock.ValidateTrading(mode); !allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrMarketClosed, reason)
	}

	// Step 3: Instrument and price snapshot.
	inst, err := e.instruments.Get(req.InstrumentID)
	if err != nil || !inst.Tradable() {
		return nil, domain.ErrInstrumentUnavailable
	}
	price := inst.CurrentPrice
	gross := price.Mul(decimal.NewFromInt(req.Quantity))

	// Step 4: Funds or holdings.
	switch req.Side {
	case domain.OrderSideBuy:
		if mode == domain.AccountModeReal && account.KYCStatus != domain.KYCApproved {
			return nil, domain.ErrKYCRequired
		}
		if account.Balance.LessThan(gross) {
			return nil, domain.ErrInsufficientFunds
		}
	case domain.OrderSideSell:
		pos, err := e.holdings.Get(req.AccountID, req.InstrumentID)
		if err != nil || pos.Quantity < req.Quantity {
			return nil, domain.ErrInsufficientHoldings
		}
	}

	// Step 5: Create the pending order.
	now := e.now()
	order := &domain.Order{
		OrderID:      uuid.New().String(),
		AccountID:    req.AccountID,
		InstrumentID: req.InstrumentID,
		Symbol:       inst.Symbol,
		Side:         req.Side,
		Quantity:     req.Quantity,
		Price:        price,
		StopLoss:     req.StopLoss,
		Target:       req.Target,
		Status:       domain.OrderStatusPending,
		Mode:         mode,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    req.ExpiresAt,
	}
	e.orders.Create(order)
	e.expiries.add(order)

	// Step 6: First execution attempt.
	executed, err := e.execute(ctx, order.OrderID, broker)
	if err != nil {
		e.logger.Warn("order left pending",
			"order_id", order.OrderID,
			"account_id", order.AccountID,
			"error", err,
		)
		return e.orders.Get(order.OrderID)
	}
	return executed, nil
}

func (e *OrderEngine) validateRequest(req PlaceOrderRequest) error {
	if req.AccountID == "" {
		return &domain.ValidationError{Message: "account_id is required"}
	}
	if req.InstrumentID == "" {
		return &domain.ValidationError{Message: "instrument_id is required"}
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return &domain.ValidationError{Message: "side must be buy or sell"}
	}
	if req.Quantity <= 0 {
		return &domain.ValidationError{Message: "quantity must be > 0"}
	}
	if req.StopLoss != nil {
		if err := domain.CheckAmount(*req.StopLoss); err != nil {
			return &domain.ValidationError{Message: "stop_loss: " + err.Error()}
		}
	}
	if req.Target != nil {
		if err := domain.CheckAmount(*req.Target); err != nil {
			return &domain.ValidationError{Message: "target: " + err.Error()}
		}
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(e.now()) {
		return &domain.ValidationError{Message: "expires_at must be in the future"}
	}
	if utf8.RuneCountInString(req.Notes) > MaxNotesLength {
		return &domain.ValidationError{Message: fmt.Sprintf("notes must be at most %d characters", MaxNotesLength)}
	}
	return nil
}

// Execute fills a pending order at its snapshotted price. On failure the
// order stays pending and every partial mutation is undone.
func (e *OrderEngine) Execute(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	broker := e.brokerFor(o.AccountID)
	unlock := e.tokens.Lock(o.AccountID, broker)
	defer unlock()

	return e.execute(ctx, orderID, broker)
}

// execute runs a fill. The caller holds the tokens of the order's account
// and of broker.
func (e *OrderEngine) execute(ctx context.Context, orderID, broker string) (*domain.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusPending {
		return nil, domain.ErrOrderNotPending
	}

	fees := e.fees.Quote(o.Side, o.Symbol, o.Gross())
	tx := &fillTx{onUndoErr: func(err error) {
		e.logger.Error("fill rollback step failed", "order_id", orderID, "error", err)
	}}

	// Step 1: Settle cash.
	if o.Side == domain.OrderSideBuy {
		if err := e.ledger.Debit(o.AccountID, fees.Net); err != nil {
			return nil, err
		}
		tx.onRollback(func() error { return e.ledger.Credit(o.AccountID, fees.Net) })
	} else {
		if err := e.ledger.Credit(o.AccountID, fees.Net); err != nil {
			return nil, err
		}
		tx.onRollback(func() error { return e.ledger.Debit(o.AccountID, fees.Net) })
	}

	// Step 2: Update the position.
	_, before, err := e.holdings.applyFill(o.AccountID, o.InstrumentID, o.Side, o.Quantity, o.Price)
	if err != nil {
		tx.rollback()
		return nil, err
	}
	tx.onRollback(func() error {
		e.holdings.restore(o.AccountID, o.InstrumentID, before)
		return nil
	})

	// Step 3: Route commission for real-money fills.
	routed, err := e.router.RouteCommission(o.Mode, broker, fees.Commission)
	if err != nil {
		tx.rollback()
		return nil, err
	}
	if routed {
		tx.onRollback(func() error { return e.ledger.Debit(broker, fees.Commission) })
	}

	// Step 4: Transition to executed.
	executedAt := e.now()
	err = e.orders.Update(orderID, func(o *domain.Order) error {
		if !o.CanTransition(domain.OrderStatusExecuted) {
			return domain.ErrOrderNotPending
		}
		o.Status = domain.OrderStatusExecuted
		o.ExecutedAt = &executedAt
		o.UpdatedAt = executedAt
		return nil
	})
	if err != nil {
		tx.rollback()
		return nil, err
	}
	tx.onRollback(func() error {
		return e.orders.Update(orderID, func(o *domain.Order) error {
			o.Status = domain.OrderStatusPending
			o.ExecutedAt = nil
			o.UpdatedAt = executedAt
			return nil
		})
	})

	// Step 5: Journal the fill. Appends can't be undone, so this goes last.
	if _, err := e.journal.Record(ctx, o, fees, executedAt); err != nil {
		tx.rollback()
		return nil, fmt.Errorf("record fill: %w", err)
	}

	e.expiries.remove(orderID)
	e.logger.Info("order executed",
		"order_id", orderID,
		"account_id", o.AccountID,
		"symbol", o.Symbol,
		"side", o.Side,
		"quantity", o.Quantity,
		"price", domain.FormatAmount(o.Price),
		"net", domain.FormatAmount(fees.Net),
		"commission_routed", routed,
	)
	return e.orders.Get(orderID)
}

// Cancel cancels a pending order owned by accountID. Orders owned by other
// accounts are reported as not found, and a deactivated account cannot
// cancel. No balance is reversed.
func (e *OrderEngine) Cancel(ctx context.Context, orderID, accountID string) (*domain.Order, error) {
	if err := e.checkOwner(orderID, accountID); err != nil {
		return nil, err
	}
	unlock := e.tokens.Lock(accountID)
	defer unlock()

	account, err := e.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, domain.ErrAccountInactive
	}
	return e.transitionLocked(orderID, domain.OrderStatusCancelled, func(o *domain.Order, now time.Time) {
		o.CancelledAt = &now
	})
}

// ModifyPrice replaces the snapshotted price of a pending order without
// re-checking funds or holdings.
func (e *OrderEngine) ModifyPrice(ctx context.Context, orderID, accountID string, price decimal.Decimal) (*domain.Order, error) {
	if !price.IsPositive() {
		return nil, &domain.ValidationError{Message: "price must be > 0"}
	}
	if err := domain.CheckAmount(price); err != nil {
		return nil, &domain.ValidationError{Message: "price: " + err.Error()}
	}
	return e.modify(orderID, accountID, func(o *domain.Order) { o.Price = price })
}

// ModifyQuantity replaces the quantity of a pending order without
// re-checking funds or holdings.
func (e *OrderEngine) ModifyQuantity(ctx context.Context, orderID, accountID string, quantity int64) (*domain.Order, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Message: "quantity must be > 0"}
	}
	return e.modify(orderID, accountID, func(o *domain.Order) { o.Quantity = quantity })
}

func (e *OrderEngine) modify(orderID, accountID string, fn func(*domain.Order)) (*domain.Order, error) {
	if err := e.checkOwner(orderID, accountID); err != nil {
		return nil, err
	}
	unlock := e.tokens.Lock(accountID)
	defer unlock()

	err := e.orders.Update(orderID, func(o *domain.Order) error {
		if o.Status != domain.OrderStatusPending {
			return domain.ErrOrderNotPending
		}
		fn(o)
		o.UpdatedAt = e.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.orders.Get(orderID)
}

func (e *OrderEngine) checkOwner(orderID, accountID string) error {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return err
	}
	if o.AccountID != accountID {
		return domain.ErrOrderNotFound
	}
	return nil
}

// transition moves an order owned by accountID from pending to next under
// the account token.
func (e *OrderEngine) transition(orderID, accountID string, next domain.OrderStatus, stamp func(*domain.Order, time.Time)) (*domain.Order, error) {
	if err := e.checkOwner(orderID, accountID); err != nil {
		return nil, err
	}
	unlock := e.tokens.Lock(accountID)
	defer unlock()

	return e.transitionLocked(orderID, next, stamp)
}

// transitionLocked is transition for callers that already hold the
// account token.
func (e *OrderEngine) transitionLocked(orderID string, next domain.OrderStatus, stamp func(*domain.Order, time.Time)) (*domain.Order, error) {
	now := e.now()
	err := e.orders.Update(orderID, func(o *domain.Order) error {
		if !o.CanTransition(next) {
			return domain.ErrOrderNotPending
		}
		o.Status = next
		o.UpdatedAt = now
		stamp(o, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.expiries.remove(orderID)
	return e.orders.Get(orderID)
}

// ProcessExpired expires every pending order whose expiry is at or before
// now and returns how many it expired. Orders that were executed or
// cancelled in the meantime are skipped.
func (e *OrderEngine) ProcessExpired(ctx context.Context, now time.Time) int {
	expired := 0
	for _, entry := range e.expiries.due(now) {
		_, err := e.transition(entry.OrderID, entry.AccountID, domain.OrderStatusExpired, func(o *domain.Order, _ time.Time) {
			at := *o.ExpiresAt
			o.ExpiredAt = &at
		})
		switch {
		case err == nil:
			expired++
			e.logger.Info("order expired", "order_id", entry.OrderID, "account_id", entry.AccountID)
		case errors.Is(err, domain.ErrOrderNotPending), errors.Is(err, domain.ErrOrderNotFound):
		default:
			e.logger.Warn("order expiry failed", "order_id", entry.OrderID, "error", err)
			if o, err := e.orders.Get(entry.OrderID); err == nil {
				e.expiries.add(o) // retry on the next sweep
			}
		}
	}
	return expired
}

// ExecutePending retries execution of every pending, unexpired order and
// returns how many were executed.
func (e *OrderEngine) ExecutePending(ctx context.Context) int {
	executed := 0
	now := e.now()
	for _, o := range e.orders.ListPending() {
		if o.IsExpired(now) {
			continue
		}
		if _, err := e.Execute(ctx, o.OrderID); err != nil {
			e.logger.Debug("pending order not executed", "order_id", o.OrderID, "error", err)
			continue
		}
		executed++
	}
	return executed
}

// PendingExpiries returns the number of orders tracked for expiry.
func (e *OrderEngine) PendingExpiries() int {
	return e.expiries.len()
}
