package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountAlreadyExists    = errors.New("account_already_exists")
	ErrAccountNotFound         = errors.New("account_not_found")
	ErrAccountInactive         = errors.New("account_inactive")
	ErrInstrumentAlreadyExists = errors.New("instrument_already_exists")
	ErrInstrumentUnavailable   = errors.New("instrument_unavailable")
	ErrMarketClosed            = errors.New("market_closed")
	ErrKYCRequired             = errors.New("kyc_required")
	ErrInsufficientFunds       = errors.New("insufficient_funds")
	ErrInsufficientHoldings    = errors.New("insufficient_holdings")
	ErrOrderNotFound           = errors.New("order_not_found")
	ErrOrderNotPending         = errors.New("order_not_pending")
	ErrPositionNotFound        = errors.New("position_not_found")
	ErrBrokerUnavailable       = errors.New("broker_unavailable")
	ErrCommissionRateNotFound  = errors.New("commission_rate_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
