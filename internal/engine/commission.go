package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
)

// BrokerResolver returns the broker that earns an account's commission.
type BrokerResolver interface {
	ResolveBrokerFor(accountID string) (brokerID string, ok bool)
}

// CommissionRouter credits commission from real-money fills to a broker.
type CommissionRouter struct {
	accounts AccountStore
	ledger   *AccountLedger
	logger   *slog.Logger
}

// NewCommissionRouter creates a CommissionRouter.
func NewCommissionRouter(accounts AccountStore, ledger *AccountLedger, logger *slog.Logger) *CommissionRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommissionRouter{accounts: accounts, ledger: ledger, logger: logger}
}

// RouteCommission credits amount to brokerID when mode is real and reports
// whether it did. Virtual fills are a no-op, and so are real fills with no
// broker resolved (empty brokerID); the commission then stays unrouted. A
// named broker must be an active account with the broker role, otherwise
// domain.ErrBrokerUnavailable is returned.
func (r *CommissionRouter) RouteCommission(mode domain.AccountMode, brokerID string, amount decimal.Decimal) (bool, error) {
	if mode != domain.AccountModeReal {
		return false, nil
	}
	if brokerID == "" {
		r.logger.Warn("no broker resolved; commission not routed", "amount", domain.FormatAmount(amount))
		return false, nil
	}
	b, err := r.accounts.Get(brokerID)
	if err != nil || !b.IsBroker() || !b.Active {
		return false, fmt.Errorf("%w: %s", domain.ErrBrokerUnavailable, brokerID)
	}
	if err := r.ledger.Credit(brokerID, amount); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrBrokerUnavailable, err)
	}
	r.logger.Info("commission routed", "broker_id", brokerID, "amount", domain.FormatAmount(amount))
	return true, nil
}
