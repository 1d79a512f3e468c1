package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the kind of participant an account belongs to.
type Role string

const (
	RoleRegularUser Role = "user"
	RoleBroker      Role = "broker"
	RoleAdmin       Role = "admin"
)

// KYCStatus is the Know-Your-Customer verification state of an account.
type KYCStatus string

const (
	KYCPending     KYCStatus = "pending"
	KYCApproved    KYCStatus = "approved"
	KYCRejected    KYCStatus = "rejected"
	KYCUnderReview KYCStatus = "under_review"
)

// AccountMode separates practice accounts from real-money accounts.
// It is fixed at registration and never derived from the balance.
type AccountMode string

const (
	AccountModeVirtual AccountMode = "virtual"
	AccountModeReal    AccountMode = "real"
)

// Account is a registered trading participant. Brokers use the same
// entity; their balance accumulates commission earnings.
type Account struct {
	AccountID string
	Name      string
	Role      Role
	KYCStatus KYCStatus
	Mode      AccountMode
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBroker reports whether the account can receive commission.
func (a *Account) IsBroker() bool {
	return a.Role == RoleBroker
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleRegularUser, RoleBroker, RoleAdmin:
		return true
	}
	return false
}

// ValidKYCStatus reports whether s is a known KYC status.
func ValidKYCStatus(s KYCStatus) bool {
	switch s {
	case KYCPending, KYCApproved, KYCRejected, KYCUnderReview:
		return true
	}
	return false
}

// ValidAccountMode reports whether m is a known account mode.
func ValidAccountMode(m AccountMode) bool {
	return m == AccountModeVirtual || m == AccountModeReal
}
