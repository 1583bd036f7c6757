package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountFrozen   AccountStatus = "frozen"
	AccountClosed   AccountStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountInactive, AccountFrozen, AccountClosed:
		return true
	}
	return false
}

type Account struct {
	ID            string
	UserID        string
	AccountNumber string
	Currency      string
	Balance       decimal.Decimal
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TransactionKind string

const TransactionDeposit TransactionKind = "deposit"

// Transaction is an append-only ledger entry written alongside every
// balance change.
type Transaction struct {
	ID           string
	AccountID    string
	Kind         TransactionKind
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	PerformedBy  string
	CreatedAt    time.Time
}
