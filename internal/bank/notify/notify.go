// Package notify delivers the side effects of the auth and deposit flows:
// the OTP email, the lockout notice and the deposit confirmation. Delivery is synchronous, the
// caller decides whether a failure matters.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OTPMessage asks for a one-time password to be sent to the user.
type OTPMessage struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LockoutMessage tells a user their account was locked after too many
// failed logins, and until when.
type LockoutMessage struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	LockedUntil time.Time `json:"locked_until"`
}

// DepositMessage reports a committed deposit.
type DepositMessage struct {
	TransactionID string          `json:"transaction_id"`
	AccountNumber string          `json:"account_number"`
	HolderEmail   string          `json:"holder_email"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	PerformedBy   string          `json:"performed_by"`
	At            time.Time       `json:"at"`
}

type Notifier interface {
	OTPIssued(ctx context.Context, msg OTPMessage) error
	LockedOut(ctx context.Context, msg LockoutMessage) error
	DepositCompleted(ctx context.Context, msg DepositMessage) error
}
