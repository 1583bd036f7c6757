package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories hang off it as methods so a Tx can hand
// out the same repos bound to the transaction, and so nobody accidentally
// opens a transaction inside a transaction.
type Store interface {
	Users() Users
	Accounts() Accounts
	Transactions() Transactions
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The transaction holds the write lock from the start (row locks on
	// postgres, a reserved lock on sqlite) so read-modify-write sequences
	// inside it are serialised per row.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByEmailForUpdate reads the user and locks the row until the
	// surrounding transaction ends.
	GetUserByEmailForUpdate(ctx context.Context, email string) (domain.User, error)

	// IncrementFailedLoginAttempts bumps the counter atomically and returns
	// the new value.
	IncrementFailedLoginAttempts(ctx context.Context, userID string) (int, error)

	// LockUser opens a lockout window ending at until and zeroes the counter.
	LockUser(ctx context.Context, userID string, until time.Time) error

	// ResetLoginState clears the counter and any lockout window.
	ResetLoginState(ctx context.Context, userID string) error

	// SetOTP replaces the user's pending OTP. Returns ErrAlreadyExists when
	// another user currently holds the same fingerprint.
	SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error

	// GetUserByActiveOTP finds the user holding otpHash with an expiry after
	// now, locking the row.
	GetUserByActiveOTP(ctx context.Context, otpHash string, now time.Time) (domain.User, error)

	// ConsumeOTP clears the OTP only if it is still otpHash. Returns
	// ErrNotFound when someone else got there first.
	ConsumeOTP(ctx context.Context, userID, otpHash string) error

	// ClearExpiredOTPs drops OTPs expired at now and reports how many.
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)

	SetActive(ctx context.Context, userID string, active bool) error
}

type Accounts interface {
	// CreateAccount returns ErrAlreadyExists on an account number clash.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByNumber(ctx context.Context, number string) (domain.Account, error)

	// GetAccountByNumberForUpdate reads the account and locks the row until
	// the surrounding transaction ends.
	GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error)

	UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error

	// UpdateAccountStatus returns ErrNotFound for an unknown number.
	UpdateAccountStatus(ctx context.Context, number string, status domain.AccountStatus) error
}

type Transactions interface {
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// ListTransactions returns the ledger of an account, oldest first.
	ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token record by fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked on an unrevoked record. Returns
	// ErrNotFound when the record is missing or already revoked, which is
	// how rotation detects a replayed token.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
