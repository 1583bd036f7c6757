package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, user_id, account_number, currency, balance, status, created_at, updated_at`

type accountsRepo struct {
	db dbtx
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a       domain.Account
		balance string
		status  string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.Currency, &balance, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %s: bad balance %q: %w", a.AccountNumber, balance, err)
	}
	a.Status = domain.AccountStatus(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, account_number, currency, balance, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.AccountNumber, a.Currency, a.Balance.StringFixed(2), string(a.Status), ts, ts,
	)
	return mapConflict(err)
}

func (r *accountsRepo) GetAccountByNumber(ctx context.Context, number string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = ?`, number))
}

// GetAccountByNumberForUpdate relies on the immediate transaction for
// exclusion, sqlite has no row locks.
func (r *accountsRepo) GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return r.GetAccountByNumber(ctx, number)
}

func (r *accountsRepo) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		balance.StringFixed(2), now(), accountID,
	))
}

func (r *accountsRepo) UpdateAccountStatus(ctx context.Context, number string, status domain.AccountStatus) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE accounts SET status = ?, updated_at = ? WHERE account_number = ?`,
		string(status), now(), number,
	))
}
