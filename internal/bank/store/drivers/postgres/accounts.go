package postgres

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/shopspring/decimal"
)

// balance goes over the wire as text so no precision is lost to float
// conversion on either side.
const accountColumns = `id, user_id, account_number, currency, balance::text, status, created_at, updated_at`

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
	query, args, err := psql.Insert("accounts").
		Columns("id", "user_id", "account_number", "currency", "balance", "status", "created_at", "updated_at").
		Values(a.ID, a.UserID, a.AccountNumber, a.Currency, a.Balance.StringFixed(2), string(a.Status), ts, ts).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return mapConflict(err)
}

func (r *accountsRepo) GetAccountByNumber(ctx context.Context, number string) (domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number))
}

func (r *accountsRepo) GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 FOR UPDATE`, number))
}

func (r *accountsRepo) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE accounts SET balance = $1::numeric, updated_at = $2 WHERE id = $3`,
		balance.StringFixed(2), now(), accountID,
	))
}

func (r *accountsRepo) UpdateAccountStatus(ctx context.Context, number string, status domain.AccountStatus) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE accounts SET status = $1, updated_at = $2 WHERE account_number = $3`,
		string(status), now(), number,
	))
}
