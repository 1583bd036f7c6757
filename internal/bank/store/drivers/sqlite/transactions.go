package sqlite

import (
	"context"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/shopspring/decimal"
)

type transactionsRepo struct {
	db dbtx
}

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, kind, amount, balance_after, performed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, string(t.Kind), t.Amount.StringFixed(2), t.BalanceAfter.StringFixed(2), t.PerformedBy, now(),
	)
	return mapConflict(err)
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, kind, amount, balance_after, performed_by, created_at
		FROM transactions WHERE account_id = ?
		ORDER BY created_at, id`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Transaction
	for rows.Next() {
		var (
			t             domain.Transaction
			kind          string
			amount, after string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &kind, &amount, &after, &t.PerformedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if t.BalanceAfter, err = decimal.NewFromString(after); err != nil {
			return nil, err
		}
		t.Kind = domain.TransactionKind(kind)
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
