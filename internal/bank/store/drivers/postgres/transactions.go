package postgres

import (
	"context"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/shopspring/decimal"
)

type transactionsRepo struct {
	db dbtx
}

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (id, account_id, kind, amount, balance_after, performed_by, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7)`,
		t.ID, t.AccountID, string(t.Kind), t.Amount.StringFixed(2), t.BalanceAfter.StringFixed(2), t.PerformedBy, now(),
	)
	return mapConflict(err)
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	query, args, err := psql.
		Select("id", "account_id", "kind", "amount::text", "balance_after::text", "performed_by", "created_at").
		From("transactions").
		Where("account_id = ?", accountID).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
