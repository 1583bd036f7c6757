package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	ts := now()
	query, args, err := psql.Insert("refresh_tokens").
		Columns("id", "user_id", "token_hash", "session_id", "expires_at", "revoked", "created_at", "updated_at").
		Values(t.ID, t.UserID, t.TokenHash, t.SessionID, t.ExpiresAt.UTC(), t.Revoked, ts, ts).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return mapConflict(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, session_id, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = $1`,
		hash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.SessionID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, updated_at = $1
		WHERE token_hash = $2 AND NOT revoked`,
		now(), hash,
	))
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, at.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
