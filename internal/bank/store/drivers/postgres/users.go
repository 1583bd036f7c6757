package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, active, failed_login_attempts, locked_until,
	otp_hash, otp_expires_at, created_at, updated_at`

type usersRepo struct {
	db dbtx

	// tx is set only when the repo is bound to a transaction by txStore.
	tx pgx.Tx
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Active, &u.FailedLoginAttempts, &u.LockedUntil,
		&u.OTPHash, &u.OTPExpiresAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.LockedUntil = utcPtr(u.LockedUntil)
	u.OTPExpiresAt = utcPtr(u.OTPExpiresAt)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	ts := now()
	query, args, err := psql.Insert("users").
		Columns("id", "email", "password_hash", "active", "created_at", "updated_at").
		Values(u.ID, u.Email, u.PasswordHash, u.Active, ts, ts).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) GetUserByEmailForUpdate(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 FOR UPDATE`, email))
}

func (r *usersRepo) IncrementFailedLoginAttempts(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = $1
		WHERE id = $2
		RETURNING failed_login_attempts`,
		now(), userID,
	).Scan(&n)
	return n, mapNotFound(err)
}

func (r *usersRepo) LockUser(ctx context.Context, userID string, until time.Time) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE users
		SET locked_until = $1, failed_login_attempts = 0, updated_at = $2
		WHERE id = $3`,
		until.UTC(), now(), userID,
	))
}

func (r *usersRepo) ResetLoginState(ctx context.Context, userID string) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE users
		SET locked_until = NULL, failed_login_attempts = 0, updated_at = $1
		WHERE id = $2`,
		now(), userID,
	))
}

// SetOTP runs inside a savepoint when called in a transaction: a unique
// violation aborts the whole postgres transaction otherwise, and the caller
// wants to retry with a different code.
func (r *usersRepo) SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error {
	if r.tx == nil {
		return r.setOTP(ctx, userID, otpHash, expiresAt)
	}

	sp, err := r.tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := (&usersRepo{db: sp}).setOTP(ctx, userID, otpHash, expiresAt); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func (r *usersRepo) setOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET otp_hash = $1, otp_expires_at = $2, updated_at = $3
		WHERE id = $4`,
		otpHash, expiresAt.UTC(), now(), userID,
	)
	return expectOne(tag, mapConflict(err))
}

func (r *usersRepo) GetUserByActiveOTP(ctx context.Context, otpHash string, at time.Time) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE otp_hash = $1 AND otp_expires_at > $2
		FOR UPDATE`,
		otpHash, at.UTC(),
	))
}

func (r *usersRepo) ConsumeOTP(ctx context.Context, userID, otpHash string) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL, updated_at = $1
		WHERE id = $2 AND otp_hash = $3`,
		now(), userID, otpHash,
	))
}

func (r *usersRepo) ClearExpiredOTPs(ctx context.Context, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL
		WHERE otp_hash IS NOT NULL AND otp_expires_at <= $1`,
		at.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return expectOne(r.db.Exec(ctx, `UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`,
		active, now(), userID,
	))
}
