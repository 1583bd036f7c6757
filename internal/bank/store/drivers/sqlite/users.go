package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
)

const userColumns = `id, email, password_hash, active, failed_login_attempts, locked_until,
	otp_hash, otp_expires_at, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u           domain.User
		lockedUntil sql.NullTime
		otpHash     sql.NullString
		otpExpires  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Active, &u.FailedLoginAttempts, &lockedUntil,
		&otpHash, &otpExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.LockedUntil = mapNullTimePtr(lockedUntil)
	u.OTPHash = mapNullStringPtr(otpHash)
	u.OTPExpiresAt = mapNullTimePtr(otpExpires)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Active, ts, ts,
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// GetUserByEmailForUpdate is a plain read, the immediate transaction
// already holds the database write lock.
func (r *usersRepo) GetUserByEmailForUpdate(ctx context.Context, email string) (domain.User, error) {
	return r.GetUserByEmail(ctx, email)
}

func (r *usersRepo) IncrementFailedLoginAttempts(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = ?
		WHERE id = ?
		RETURNING failed_login_attempts`,
		now(), userID,
	).Scan(&n)
	return n, mapNotFound(err)
}

func (r *usersRepo) LockUser(ctx context.Context, userID string, until time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users
		SET locked_until = ?, failed_login_attempts = 0, updated_at = ?
		WHERE id = ?`,
		until.UTC(), now(), userID,
	))
}

func (r *usersRepo) ResetLoginState(ctx context.Context, userID string) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users
		SET locked_until = NULL, failed_login_attempts = 0, updated_at = ?
		WHERE id = ?`,
		now(), userID,
	))
}

func (r *usersRepo) SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_hash = ?, otp_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		otpHash, expiresAt.UTC(), now(), userID,
	)
	return expectOne(res, mapConflict(err))
}

func (r *usersRepo) GetUserByActiveOTP(ctx context.Context, otpHash string, at time.Time) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE otp_hash = ? AND otp_expires_at > ?`,
		otpHash, at.UTC(),
	))
}

func (r *usersRepo) ConsumeOTP(ctx context.Context, userID, otpHash string) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL, updated_at = ?
		WHERE id = ? AND otp_hash = ?`,
		now(), userID, otpHash,
	))
}

func (r *usersRepo) ClearExpiredOTPs(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL
		WHERE otp_hash IS NOT NULL AND otp_expires_at <= ?`,
		at.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		active, now(), userID,
	))
}
