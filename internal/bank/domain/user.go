package domain

import "time"

// User is a bank customer (or teller) able to log in.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded
	Active       bool

	// Lockout state. FailedLoginAttempts resets when a lockout window is
	// entered and on a successful login.
	FailedLoginAttempts int
	LockedUntil         *time.Time

	// Pending one-time password, stored as a fingerprint. At most one per user.
	OTPHash      *string
	OTPExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLockedOut reports whether a lockout window is active at now.
func (u User) IsLockedOut(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
