package domain

import "time"

// TokenPair is what a successful OTP check or refresh hands back: a short
// lived access token and the refresh token that can replace it. Both carry
// SessionID so a rotated pair stays tied to the original login.
type TokenPair struct {
	SessionID string

	AccessToken     string
	AccessExpiresAt time.Time

	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshToken is the server side record of an issued refresh token.
// TokenHash is cryptox.FingerprintToken of the signed JWT; the JWT itself is
// never stored. A record is usable once: rotation revokes it.
type RefreshToken struct {
	ID        string
	UserID    string
	SessionID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
