package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL is the lifetime of an access token when the
	// service isn't configured otherwise.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of a refresh token when the
	// service isn't configured otherwise.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token types carried in the "typ" claim. A refresh token presented as an
// access token (or the other way round) must be rejected.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the session token claims issued by the bank.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, shared by every access/refresh pair minted from one login.
	SID string `json:"sid,omitempty"`

	// TokenType is either TokenTypeAccess or TokenTypeRefresh.
	TokenType string `json:"typ,omitempty"`

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`
}

// SessionClaimsParams groups the inputs to NewSessionClaims.
type SessionClaimsParams struct {
	Subject   string
	SessionID string
	TokenType string
	Email     string
	Issuer    string
	Audience  []string
	TTL       time.Duration
	Now       time.Time
}

// NewSessionClaims builds minimally-correct claims for one token of a
// session pair.
func NewSessionClaims(p SessionClaimsParams) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings(p.Audience),
			IssuedAt:  jwt.NewNumericDate(p.Now),
			NotBefore: jwt.NewNumericDate(p.Now),
			ExpiresAt: jwt.NewNumericDate(p.Now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		SID:       p.SessionID,
		TokenType: p.TokenType,
		Email:     p.Email,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two
// tokens minted in the same second for the same session still differ.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer enforces "iss". An empty expectation accepts anything.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience passes when "aud" names any of expected, or expected is
// empty.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 || slices.ContainsFunc(expected, func(a string) bool {
		return slices.Contains(c.Audience, a)
	}) {
		return nil
	}
	return ErrAudience
}

func (c *Claims) ValidateType(expected string) error {
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateTime checks "exp" and "nbf" against at, allowing leeway either
// way for clock skew. Absent claims are not enforced.
func (c *Claims) ValidateTime(at time.Time, leeway time.Duration) error {
	switch {
	case c.ExpiresAt != nil && at.After(c.ExpiresAt.Add(leeway)):
		return ErrExpired
	case c.NotBefore != nil && at.Before(c.NotBefore.Add(-leeway)):
		return ErrNotYetValid
	}
	return nil
}
