package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a token and returns its claims. The token type is left
// to callers, which know whether they expect an access or refresh token.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTokenType   = errors.New("jwtx: wrong token type")
)

// TokenVerifier accepts EdDSA tokens signed by a key in its KeySet and
// issued by issuer for one of audience.
type TokenVerifier struct {
	// Now is the clock exp and nbf are checked against. It defaults to
	// time.Now and should be the clock the tokens were issued with.
	Now func() time.Time

	keys     *KeySet
	issuer   string
	audience []string
	parser   *jwt.Parser
}

func NewVerifier(keys *KeySet, issuer string, audience []string) *TokenVerifier {
	v := &TokenVerifier{keys: keys, issuer: issuer, audience: audience}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	return v
}

func (v *TokenVerifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v *TokenVerifier) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, v.lookupKey)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	default:
		return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateTime(v.now(), 0); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (v *TokenVerifier) lookupKey(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrUnknownKID
	}
	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("jwtx: kid %q: %w", kid, err)
	}
	return pub, nil
}
