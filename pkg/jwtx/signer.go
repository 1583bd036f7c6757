package jwtx

import (
	"crypto/ed25519"
	"fmt"

	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Signer mints session tokens with the service's Ed25519 key. Every token
// carries the kid of its JWKS entry.
type Signer struct {
	kid string
	key ed25519.PrivateKey
}

// NewSigner loads a PKCS8 PEM key. An empty kid is derived from the public
// key, so a key kept on disk keeps its kid across restarts.
func NewSigner(kid string, pemKey []byte) (*Signer, error) {
	key, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}
	if kid == "" {
		kid = thumbprintKID(key.Public().(ed25519.PublicKey))
	}
	return &Signer{kid: kid, key: key}, nil
}

func (s *Signer) KID() string { return s.kid }

func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK is the JWKS entry verifiers need for this signer's tokens.
func (s *Signer) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, "sig", jwt.SigningMethodEdDSA.Alg(), s.key.Public().(ed25519.PublicKey))
}

func thumbprintKID(pub ed25519.PublicKey) string {
	return "teller-" + cryptox.FingerprintToken(string(pub))[:16]
}
