package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/teller/pkg/cryptox"
)

// KeyManager bundles the session signing key with the KeySet publishing it
// and a verifier checking tokens against it.
type KeyManager struct {
	Signer   *Signer
	Verifier Verifier
	KeySet   *KeySet
}

type KeyManagerOptions struct {
	// Issuer is the "iss" claim enforced on verification.
	Issuer string

	// Audience values the token must contain. Empty means no audience check.
	Audience []string

	// PrivateKeyPEM is a PKCS8 Ed25519 key. When nil an ephemeral key is
	// generated and every session dies with the process.
	PrivateKeyPEM []byte

	// KeyID overrides the kid header, which defaults to a thumbprint of
	// the public key.
	KeyID string

	// Now is the verifier's clock, time.Now when nil.
	Now func() time.Time
}

func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}

	pemKey := opts.PrivateKeyPEM
	if pemKey == nil {
		var err error
		if pemKey, err = cryptox.GenerateEd25519Key(); err != nil {
			return nil, err
		}
	}

	signer, err := NewSigner(opts.KeyID, pemKey)
	if err != nil {
		return nil, err
	}

	keys := NewKeySet()
	if err := keys.AddJWK(signer.PublicJWK()); err != nil {
		return nil, fmt.Errorf("jwtx: publish signing key: %w", err)
	}

	verifier := NewVerifier(keys, opts.Issuer, opts.Audience)
	verifier.Now = opts.Now

	return &KeyManager{
		Signer:   signer,
		Verifier: verifier,
		KeySet:   keys,
	}, nil
}

// IsReady reports whether tokens can be signed and verified.
func (km *KeyManager) IsReady() bool {
	return km != nil && km.Signer != nil && km.KeySet.IsReady()
}
