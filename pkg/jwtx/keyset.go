package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet is the set of public keys tokens are verified against, in the
// order they were added. The JWKS endpoint publishes it as is.
type KeySet struct {
	mu      sync.RWMutex
	entries []JWK
	byKID   map[string]ed25519.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{byKID: make(map[string]ed25519.PublicKey)}
}

// AddJWK registers a public key. Only Ed25519 OKP keys are accepted; a
// repeated kid replaces the earlier key.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := parseJWKToKey(j)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, dup := k.byKID[j.Kid]; dup {
		for i := range k.entries {
			if k.entries[i].Kid == j.Kid {
				k.entries[i] = j
			}
		}
	} else {
		k.entries = append(k.entries, j)
	}
	k.byKID[j.Kid] = pub
	return nil
}

func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pub, ok := k.byKID[kid]; ok {
		return pub, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a copy safe to serialise while keys are added.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK(nil), k.entries...)}
}

// IsReady reports whether any key can verify tokens yet.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.byKID) > 0
}

func parseJWKToKey(j JWK) (ed25519.PublicKey, error) {
	if j.Kty != "OKP" {
		return nil, errors.New("jwtx: unsupported kty " + j.Kty)
	}
	if j.Crv != "Ed25519" {
		return nil, errors.New("jwtx: unsupported OKP curve " + j.Crv)
	}

	raw, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return ed25519.PublicKey(raw), nil
}
