package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// Session tokens are signed with one Ed25519 key, stored as PKCS8 PEM.
const pkcs8BlockType = "PRIVATE KEY"

var ErrSigningKey = errors.New("cryptox: not a PKCS8 Ed25519 private key")

// GenerateEd25519Key returns a fresh signing key as PKCS8 PEM.
func GenerateEd25519Key() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate signing key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: encode signing key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pkcs8BlockType, Bytes: der}), nil
}

// ParseEd25519Key decodes a PEM produced by GenerateEd25519Key.
func ParseEd25519Key(pemKey []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != pkcs8BlockType {
		return nil, ErrSigningKey
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningKey, err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrSigningKey
	}
	return key, nil
}

// LoadOrGenerateEd25519Key returns the key stored at path, generating and
// persisting one the first time. Replicas sharing the file sign with the
// same key, so sessions survive restarts and load balancing.
func LoadOrGenerateEd25519Key(path string) ([]byte, error) {
	pemKey, err := loadOrCreateSecretFile(path, GenerateEd25519Key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: signing key %s: %w", path, err)
	}
	if _, err := ParseEd25519Key(pemKey); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pemKey, nil
}
