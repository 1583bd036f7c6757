package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWK_PEM_Ed25519(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pemStr, err := NewEd25519JWK("test-key-id", "sig", "EdDSA", publicKey).PEM()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))

	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block, "PEM block should be valid")
	require.Equal(t, "PUBLIC KEY", block.Type)

	parsedKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	require.Equal(t, publicKey, parsedKey)
}

func TestJWK_RejectsForeignKeys(t *testing.T) {
	tests := []struct {
		name string
		jwk  JWK
		want string
	}{
		{"rsa", JWK{Kty: "RSA", Kid: "k"}, "unsupported kty"},
		{"x448", JWK{Kty: "OKP", Crv: "X448", X: "AAAA"}, "unsupported OKP curve"},
		{"bad base64", JWK{Kty: "OKP", Crv: "Ed25519", X: "!!!"}, "illegal base64"},
		{"short key", JWK{Kty: "OKP", Crv: "Ed25519", X: "AAAA"}, "invalid Ed25519 public key size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.jwk.PEM()
			require.ErrorContains(t, err, tt.want)

			require.Error(t, NewKeySet().AddJWK(tt.jwk))
		})
	}
}

func TestJWKS_JSONShape(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.NoError(t, ks.AddJWK(NewEd25519JWK("k1", "sig", "EdDSA", publicKey)))

	raw, err := json.Marshal(ks.PublicJWKS())
	require.NoError(t, err)

	var out map[string][]map[string]string
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out["keys"], 1)
	require.Equal(t, "OKP", out["keys"][0]["kty"])
	require.Equal(t, "k1", out["keys"][0]["kid"])
	require.NotContains(t, out["keys"][0], "n")
}
