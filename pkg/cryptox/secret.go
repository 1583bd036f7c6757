package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"fmt"
)

// HOTPSecretSize is the RFC 4226 recommended shared secret length in bytes.
const HOTPSecretSize = 20

var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateBase32Secret returns size random bytes as unpadded base32, the
// encoding pquerna/otp expects for shared secrets.
func GenerateBase32Secret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: secret size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base32NoPad.EncodeToString(buf), nil
}

// FingerprintToken hashes a one-time code or refresh token for storage.
// The database only ever sees the fingerprint, so lookups hash the
// presented value and compare. Output is 43 chars of base64url.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
