package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch means the hash parsed but the password is wrong.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrMalformedHash means the stored value isn't an argon2id PHC string.
	ErrMalformedHash = errors.New("malformed password hash")
)

// argonParams are the Argon2id cost settings recorded in every hash. New
// hashes use passwordParams; verification uses whatever the hash says so
// older hashes keep working after the settings change.
type argonParams struct {
	memory  uint32 // KiB
	time    uint32
	threads uint8
}

var passwordParams = argonParams{memory: 19 * 1024, time: 2, threads: 1}

const (
	passwordSaltLen = 16
	passwordKeyLen  = 32
)

// phc is a decoded "$argon2id$v=19$m=..,t=..,p=..$salt$key" string.
type phc struct {
	params argonParams
	salt   []byte
	key    []byte
}

func (h phc) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.memory, h.params.time, h.params.threads,
		enc.EncodeToString(h.salt), enc.EncodeToString(h.key))
}

func parsePHC(s string) (phc, error) {
	fields := strings.Split(s, "$")
	if len(fields) != 6 || fields[0] != "" {
		return phc{}, fmt.Errorf("%w: want 6 fields, got %d", ErrMalformedHash, len(fields))
	}
	if fields[1] != "argon2id" {
		return phc{}, fmt.Errorf("%w: algorithm %q", ErrMalformedHash, fields[1])
	}
	if fields[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return phc{}, fmt.Errorf("%w: version %q", ErrMalformedHash, fields[2])
	}

	var h phc
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.params.memory, &h.params.time, &h.params.threads); err != nil {
		return phc{}, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return phc{}, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return phc{}, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}
	if len(h.key) == 0 {
		return phc{}, fmt.Errorf("%w: empty key", ErrMalformedHash)
	}
	return h, nil
}

func derive(password string, p argonParams, salt []byte, keyLen int) []byte {
	// #nosec G115 -- keyLen comes from a decoded hash or passwordKeyLen
	return argon2.IDKey([]byte(password+GetPepper()), salt, p.time, p.memory, p.threads, uint32(keyLen))
}

// HashPassword returns a salted, peppered Argon2id hash in PHC form.
func HashPassword(password string) (string, error) {
	salt := make([]byte, passwordSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return phc{
		params: passwordParams,
		salt:   salt,
		key:    derive(password, passwordParams, salt, passwordKeyLen),
	}.String(), nil
}

// VerifyPassword checks password against a hash from HashPassword. It
// returns ErrPasswordMismatch for a wrong password and ErrMalformedHash
// when the stored value can't be read.
func VerifyPassword(password, encoded string) error {
	h, err := parsePHC(encoded)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(derive(password, h.params, h.salt, len(h.key)), h.key) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

var dummyHash = sync.OnceValue(func() string {
	pw, err := GeneratePassword()
	if err == nil {
		var h string
		if h, err = HashPassword(pw); err == nil {
			return h
		}
	}
	// Fixed fallback, still parses so the verify cost is paid
	return phc{params: passwordParams, salt: make([]byte, passwordSaltLen), key: make([]byte, passwordKeyLen)}.String()
})

// DummyHash is verified against when a login names an unknown email, so
// unknown and known emails take the same time to reject.
func DummyHash() string { return dummyHash() }

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a random 16 character alphanumeric password,
// used by bankctl when an operator doesn't supply one.
func GeneratePassword() (string, error) {
	out := make([]byte, 16)
	limit := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
