package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	DefaultOTPTTL    = 5 * time.Minute
	DefaultOTPDigits = 6

	MinOTPDigits = 6
	MaxOTPDigits = 8

	// minOTPSpacePerMinute bounds online guessing: a code space that is
	// too small for the TTL makes a guess within the window too likely.
	minOTPSpacePerMinute = 1e5

	// issue retries when a freshly generated code is held by another user
	maxOTPIssueAttempts = 5
)

// ValidateOTPPolicy rejects digit/TTL combinations that leave too few codes
// per minute of validity.
func ValidateOTPPolicy(digits int, ttl time.Duration) error {
	if digits < MinOTPDigits || digits > MaxOTPDigits {
		return fmt.Errorf("otp digits must be between %d and %d, got %d", MinOTPDigits, MaxOTPDigits, digits)
	}
	if ttl <= 0 {
		return errors.New("otp ttl must be positive")
	}

	minutes := math.Max(ttl.Minutes(), 1)
	if math.Pow10(digits)/minutes < minOTPSpacePerMinute {
		return fmt.Errorf("otp ttl %s is too long for %d digit codes", ttl, digits)
	}
	return nil
}

// OTPService issues and checks the second factor. Only a fingerprint of a
// code is stored, and a code is looked up by value alone.
type OTPService struct {
	TTL    time.Duration
	Digits int
}

func (s *OTPService) digits() int {
	if s.Digits == 0 {
		return DefaultOTPDigits
	}
	return s.Digits
}

// Issue stores a new code for u, replacing any pending one, and returns it
// with its expiry.
func (s *OTPService) Issue(ctx context.Context, tx store.Tx, u domain.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.TTL)

	for range maxOTPIssueAttempts {
		code, err := generateOTP(s.digits())
		if err != nil {
			return "", time.Time{}, err
		}

		err = tx.Users().SetOTP(ctx, u.ID, cryptox.FingerprintToken(code), expiresAt)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", time.Time{}, fmt.Errorf("store otp: %w", err)
		}
		return code, expiresAt, nil
	}

	return "", time.Time{}, errors.New("otp: could not find a free code")
}

// Verify finds the user holding an unexpired code. Unknown and expired
// codes are indistinguishable.
func (s *OTPService) Verify(ctx context.Context, tx store.Tx, code string, now time.Time) (domain.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.User{}, ErrOTPMissing
	}
	if !isNumeric(code) {
		return domain.User{}, ErrOTPInvalid
	}

	u, err := tx.Users().GetUserByActiveOTP(ctx, cryptox.FingerprintToken(code), now)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrOTPInvalid
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Consume clears the code so it can't be replayed. Losing a race with a
// concurrent verification reads as an invalid code.
func (s *OTPService) Consume(ctx context.Context, tx store.Tx, u domain.User, code string) error {
	err := tx.Users().ConsumeOTP(ctx, u.ID, cryptox.FingerprintToken(strings.TrimSpace(code)))
	if errors.Is(err, store.ErrNotFound) {
		return ErrOTPInvalid
	}
	return err
}

// generateOTP derives a numeric HOTP code from a throwaway secret and
// counter, both random.
func generateOTP(digits int) (string, error) {
	secret, err := cryptox.GenerateBase32Secret(cryptox.HOTPSecretSize)
	if err != nil {
		return "", err
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}

	return hotp.GenerateCodeCustom(secret, binary.BigEndian.Uint64(buf[:]), hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
}

func isNumeric(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
