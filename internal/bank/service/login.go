package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/notify"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// LoginService runs the two step login: credentials then OTP. Each step is
// one store transaction holding the user row, so the lockout counter and
// the OTP can't race.
type LoginService struct {
	Store    store.Store
	Lockout  *LockoutGovernor
	OTP      *OTPService
	Sessions *SessionService
	Notifier notify.Notifier
	Metrics  *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// LoginResult is returned once an OTP has been sent.
type LoginResult struct {
	Email        string
	OTPExpiresAt time.Time
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and, on success, sends an OTP. Unknown emails
// and wrong passwords both come back as ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)
	email = NormalizeEmail(email)
	now := s.now()

	var (
		outcome     error
		user        domain.User
		code        string
		expires     time.Time
		lockedUntil time.Time
	)

	// Rejections are recorded in outcome and the transaction commits, the
	// failed attempt counter has to stick even though the login fails.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByEmailForUpdate(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash())
			outcome = ErrInvalidCredentials
			return nil
		}
		if err != nil {
			return err
		}

		if s.Lockout.IsLockedOut(u, now) {
			outcome = ErrLockedOut
			return nil
		}

		if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
			if !errors.Is(err, cryptox.ErrPasswordMismatch) {
				l.Error("stored password hash unusable", "user_id", u.ID, "error", err)
			}
			if !u.Active {
				outcome = ErrAccountInactive
				return nil
			}

			locked, err := s.Lockout.RecordFailure(ctx, tx, u, now)
			if err != nil {
				return err
			}
			if locked {
				outcome = ErrExceededAttempts
				user, lockedUntil = u, now.Add(s.Lockout.Duration)
			} else {
				outcome = ErrInvalidCredentials
			}
			return nil
		}

		if !u.Active {
			outcome = ErrAccountInactive
			return nil
		}

		if err := s.Lockout.ResetOnSuccess(ctx, tx, u); err != nil {
			return err
		}

		user = u
		code, expires, err = s.OTP.Issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		s.Metrics.ObserveLogin("error")
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	if outcome != nil {
		s.Metrics.ObserveLogin(outcome.Error())
		l.Info("login rejected", "email", slogx.MaskEmail(email), "reason", outcome.Error())
		if errors.Is(outcome, ErrExceededAttempts) {
			s.notifyLockout(ctx, user, lockedUntil)
		}
		return LoginResult{}, outcome
	}

	err = s.Notifier.OTPIssued(ctx, notify.OTPMessage{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: expires,
	})
	if err != nil {
		s.Metrics.ObserveLogin("error")
		// The user never saw this code; don't leave it live. Only clears the
		// code if no later login replaced it.
		fp := cryptox.FingerprintToken(code)
		if cerr := s.Store.Users().ConsumeOTP(context.WithoutCancel(ctx), user.ID, fp); cerr != nil && !errors.Is(cerr, store.ErrNotFound) {
			l.Error("clearing undelivered otp failed", "user_id", user.ID, "error", cerr)
		}
		return LoginResult{}, fmt.Errorf("send otp: %w", err)
	}

	s.Metrics.ObserveLogin("otp_sent")
	l.Info("otp sent for login", "user_id", user.ID)
	return LoginResult{Email: user.Email, OTPExpiresAt: expires}, nil
}

// notifyLockout tells the user their account was locked. The lockout is
// already committed, so a delivery failure is only logged.
func (s *LoginService) notifyLockout(ctx context.Context, u domain.User, until time.Time) {
	err := s.Notifier.LockedOut(ctx, notify.LockoutMessage{
		UserID:      u.ID,
		Email:       u.Email,
		LockedUntil: until,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("lockout notice not sent", "user_id", u.ID, "error", err)
	}
}

// VerifyOTP completes a login. The code is consumed and the session issued
// in the same transaction, so a code opens at most one session.
func (s *LoginService) VerifyOTP(ctx context.Context, code string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	var pair domain.TokenPair
	var user domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := s.OTP.Verify(ctx, tx, code, now)
		if err != nil {
			return err
		}

		// locked or deactivated since the code was issued, leave the code in place
		if s.Lockout.IsLockedOut(u, now) {
			return ErrLockedOut
		}
		if !u.Active {
			return ErrAccountInactive
		}

		if err := s.OTP.Consume(ctx, tx, u, code); err != nil {
			return err
		}

		user = u
		pair, err = s.Sessions.Issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrOTPMissing), errors.Is(err, ErrOTPInvalid), errors.Is(err, ErrLockedOut), errors.Is(err, ErrAccountInactive):
			s.Metrics.ObserveOTPVerify(err.Error())
			return domain.TokenPair{}, err
		}
		s.Metrics.ObserveOTPVerify("error")
		return domain.TokenPair{}, fmt.Errorf("verify otp: %w", err)
	}

	s.Metrics.ObserveOTPVerify("ok")
	l.Info("login completed", "user_id", user.ID, "session_id", pair.SessionID)
	return pair, nil
}
