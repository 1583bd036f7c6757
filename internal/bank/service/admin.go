package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/idx"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for accounts opened without one.
const DefaultCurrency = "AUD"

// AdminService covers the operator tasks that stand in for registration and
// KYC: creating users, activating them and opening accounts.
type AdminService struct {
	Store store.Store
}

// CreateUser registers a user with the given password. A blank password
// generates one, returned alongside the user.
func (s *AdminService) CreateUser(ctx context.Context, email, password string, active bool) (domain.User, string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.User{}, "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	if password == "" {
		var err error
		if password, err = cryptox.GeneratePassword(); err != nil {
			return domain.User{}, "", err
		}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Active:       active,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, "", fmt.Errorf("%w: email already registered", ErrInvalidInput)
		}
		return domain.User{}, "", err
	}

	return u, password, nil
}

// SetUserActive flips a user's active flag.
func (s *AdminService) SetUserActive(ctx context.Context, email string, active bool) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	return s.Store.Users().SetActive(ctx, u.ID, active)
}

// UnlockUser clears a lockout window ahead of time.
func (s *AdminService) UnlockUser(ctx context.Context, email string) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	return s.Store.Users().ResetLoginState(ctx, u.ID)
}

// OpenAccount opens a zero balance account for the user. New accounts
// start inactive until verified.
func (s *AdminService) OpenAccount(ctx context.Context, email, currency string, status domain.AccountStatus) (domain.Account, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return domain.Account{}, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if status == "" {
		status = domain.AccountInactive
	}
	if !status.Valid() {
		return domain.Account{}, fmt.Errorf("%w: unknown account status %q", ErrInvalidInput, status)
	}

	// account numbers are random, retry the rare clash
	for range 5 {
		number, err := idx.NewAccountNumber()
		if err != nil {
			return domain.Account{}, err
		}

		a := domain.Account{
			ID:            idx.New().String(),
			UserID:        u.ID,
			AccountNumber: number,
			Currency:      currency,
			Balance:       decimal.Zero,
			Status:        status,
		}
		err = s.Store.Accounts().CreateAccount(ctx, a)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return domain.Account{}, err
		}
		return a, nil
	}

	return domain.Account{}, errors.New("could not allocate an account number")
}

// SetAccountStatus moves an account between statuses, e.g. activating it
// once verified or freezing it.
func (s *AdminService) SetAccountStatus(ctx context.Context, number string, status domain.AccountStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown account status %q", ErrInvalidInput, status)
	}
	err := s.Store.Accounts().UpdateAccountStatus(ctx, number, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}
