package service

import "errors"

// Outcomes of the auth and deposit flows. Handlers map these to wire errors,
// anything else is an internal failure.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrLockedOut          = errors.New("locked_out")
	ErrExceededAttempts   = errors.New("exceeded_attempts")

	ErrOTPMissing = errors.New("otp_missing")
	ErrOTPInvalid = errors.New("otp_invalid")

	ErrRefreshInvalid = errors.New("invalid_refresh_token")

	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrAccountNotFound  = errors.New("account_not_found")
	ErrAccountNotActive = errors.New("account_not_active")
	ErrDepositFailed    = errors.New("deposit_failed")

	ErrInvalidInput = errors.New("invalid_input")
)
