package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// writeServiceError maps a service outcome onto its wire error. Anything
// unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, lockoutMinutes int) {
	var apiErr *banksdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = banksdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrAccountInactive):
		apiErr = banksdk.ErrAccountInactive
	case errors.Is(err, service.ErrLockedOut):
		apiErr = banksdk.LockedOutError(lockoutMinutes)
	case errors.Is(err, service.ErrExceededAttempts):
		apiErr = banksdk.ExceededAttemptsError(lockoutMinutes)
	case errors.Is(err, service.ErrOTPMissing):
		apiErr = banksdk.ErrOTPMissing
	case errors.Is(err, service.ErrOTPInvalid):
		apiErr = banksdk.ErrOTPInvalid
	case errors.Is(err, service.ErrRefreshInvalid):
		apiErr = banksdk.ErrInvalidRefreshToken
	case errors.Is(err, service.ErrInvalidAmount):
		apiErr = banksdk.ErrInvalidAmount
	case errors.Is(err, service.ErrAccountNotFound):
		apiErr = banksdk.ErrAccountNotFound
	case errors.Is(err, service.ErrAccountNotActive):
		apiErr = banksdk.ErrAccountNotActive
	case errors.Is(err, service.ErrDepositFailed):
		apiErr = banksdk.ErrDepositFailed
	case errors.Is(err, service.ErrInvalidInput):
		apiErr = banksdk.ErrInvalidRequest
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		apiErr = banksdk.ErrServerError
	}
	apiErr.WriteError(w)
}
