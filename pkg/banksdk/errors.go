package banksdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/teller/pkg/httpx"
)

// Error codes carried in the "error" field of every failure body.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeAccountInactive     = "account_inactive"
	ErrorCodeLockedOut           = "locked_out"
	ErrorCodeExceededAttempts    = "exceeded_attempts"
	ErrorCodeOTPMissing          = "otp_missing"
	ErrorCodeOTPInvalid          = "otp_invalid"
	ErrorCodeInvalidRefreshToken = "invalid_refresh_token"
	ErrorCodeUnauthorized        = "unauthorized"
	ErrorCodeInvalidAmount       = "invalid_amount"
	ErrorCodeAccountNotFound     = "account_not_found"
	ErrorCodeAccountNotActive    = "account_not_active"
	ErrorCodeDepositFailed       = "deposit_failed"
	ErrorCodeRateLimited         = "rate_limited"
	ErrorCodeServerError         = "server_error"
)

// APIError is the wire error of the bank API. The server writes it with
// WriteError and the client parses failures back into it, so callers can
// switch on Code.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so errors.Is(err, banksdk.ErrOTPInvalid) works on
// errors parsed from a response.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes the error as the JSON body of an HTTP response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e.Code, Message: e.Message})
}

// NewAPIError creates an APIError with a custom message.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "The request body is malformed.",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "Your Login Credentials are not correct",
	}

	ErrAccountInactive = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccountInactive,
		Message:    "Please check your email and activate your account",
	}

	ErrOTPMissing = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeOTPMissing,
		Message:    "OTP is required",
	}

	ErrOTPInvalid = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeOTPInvalid,
		Message:    "Invalid or expired OTP",
	}

	ErrInvalidRefreshToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidRefreshToken,
		Message:    "Invalid or expired refresh token.",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUnauthorized,
		Message:    "Authentication required.",
	}

	ErrAccountNumberRequired = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "Account number is required.",
	}

	ErrInvalidAmount = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidAmount,
		Message:    "Amount must be a positive value with at most two decimal places.",
	}

	ErrAccountNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeAccountNotFound,
		Message:    "Account not found.",
	}

	ErrAccountNotActive = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeAccountNotActive,
		Message:    "Account is not active.",
	}

	ErrDepositFailed = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeDepositFailed,
		Message:    "Failed to process deposit.",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}
)

// LockedOutError is returned while a lockout window is active. Only the
// lockout errors disclose timing.
func LockedOutError(minutes int) *APIError {
	return NewAPIError(http.StatusForbidden, ErrorCodeLockedOut, fmt.Sprintf(
		"Account is locked due to multiple failed login attempts. Please try again after %d minutes.", minutes))
}

// ExceededAttemptsError is returned by the failure that trips the lockout.
func ExceededAttemptsError(minutes int) *APIError {
	return NewAPIError(http.StatusForbidden, ErrorCodeExceededAttempts, fmt.Sprintf(
		"You have exceeded the maximum number of login attempts. Your account has been locked for %d minutes. "+
			"An email has been sent to you with further instructions.", minutes))
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Error,
			Message:    errResp.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
