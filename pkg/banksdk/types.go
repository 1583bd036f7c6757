package banksdk

import (
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the first login step, exchanging credentials for an OTP.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"correct-horse-battery"`
}

// LoginResponse confirms an OTP was dispatched.
type LoginResponse struct {
	Message string `json:"message" example:"OTP sent to your email"`
	Email   string `json:"email" example:"alice@example.com"`
}

// VerifyOTPRequest is the second login step.
type VerifyOTPRequest struct {
	OTP string `json:"otp" example:"493027"`
}

// RefreshRequest carries a refresh token for clients that can't hold
// cookies. The refresh cookie wins when both are present.
type RefreshRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

// MessageResponse is the generic success body.
type MessageResponse struct {
	Message string `json:"message" example:"Login successful"`
}

// ============================================================================
// Account Types
// ============================================================================

// DepositRequest credits an account. Amount accepts a JSON number or a
// decimal string, with at most two decimal places.
type DepositRequest struct {
	AccountNumber string          `json:"account_number" example:"4821093365"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
}

// DepositData is the outcome of a successful deposit.
type DepositData struct {
	AccountNumber string          `json:"account_number" example:"4821093365"`
	NewBalance    decimal.Decimal `json:"new_balance" swaggertype:"string" example:"1150.00"`
}

// DepositResponse wraps DepositData.
type DepositResponse struct {
	Message string      `json:"message" example:"Deposit successful"`
	Data    DepositData `json:"data"`
}

// AccountData is what a teller sees when confirming an account.
type AccountData struct {
	AccountNumber string `json:"account_number" example:"4821093365"`
	Currency      string `json:"currency" example:"AUD"`
	Status        string `json:"status" example:"active"`
	HolderEmail   string `json:"holder_email" example:"a***@example.com"`
}

// AccountResponse wraps AccountData.
type AccountResponse struct {
	Message string      `json:"message" example:"Account found"`
	Data    AccountData `json:"data"`
}

// ============================================================================
// System Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty" example:"1h23m45s"`
	Version string        `json:"version,omitempty" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Signer   string `json:"signer" example:"ok"`
}

// JWKSResponse contains the JSON Web Key Set published at
// /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_credentials"`
	Message string `json:"message" example:"Your Login Credentials are not correct"`
}
