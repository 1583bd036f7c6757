package banksdk

import (
	"context"
	"net/http"
)

// Login submits credentials. On success the bank has sent an OTP to the
// user out of band.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	return postJSON[LoginResponse](ctx, c, "/v1/auth/login", LoginRequest{Email: email, Password: password})
}

// VerifyOTP completes the login. The session cookies land in the jar.
func (c *SDKClient) VerifyOTP(ctx context.Context, code string) (*MessageResponse, error) {
	return postJSON[MessageResponse](ctx, c, "/v1/auth/otp/verify", VerifyOTPRequest{OTP: code})
}

// Refresh rotates the session using the refresh cookie in the jar.
func (c *SDKClient) Refresh(ctx context.Context) (*MessageResponse, error) {
	return postJSON[MessageResponse](ctx, c, "/v1/auth/refresh", nil)
}

// RefreshWithToken rotates the session using an explicit refresh token,
// for callers that stored it outside the jar.
func (c *SDKClient) RefreshWithToken(ctx context.Context, refreshToken string) (*MessageResponse, error) {
	return postJSON[MessageResponse](ctx, c, "/v1/auth/refresh", RefreshRequest{Refresh: refreshToken})
}

// Logout clears the session cookies.
func (c *SDKClient) Logout(ctx context.Context) error {
	return c.exchange(ctx, http.MethodPost, "/v1/auth/logout", nil, http.StatusNoContent, nil)
}
