package http

import (
	"net/http"

	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/httpx"
)

// AuthHandler serves the login, OTP, refresh and logout endpoints.
type AuthHandler struct {
	Login    *service.LoginService
	Sessions *service.SessionService
	Cookies  *CookieManager
}

func (h *AuthHandler) lockoutMinutes() int {
	return h.Login.Lockout.LockoutMinutes()
}

// HandleLogin godoc
//
//	@Summary		Submit credentials
//	@Description	Checks email and password. On success a one-time code is sent to the user's email.
//	@Description	Repeated failures lock the account for a fixed window.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		banksdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	banksdk.LoginResponse
//	@Failure		400		{object}	banksdk.ErrorResponse	"invalid_request, invalid_credentials"
//	@Failure		403		{object}	banksdk.ErrorResponse	"account_inactive, locked_out, exceeded_attempts"
//	@Failure		429		{object}	banksdk.ErrorResponse	"rate_limited"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req banksdk.LoginRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		banksdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.Login.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, h.lockoutMinutes())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, banksdk.LoginResponse{
		Message: "OTP sent to your email",
		Email:   res.Email,
	})
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify the one-time code
//	@Description	Completes a login. Sets the access, refresh and logged_in cookies.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		banksdk.VerifyOTPRequest	true	"One-time code"
//	@Success		200		{object}	banksdk.MessageResponse
//	@Failure		400		{object}	banksdk.ErrorResponse	"otp_missing, otp_invalid"
//	@Failure		403		{object}	banksdk.ErrorResponse	"locked_out, account_inactive"
//	@Router			/v1/auth/otp/verify [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req banksdk.VerifyOTPRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		banksdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Login.VerifyOTP(r.Context(), req.OTP)
	if err != nil {
		writeServiceError(w, r, err, h.lockoutMinutes())
		return
	}

	h.Cookies.SetSession(w, pair)
	httpx.WriteJSON(w, http.StatusOK, banksdk.MessageResponse{Message: "Login successful"})
}

// HandleRefresh godoc
//
//	@Summary		Rotate the session tokens
//	@Description	Reads the refresh cookie, falling back to a JSON body. The presented refresh token is retired.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		banksdk.RefreshRequest	false	"Refresh token when no cookie is sent"
//	@Success		200		{object}	banksdk.MessageResponse
//	@Failure		401		{object}	banksdk.ErrorResponse	"invalid_refresh_token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var raw string
	if c, err := r.Cookie(banksdk.CookieRefresh); err == nil && c.Value != "" {
		raw = c.Value
	} else if r.ContentLength != 0 {
		var req banksdk.RefreshRequest
		if err := httpx.ReadJSON(w, r, &req); err == nil {
			raw = req.Refresh
		}
	}

	pair, err := h.Sessions.Refresh(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err, h.lockoutMinutes())
		return
	}

	h.Cookies.SetSession(w, pair)
	httpx.WriteJSON(w, http.StatusOK, banksdk.MessageResponse{Message: "Access tokens refreshed successfully."})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the session cookies. Tokens are not revoked server side.
//	@Tags			Auth
//	@Success		204
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
