package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// AccountsHandler serves the teller deposit endpoints.
type AccountsHandler struct {
	Deposits *service.DepositService
}

// HandleLookup godoc
//
//	@Summary		Look up an account before depositing
//	@Tags			Accounts
//	@Produce		json
//	@Param			account_number	query		string	true	"Account number"
//	@Success		200				{object}	banksdk.AccountResponse
//	@Failure		400				{object}	banksdk.ErrorResponse	"invalid_request"
//	@Failure		401				{object}	banksdk.ErrorResponse	"unauthorized"
//	@Failure		404				{object}	banksdk.ErrorResponse	"account_not_found"
//	@Security		BearerAuth
//	@Router			/v1/accounts/deposit [get].
func (h *AccountsHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("account_number"))
	if number == "" {
		banksdk.ErrAccountNumberRequired.WriteError(w)
		return
	}

	acct, err := h.Deposits.LookupAccount(r.Context(), number)
	if err != nil {
		writeServiceError(w, r, err, 0)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, banksdk.AccountResponse{
		Message: "Account found",
		Data: banksdk.AccountData{
			AccountNumber: acct.AccountNumber,
			Currency:      acct.Currency,
			Status:        string(acct.Status),
			HolderEmail:   slogx.MaskEmail(acct.HolderEmail),
		},
	})
}

// HandleDeposit godoc
//
//	@Summary		Deposit into an account
//	@Description	Credits a positive amount with at most two decimal places to an active account.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		banksdk.DepositRequest	true	"Deposit"
//	@Success		200		{object}	banksdk.DepositResponse
//	@Failure		400		{object}	banksdk.ErrorResponse	"invalid_request, invalid_amount, account_not_active"
//	@Failure		401		{object}	banksdk.ErrorResponse	"unauthorized"
//	@Failure		404		{object}	banksdk.ErrorResponse	"account_not_found"
//	@Failure		500		{object}	banksdk.ErrorResponse	"deposit_failed"
//	@Security		BearerAuth
//	@Router			/v1/accounts/deposit [post].
func (h *AccountsHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	var req banksdk.DepositRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		banksdk.ErrInvalidAmount.WriteError(w)
		return
	}
	if strings.TrimSpace(req.AccountNumber) == "" {
		banksdk.ErrAccountNumberRequired.WriteError(w)
		return
	}

	res, err := h.Deposits.Deposit(r.Context(), service.DepositRequest{
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		PerformedBy:   httpx.UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err, 0)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, banksdk.DepositResponse{
		Message: "Deposit successful",
		Data: banksdk.DepositData{
			AccountNumber: res.AccountNumber,
			NewBalance:    res.NewBalance,
		},
	})
}
