package banksdk

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

// LookupAccount confirms an account before depositing into it.
func (c *SDKClient) LookupAccount(ctx context.Context, accountNumber string) (*AccountResponse, error) {
	q := url.Values{"account_number": {accountNumber}}
	return getJSON[AccountResponse](ctx, c, "/v1/accounts/deposit?"+q.Encode())
}

// Deposit credits amount to the account.
func (c *SDKClient) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*DepositResponse, error) {
	return postJSON[DepositResponse](ctx, c, "/v1/accounts/deposit", DepositRequest{
		AccountNumber: accountNumber,
		Amount:        amount,
	})
}
