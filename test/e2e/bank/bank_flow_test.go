package bank_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestLoginDepositLogout walks a teller through login, OTP, a deposit,
// a token refresh and logout.
func TestLoginDepositLogout(t *testing.T) {
	c := setupBankContainer(t, nil)
	ctx := context.Background()

	tellerID, _ := c.seedUser(t, "teller@example.com", "active")
	_, account := c.seedUser(t, "holder@example.com", "active")

	client := banksdk.NewSDKClient(c.BaseURL)
	c.login(t, client, "teller@example.com", tellerID)

	found, err := client.LookupAccount(ctx, account)
	require.NoError(t, err)
	require.Equal(t, "active", found.Data.Status)

	dep, err := client.Deposit(ctx, account, decimal.RequireFromString("250.75"))
	require.NoError(t, err)
	require.True(t, dep.Data.NewBalance.Equal(decimal.RequireFromString("250.75")))

	oldRefresh := client.Cookie(banksdk.CookieRefresh)
	_, err = client.Refresh(ctx)
	require.NoError(t, err)
	require.NotEqual(t, oldRefresh, client.Cookie(banksdk.CookieRefresh))

	_, err = banksdk.NewSDKClient(c.BaseURL).RefreshWithToken(ctx, oldRefresh)
	requireAPIError(t, err, banksdk.ErrInvalidRefreshToken)

	require.NoError(t, client.Logout(ctx))
	_, err = client.Deposit(ctx, account, decimal.NewFromInt(1))
	requireAPIError(t, err, banksdk.ErrUnauthorized)
}

func TestLockout(t *testing.T) {
	c := setupBankContainer(t, map[string]string{"LOGIN_ATTEMPTS": "3", "LOCKOUT_DURATION": "10m"})
	ctx := context.Background()
	c.seedUser(t, "alice@example.com", "active")
	client := banksdk.NewSDKClient(c.BaseURL)

	for range 2 {
		_, err := client.Login(ctx, "alice@example.com", "wrong")
		requireAPIError(t, err, banksdk.ErrInvalidCredentials)
	}

	_, err := client.Login(ctx, "alice@example.com", "wrong")
	requireAPIError(t, err, banksdk.ExceededAttemptsError(10))
	require.Contains(t, err.Error(), "locked for 10 minutes")

	_, err = client.Login(ctx, "alice@example.com", testPassword)
	requireAPIError(t, err, banksdk.LockedOutError(10))

	c.bankctl(t, "unlock-user", "-email", "alice@example.com")
	_, err = client.Login(ctx, "alice@example.com", testPassword)
	require.NoError(t, err)
}

func TestOTPIsSingleUse(t *testing.T) {
	c := setupBankContainer(t, nil)
	ctx := context.Background()
	id, _ := c.seedUser(t, "alice@example.com", "active")

	client := banksdk.NewSDKClient(c.BaseURL)
	_, err := client.Login(ctx, "alice@example.com", testPassword)
	require.NoError(t, err)
	code := c.latestOTP(t, id)

	_, err = client.VerifyOTP(ctx, code)
	require.NoError(t, err)

	_, err = banksdk.NewSDKClient(c.BaseURL).VerifyOTP(ctx, code)
	requireAPIError(t, err, banksdk.ErrOTPInvalid)
}

func TestConcurrentDeposits(t *testing.T) {
	c := setupBankContainer(t, nil)
	ctx := context.Background()
	tellerID, _ := c.seedUser(t, "teller@example.com", "active")
	_, account := c.seedUser(t, "holder@example.com", "active")

	client := banksdk.NewSDKClient(c.BaseURL)
	c.login(t, client, "teller@example.com", tellerID)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Deposit(ctx, account, decimal.RequireFromString("5.05"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	dep, err := client.Deposit(ctx, account, decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	require.True(t, dep.Data.NewBalance.Equal(decimal.RequireFromString("101.01")), dep.Data.NewBalance.String())
}

func TestDepositRejections(t *testing.T) {
	c := setupBankContainer(t, nil)
	ctx := context.Background()
	tellerID, _ := c.seedUser(t, "teller@example.com", "active")
	_, frozen := c.seedUser(t, "holder@example.com", "frozen")

	client := banksdk.NewSDKClient(c.BaseURL)
	c.login(t, client, "teller@example.com", tellerID)

	_, err := client.Deposit(ctx, frozen, decimal.NewFromInt(10))
	requireAPIError(t, err, banksdk.ErrAccountNotActive)

	_, err = client.Deposit(ctx, "1000000000", decimal.NewFromInt(10))
	requireAPIError(t, err, banksdk.ErrAccountNotFound)

	_, err = client.Deposit(ctx, frozen, decimal.RequireFromString("0"))
	requireAPIError(t, err, banksdk.ErrInvalidAmount)
}

func TestHealth(t *testing.T) {
	c := setupBankContainer(t, nil)
	client := banksdk.NewSDKClient(c.BaseURL)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, jwks.Keys)
}

func TestLoginRateLimit(t *testing.T) {
	c := setupBankContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "",
		"RATELIMIT_STRICT_WINDOW_SEC": "",
		"RATELIMIT_STRICT_BURST":      "",
	})
	client := banksdk.NewSDKClient(c.BaseURL)

	var limited bool
	for range 10 {
		_, err := client.Login(t.Context(), "nobody@example.com", "wrong")
		if errors.Is(err, &banksdk.APIError{Code: banksdk.ErrorCodeRateLimited}) {
			limited = true
			break
		}
	}
	require.True(t, limited)
}
