package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/notify"
	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/internal/bank/store/drivers/sqlite"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const password = "correct-horse-battery"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "teller-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type otpInbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *otpInbox) OTPIssued(_ context.Context, msg notify.OTPMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[msg.Email] = msg.Code
	return nil
}

func (n *otpInbox) LockedOut(context.Context, notify.LockoutMessage) error { return nil }

func (n *otpInbox) DepositCompleted(context.Context, notify.DepositMessage) error { return nil }

func (n *otpInbox) code(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.codes[email]
	require.True(t, ok, "no otp sent to %s", email)
	return c
}

type testServer struct {
	*httptest.Server
	admin   *service.AdminService
	inbox   *otpInbox
	metrics *metrics.Metrics
}

func generousLimiters(string, httpx.RateLimitConfig) httpx.Limiter {
	return httpx.NewMemoryLimiter(httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000})
}

func newTestServer(t *testing.T, limiters LimiterFactory) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "teller.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: "teller", Audience: []string{"teller-api"}})
	require.NoError(t, err)

	m, err := metrics.New()
	require.NoError(t, err)

	inbox := &otpInbox{codes: map[string]string{}}
	lockout := &service.LockoutGovernor{
		Threshold: service.DefaultLoginAttempts,
		Duration:  service.DefaultLockoutDuration,
		Metrics:   m,
	}
	sessions := &service.SessionService{
		KeyManager: km,
		Store:      st,
		Issuer:     "teller",
		Audience:   []string{"teller-api"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Metrics:    m,
	}

	r := NewRouter(km.KeySet, km.Verifier, "test", st, slogx.Discard())
	r.LoginService = &service.LoginService{
		Store:    st,
		Lockout:  lockout,
		OTP:      &service.OTPService{TTL: service.DefaultOTPTTL, Digits: service.DefaultOTPDigits},
		Sessions: sessions,
		Notifier: inbox,
		Metrics:  m,
	}
	r.SessionService = sessions
	r.DepositService = &service.DepositService{Store: st, Notifier: inbox, Metrics: m}
	r.Cookies = &CookieManager{
		Path:       "/",
		SameSite:   http.SameSiteLaxMode,
		AccessTTL:  sessions.AccessTTL,
		RefreshTTL: sessions.RefreshTTL,
	}
	r.Metrics = m
	r.Limiters = limiters
	r.ApplyRoutes()

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, admin: &service.AdminService{Store: st}, inbox: inbox, metrics: m}
}

func (s *testServer) seed(t *testing.T, email string, active bool, status domain.AccountStatus) domain.Account {
	t.Helper()
	ctx := context.Background()
	_, _, err := s.admin.CreateUser(ctx, email, password, active)
	require.NoError(t, err)
	a, err := s.admin.OpenAccount(ctx, email, "", status)
	require.NoError(t, err)
	return a
}

func (s *testServer) login(t *testing.T, c *banksdk.SDKClient, email string) {
	t.Helper()
	ctx := context.Background()

	res, err := c.Login(ctx, email, password)
	require.NoError(t, err)
	require.Equal(t, "OTP sent to your email", res.Message)

	_, err = c.VerifyOTP(ctx, s.inbox.code(t, email))
	require.NoError(t, err)
}

func requireAPIError(t *testing.T, err error, status int, code string) *banksdk.APIError {
	t.Helper()
	var apiErr *banksdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected an API error, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestLoginAndDepositFlow(t *testing.T) {
	s := newTestServer(t, generousLimiters)
	ctx := context.Background()
	s.seed(t, "teller@example.com", true, domain.AccountActive)
	acct := s.seed(t, "holder@example.com", true, domain.AccountActive)

	c := banksdk.NewSDKClient(s.URL)
	s.login(t, c, "teller@example.com")
	require.NotEmpty(t, c.Cookie(banksdk.CookieAccess))
	require.NotEmpty(t, c.Cookie(banksdk.CookieRefresh))
	require.Equal(t, "true", c.Cookie(banksdk.CookieLoggedIn))

	t.Run("lookup", func(t *testing.T) {
		res, err := c.LookupAccount(ctx, acct.AccountNumber)
		require.NoError(t, err)
		require.Equal(t, "Account found", res.Message)
		require.Equal(t, acct.AccountNumber, res.Data.AccountNumber)
		require.Equal(t, "active", res.Data.Status)
		require.Equal(t, "h***@example.com", res.Data.HolderEmail)

		_, err = c.LookupAccount(ctx, "")
		requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeInvalidRequest)

		_, err = c.LookupAccount(ctx, "0000000000")
		requireAPIError(t, err, http.StatusNotFound, banksdk.ErrorCodeAccountNotFound)
	})

	t.Run("deposit", func(t *testing.T) {
		res, err := c.Deposit(ctx, acct.AccountNumber, decimal.RequireFromString("150.25"))
		require.NoError(t, err)
		require.Equal(t, "Deposit successful", res.Message)
		require.True(t, res.Data.NewBalance.Equal(decimal.RequireFromString("150.25")))

		_, err = c.Deposit(ctx, acct.AccountNumber, decimal.RequireFromString("-1"))
		requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeInvalidAmount)

		_, err = c.Deposit(ctx, acct.AccountNumber, decimal.RequireFromString("1.001"))
		requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeInvalidAmount)
	})

	t.Run("deposit into an account that isn't active", func(t *testing.T) {
		frozen, err := s.admin.OpenAccount(ctx, "holder@example.com", "", domain.AccountFrozen)
		require.NoError(t, err)

		_, err = c.Deposit(ctx, frozen.AccountNumber, decimal.NewFromInt(5))
		requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeAccountNotActive)
	})

	t.Run("bearer token works without cookies", func(t *testing.T) {
		bearer := banksdk.NewSDKClient(s.URL)
		bearer.BearerToken = c.Cookie(banksdk.CookieAccess)

		_, err := bearer.LookupAccount(ctx, acct.AccountNumber)
		require.NoError(t, err)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		bearer := banksdk.NewSDKClient(s.URL)
		bearer.BearerToken = c.Cookie(banksdk.CookieRefresh)

		_, err := bearer.LookupAccount(ctx, acct.AccountNumber)
		requireAPIError(t, err, http.StatusUnauthorized, banksdk.ErrorCodeUnauthorized)
	})

	t.Run("logout clears cookies", func(t *testing.T) {
		require.NoError(t, c.Logout(ctx))
		require.Empty(t, c.Cookie(banksdk.CookieAccess))
		require.Empty(t, c.Cookie(banksdk.CookieRefresh))
		require.Empty(t, c.Cookie(banksdk.CookieLoggedIn))

		_, err := c.Deposit(ctx, acct.AccountNumber, decimal.NewFromInt(1))
		requireAPIError(t, err, http.StatusUnauthorized, banksdk.ErrorCodeUnauthorized)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	s := newTestServer(t, generousLimiters)
	ctx := context.Background()
	s.seed(t, "teller@example.com", true, domain.AccountActive)

	c := banksdk.NewSDKClient(s.URL)
	s.login(t, c, "teller@example.com")
	oldRefresh := c.Cookie(banksdk.CookieRefresh)
	oldAccess := c.Cookie(banksdk.CookieAccess)

	res, err := c.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "Access tokens refreshed successfully.", res.Message)
	require.NotEqual(t, oldRefresh, c.Cookie(banksdk.CookieRefresh))
	require.NotEqual(t, oldAccess, c.Cookie(banksdk.CookieAccess))

	t.Run("rotated token is refused", func(t *testing.T) {
		other := banksdk.NewSDKClient(s.URL)
		_, err := other.RefreshWithToken(ctx, oldRefresh)
		requireAPIError(t, err, http.StatusUnauthorized, banksdk.ErrorCodeInvalidRefreshToken)
		require.Empty(t, other.Cookie(banksdk.CookieAccess))
	})

	t.Run("body token", func(t *testing.T) {
		other := banksdk.NewSDKClient(s.URL)
		_, err := other.RefreshWithToken(ctx, c.Cookie(banksdk.CookieRefresh))
		require.NoError(t, err)
		require.NotEmpty(t, other.Cookie(banksdk.CookieAccess))
	})

	t.Run("nothing presented", func(t *testing.T) {
		_, err := banksdk.NewSDKClient(s.URL).Refresh(ctx)
		requireAPIError(t, err, http.StatusUnauthorized, banksdk.ErrorCodeInvalidRefreshToken)
	})
}

func TestLogoutWithoutSession(t *testing.T) {
	s := newTestServer(t, generousLimiters)

	resp, err := http.Post(s.URL+"/v1/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	got := resp.Cookies()
	require.Len(t, got, 3)
	for _, c := range got {
		require.Negative(t, c.MaxAge, c.Name)
	}
}

func TestLoginErrors(t *testing.T) {
	s := newTestServer(t, generousLimiters)
	ctx := context.Background()
	s.seed(t, "alice@example.com", true, domain.AccountActive)
	s.seed(t, "bob@example.com", false, domain.AccountInactive)
	c := banksdk.NewSDKClient(s.URL)

	t.Run("inactive", func(t *testing.T) {
		_, err := c.Login(ctx, "bob@example.com", password)
		apiErr := requireAPIError(t, err, http.StatusForbidden, banksdk.ErrorCodeAccountInactive)
		require.Equal(t, "Please check your email and activate your account", apiErr.Message)
	})

	t.Run("otp errors", func(t *testing.T) {
		_, err := c.VerifyOTP(ctx, "")
		requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeOTPMissing)

		_, err = c.VerifyOTP(ctx, "123456")
		apiErr := requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeOTPInvalid)
		require.Equal(t, "Invalid or expired OTP", apiErr.Message)
	})

	t.Run("lockout", func(t *testing.T) {
		for range service.DefaultLoginAttempts - 1 {
			_, err := c.Login(ctx, "alice@example.com", "wrong")
			apiErr := requireAPIError(t, err, http.StatusBadRequest, banksdk.ErrorCodeInvalidCredentials)
			require.Equal(t, "Your Login Credentials are not correct", apiErr.Message)
		}

		_, err := c.Login(ctx, "alice@example.com", "wrong")
		apiErr := requireAPIError(t, err, http.StatusForbidden, banksdk.ErrorCodeExceededAttempts)
		require.Contains(t, apiErr.Message, "locked for 30 minutes")

		_, err = c.Login(ctx, "alice@example.com", password)
		apiErr = requireAPIError(t, err, http.StatusForbidden, banksdk.ErrorCodeLockedOut)
		require.Contains(t, apiErr.Message, "try again after 30 minutes")
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(s.URL+"/v1/auth/login", "application/json", strings.NewReader(`{"email":`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	c := banksdk.NewSDKClient(s.URL)

	var limited bool
	for range httpx.StrictLimit.Burst + 1 {
		_, err := c.Login(ctx, "nobody@example.com", "wrong")
		var apiErr *banksdk.APIError
		require.True(t, errors.As(err, &apiErr))
		if apiErr.StatusCode == http.StatusTooManyRequests {
			limited = true
			require.Equal(t, banksdk.ErrorCodeRateLimited, apiErr.Code)
		}
	}
	require.True(t, limited)
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t, generousLimiters)
	ctx := context.Background()
	c := banksdk.NewSDKClient(s.URL)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)

	jwks, err := c.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)

	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(s.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCookieManager(t *testing.T) {
	cm := &CookieManager{
		Path:       "/",
		Domain:     "bank.example",
		Secure:     true,
		SameSite:   http.SameSiteStrictMode,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}

	cookies := func(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
		out := map[string]*http.Cookie{}
		for _, c := range rec.Result().Cookies() {
			out[c.Name] = c
		}
		return out
	}

	t.Run("set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cm.SetSession(rec, domain.TokenPair{AccessToken: "a", RefreshToken: "r"})
		got := cookies(rec)
		require.Len(t, got, 3)

		access := got[banksdk.CookieAccess]
		require.Equal(t, "a", access.Value)
		require.True(t, access.HttpOnly)
		require.True(t, access.Secure)
		require.Equal(t, http.SameSiteStrictMode, access.SameSite)
		require.Equal(t, 900, access.MaxAge)
		require.Equal(t, "bank.example", access.Domain)

		refresh := got[banksdk.CookieRefresh]
		require.True(t, refresh.HttpOnly)
		require.Equal(t, 86400, refresh.MaxAge)

		loggedIn := got[banksdk.CookieLoggedIn]
		require.Equal(t, "true", loggedIn.Value)
		require.False(t, loggedIn.HttpOnly)
		require.Equal(t, 900, loggedIn.MaxAge)
	})

	t.Run("no refresh token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cm.SetSession(rec, domain.TokenPair{AccessToken: "a"})
		got := cookies(rec)
		require.Len(t, got, 2)
		require.NotContains(t, got, banksdk.CookieRefresh)
	})

	t.Run("clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cm.Clear(rec)
		got := cookies(rec)
		require.Len(t, got, 3)
		for _, c := range got {
			require.Negative(t, c.MaxAge, c.Name)
			require.Empty(t, c.Value)
			require.Equal(t, "bank.example", c.Domain)
		}
	})
}

func TestParseSameSite(t *testing.T) {
	for in, want := range map[string]http.SameSite{
		"":       http.SameSiteLaxMode,
		"Lax":    http.SameSiteLaxMode,
		"strict": http.SameSiteStrictMode,
		"none":   http.SameSiteNoneMode,
	} {
		got, ok := ParseSameSite(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	_, ok := ParseSameSite("sometimes")
	require.False(t, ok)
}
