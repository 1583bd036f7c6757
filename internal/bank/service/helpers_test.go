package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/notify"
	"github.com/aussiebroadwan/teller/internal/bank/store/drivers/sqlite"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "teller"
	testAudience = "teller-api"
	testPassword = "correct-horse-battery"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "teller-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingNotifier keeps every message so tests can read the OTP that
// would have been emailed.
type recordingNotifier struct {
	mu       sync.Mutex
	otps     []notify.OTPMessage
	lockouts []notify.LockoutMessage
	deposits []notify.DepositMessage
	err      error
}

func (n *recordingNotifier) OTPIssued(_ context.Context, msg notify.OTPMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.otps = append(n.otps, msg)
	return nil
}

func (n *recordingNotifier) LockedOut(_ context.Context, msg notify.LockoutMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.lockouts = append(n.lockouts, msg)
	return nil
}

func (n *recordingNotifier) sentLockouts() []notify.LockoutMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.LockoutMessage(nil), n.lockouts...)
}

func (n *recordingNotifier) DepositCompleted(_ context.Context, msg notify.DepositMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.deposits = append(n.deposits, msg)
	return nil
}

func (n *recordingNotifier) lastOTP(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.otps, "no otp was sent")
	return n.otps[len(n.otps)-1].Code
}

func (n *recordingNotifier) failWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

var errNotifierDown = errors.New("smtp unavailable")

type fixture struct {
	store    *sqlite.Store
	clock    *testClock
	notifier *recordingNotifier
	lockout  *LockoutGovernor
	sessions *SessionService
	login    *LoginService
	deposits *DepositService
	admin    *AdminService
}

// newFixture wires the services over a fresh sqlite database. One test
// clock drives login, token issue and token verification.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "teller.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Issuer:   testIssuer,
		Audience: []string{testAudience},
		Now:      clock.Now,
	})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	lockout := &LockoutGovernor{Threshold: DefaultLoginAttempts, Duration: DefaultLockoutDuration}
	sessions := &SessionService{
		KeyManager: km,
		Store:      s,
		Issuer:     testIssuer,
		Audience:   []string{testAudience},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        clock.Now,
	}

	return &fixture{
		store:    s,
		clock:    clock,
		notifier: notifier,
		lockout:  lockout,
		sessions: sessions,
		login: &LoginService{
			Store:    s,
			Lockout:  lockout,
			OTP:      &OTPService{TTL: DefaultOTPTTL, Digits: DefaultOTPDigits},
			Sessions: sessions,
			Notifier: notifier,
			Now:      clock.Now,
		},
		deposits: &DepositService{Store: s, Notifier: notifier},
		admin:    &AdminService{Store: s},
	}
}

func (f *fixture) createUser(t *testing.T, email string, active bool) domain.User {
	t.Helper()
	u, _, err := f.admin.CreateUser(context.Background(), email, testPassword, active)
	require.NoError(t, err)
	return u
}

func (f *fixture) getUser(t *testing.T, id string) domain.User {
	t.Helper()
	u, err := f.store.Users().GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// loginWithOTP runs both login steps and returns the session.
func (f *fixture) loginWithOTP(t *testing.T, email string) domain.TokenPair {
	t.Helper()
	ctx := context.Background()

	_, err := f.login.Login(ctx, email, testPassword)
	require.NoError(t, err)

	pair, err := f.login.VerifyOTP(ctx, f.notifier.lastOTP(t))
	require.NoError(t, err)
	return pair
}
