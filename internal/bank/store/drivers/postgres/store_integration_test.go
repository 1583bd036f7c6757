package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/idx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway postgres and returns a migrated store.
func startPostgres(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "teller",
			"POSTGRES_PASSWORD": "teller",
			"POSTGRES_DB":       "teller",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://teller:teller@%s:%s/teller?sslmode=disable", host, port.Port())
	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPostgresStore(t *testing.T) {
	s := startPostgres(t)
	ctx := context.Background()

	u := domain.User{ID: idx.New().String(), Email: "alice@example.com", PasswordHash: "hash", Active: true}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.ErrorIs(t, s.Users().CreateUser(ctx, u), store.ErrAlreadyExists)

	acct := domain.Account{
		ID:            idx.New().String(),
		UserID:        u.ID,
		AccountNumber: "1234567890",
		Currency:      "AUD",
		Balance:       decimal.Zero,
		Status:        domain.AccountActive,
	}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	t.Run("concurrent deposits do not lose updates", func(t *testing.T) {
		const workers = 20
		amount := decimal.RequireFromString("1.05")

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.WithTx(ctx, func(tx store.Tx) error {
					a, err := tx.Accounts().GetAccountByNumberForUpdate(ctx, acct.AccountNumber)
					if err != nil {
						return err
					}
					next := a.Balance.Add(amount)
					if err := tx.Accounts().UpdateBalance(ctx, a.ID, next); err != nil {
						return err
					}
					return tx.Transactions().CreateTransaction(ctx, domain.Transaction{
						ID: idx.New().String(), AccountID: a.ID, Kind: domain.TransactionDeposit,
						Amount: amount, BalanceAfter: next, PerformedBy: u.ID,
					})
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.Accounts().GetAccountByNumber(ctx, acct.AccountNumber)
		require.NoError(t, err)
		require.Equal(t, "21.00", got.Balance.StringFixed(2))

		ledger, err := s.Transactions().ListTransactions(ctx, acct.ID)
		require.NoError(t, err)
		require.Len(t, ledger, workers)
	})

	t.Run("otp fingerprint is unique while set", func(t *testing.T) {
		bob := domain.User{ID: idx.New().String(), Email: "bob@example.com", PasswordHash: "hash"}
		require.NoError(t, s.Users().CreateUser(ctx, bob))

		exp := time.Now().Add(time.Minute)
		require.NoError(t, s.Users().SetOTP(ctx, u.ID, "otp", exp))
		require.ErrorIs(t, s.Users().SetOTP(ctx, bob.ID, "otp", exp), store.ErrAlreadyExists)

		got, err := s.Users().GetUserByActiveOTP(ctx, "otp", time.Now())
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		require.NoError(t, s.Users().ConsumeOTP(ctx, u.ID, "otp"))
		require.ErrorIs(t, s.Users().ConsumeOTP(ctx, u.ID, "otp"), store.ErrNotFound)
	})
}
