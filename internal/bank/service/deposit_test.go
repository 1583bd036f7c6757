package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func (f *fixture) openAccount(t *testing.T, email string, status domain.AccountStatus) domain.Account {
	t.Helper()
	a, err := f.admin.OpenAccount(context.Background(), email, "", status)
	require.NoError(t, err)
	return a
}

func (f *fixture) balance(t *testing.T, number string) string {
	t.Helper()
	a, err := f.store.Accounts().GetAccountByNumber(context.Background(), number)
	require.NoError(t, err)
	return a.Balance.StringFixed(AmountPlaces)
}

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teller := f.createUser(t, "teller@example.com", true)
	f.createUser(t, "holder@example.com", true)
	active := f.openAccount(t, "holder@example.com", domain.AccountActive)

	t.Run("credits the balance and records the ledger", func(t *testing.T) {
		res, err := f.deposits.Deposit(ctx, DepositRequest{
			AccountNumber: active.AccountNumber,
			Amount:        decimal.RequireFromString("100.50"),
			PerformedBy:   teller.ID,
		})
		require.NoError(t, err)
		require.Equal(t, "100.50", res.NewBalance.StringFixed(AmountPlaces))
		require.NotEmpty(t, res.TransactionID)
		require.Equal(t, "100.50", f.balance(t, active.AccountNumber))

		ledger, err := f.store.Transactions().ListTransactions(ctx, active.ID)
		require.NoError(t, err)
		require.Len(t, ledger, 1)
		require.Equal(t, res.TransactionID, ledger[0].ID)
		require.Equal(t, domain.TransactionDeposit, ledger[0].Kind)
		require.Equal(t, teller.ID, ledger[0].PerformedBy)
		require.True(t, ledger[0].BalanceAfter.Equal(res.NewBalance))

		require.Len(t, f.notifier.deposits, 1)
		msg := f.notifier.deposits[0]
		require.Equal(t, active.AccountNumber, msg.AccountNumber)
		require.Equal(t, "holder@example.com", msg.HolderEmail)
		require.Equal(t, DefaultCurrency, msg.Currency)
	})

	t.Run("rejects bad amounts", func(t *testing.T) {
		for _, amount := range []string{"0", "-5", "0.001", "10.125"} {
			_, err := f.deposits.Deposit(ctx, DepositRequest{
				AccountNumber: active.AccountNumber,
				Amount:        decimal.RequireFromString(amount),
				PerformedBy:   teller.ID,
			})
			require.ErrorIs(t, err, ErrInvalidAmount, amount)
		}
		require.Equal(t, "100.50", f.balance(t, active.AccountNumber))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.deposits.Deposit(ctx, DepositRequest{
			AccountNumber: "0000000000",
			Amount:        decimal.NewFromInt(1),
			PerformedBy:   teller.ID,
		})
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("malformed account number", func(t *testing.T) {
		for _, number := range []string{"12345", "12345abcde", "12345678901"} {
			_, err := f.deposits.Deposit(ctx, DepositRequest{
				AccountNumber: number,
				Amount:        decimal.NewFromInt(1),
				PerformedBy:   teller.ID,
			})
			require.ErrorIs(t, err, ErrAccountNotFound, number)
		}
	})

	t.Run("accounts that aren't active are left alone", func(t *testing.T) {
		for _, status := range []domain.AccountStatus{domain.AccountInactive, domain.AccountFrozen, domain.AccountClosed} {
			a := f.openAccount(t, "holder@example.com", status)

			_, err := f.deposits.Deposit(ctx, DepositRequest{
				AccountNumber: a.AccountNumber,
				Amount:        decimal.NewFromInt(10),
				PerformedBy:   teller.ID,
			})
			require.ErrorIs(t, err, ErrAccountNotActive, string(status))
			require.Equal(t, "0.00", f.balance(t, a.AccountNumber))

			ledger, err := f.store.Transactions().ListTransactions(ctx, a.ID)
			require.NoError(t, err)
			require.Empty(t, ledger)
		}
	})

	t.Run("notification failure keeps the deposit", func(t *testing.T) {
		f.notifier.failWith(errNotifierDown)
		t.Cleanup(func() { f.notifier.failWith(nil) })

		res, err := f.deposits.Deposit(ctx, DepositRequest{
			AccountNumber: active.AccountNumber,
			Amount:        decimal.RequireFromString("0.50"),
			PerformedBy:   teller.ID,
		})
		require.NoError(t, err)
		require.Equal(t, "101.00", res.NewBalance.StringFixed(AmountPlaces))
		require.Equal(t, "101.00", f.balance(t, active.AccountNumber))
	})
}

func TestConcurrentDepositsLoseNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teller := f.createUser(t, "teller@example.com", true)
	f.createUser(t, "holder@example.com", true)
	a := f.openAccount(t, "holder@example.com", domain.AccountActive)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.deposits.Deposit(ctx, DepositRequest{
				AccountNumber: a.AccountNumber,
				Amount:        decimal.RequireFromString("1.10"),
				PerformedBy:   teller.ID,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, "11.00", f.balance(t, a.AccountNumber))

	ledger, err := f.store.Transactions().ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, ledger, workers)
}

func TestLookupAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "holder@example.com", true)
	a := f.openAccount(t, "holder@example.com", domain.AccountFrozen)

	got, err := f.deposits.LookupAccount(ctx, " "+a.AccountNumber+" ")
	require.NoError(t, err)
	require.Equal(t, AccountSummary{
		AccountNumber: a.AccountNumber,
		Currency:      DefaultCurrency,
		Status:        domain.AccountFrozen,
		HolderEmail:   "holder@example.com",
	}, got)

	_, err = f.deposits.LookupAccount(ctx, "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.deposits.LookupAccount(ctx, "0000000000")
	require.ErrorIs(t, err, ErrAccountNotFound)
}
