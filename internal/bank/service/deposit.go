package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/notify"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/idx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places money carries.
const AmountPlaces = 2

type DepositService struct {
	Store    store.Store
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
}

// DepositRequest credits Amount to AccountNumber on behalf of PerformedBy.
type DepositRequest struct {
	AccountNumber string
	Amount        decimal.Decimal
	PerformedBy   string
}

// DepositResult is the account state after a committed deposit.
type DepositResult struct {
	AccountNumber string
	NewBalance    decimal.Decimal
	TransactionID string
}

// AccountSummary is what a teller sees before depositing.
type AccountSummary struct {
	AccountNumber string
	Currency      string
	Status        domain.AccountStatus
	HolderEmail   string
}

// ValidAmount reports whether a is a positive amount of money.
func ValidAmount(a decimal.Decimal) bool {
	return a.IsPositive() && a.Equal(a.Truncate(AmountPlaces))
}

// LookupAccount returns the account a teller is about to deposit into.
func (s *DepositService) LookupAccount(ctx context.Context, number string) (AccountSummary, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return AccountSummary{}, ErrInvalidInput
	}
	if !idx.IsAccountNumber(number) {
		return AccountSummary{}, ErrAccountNotFound
	}

	a, err := s.Store.Accounts().GetAccountByNumber(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return AccountSummary{}, ErrAccountNotFound
	}
	if err != nil {
		return AccountSummary{}, err
	}

	holder, err := s.Store.Users().GetUserByID(ctx, a.UserID)
	if err != nil {
		return AccountSummary{}, err
	}

	return AccountSummary{
		AccountNumber: a.AccountNumber,
		Currency:      a.Currency,
		Status:        a.Status,
		HolderEmail:   holder.Email,
	}, nil
}

// Deposit applies the credit in one transaction holding the account row.
// The notification goes out after commit and its failure doesn't undo the
// deposit.
func (s *DepositService) Deposit(ctx context.Context, req DepositRequest) (DepositResult, error) {
	l := slogx.FromContext(ctx)
	number := strings.TrimSpace(req.AccountNumber)

	if !ValidAmount(req.Amount) {
		s.Metrics.ObserveDeposit("invalid_amount")
		return DepositResult{}, ErrInvalidAmount
	}
	if !idx.IsAccountNumber(number) {
		s.Metrics.ObserveDeposit("account_not_found")
		return DepositResult{}, ErrAccountNotFound
	}

	var (
		result  DepositResult
		account domain.Account
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByNumberForUpdate(ctx, number)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}

		if a.Status != domain.AccountActive {
			return ErrAccountNotActive
		}

		a.Balance = a.Balance.Add(req.Amount)
		if err := tx.Accounts().UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}

		txnID := idx.New().String()
		err = tx.Transactions().CreateTransaction(ctx, domain.Transaction{
			ID:           txnID,
			AccountID:    a.ID,
			Kind:         domain.TransactionDeposit,
			Amount:       req.Amount,
			BalanceAfter: a.Balance,
			PerformedBy:  req.PerformedBy,
		})
		if err != nil {
			return err
		}

		account = a
		result = DepositResult{AccountNumber: a.AccountNumber, NewBalance: a.Balance, TransactionID: txnID}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountNotFound):
			s.Metrics.ObserveDeposit("account_not_found")
			return DepositResult{}, ErrAccountNotFound
		case errors.Is(err, ErrAccountNotActive):
			s.Metrics.ObserveDeposit("account_not_active")
			return DepositResult{}, ErrAccountNotActive
		}

		s.Metrics.ObserveDeposit("failed")
		l.Error("deposit failed",
			"account_number", number,
			"amount", req.Amount.StringFixed(AmountPlaces),
			"error", err,
		)
		return DepositResult{}, ErrDepositFailed
	}

	s.Metrics.ObserveDeposit("ok")
	l.Info("deposit applied",
		"account_number", result.AccountNumber,
		"amount", req.Amount.StringFixed(AmountPlaces),
		"transaction_id", result.TransactionID,
		"performed_by", req.PerformedBy,
	)

	s.notify(ctx, account, req, result)
	return result, nil
}

func (s *DepositService) notify(ctx context.Context, a domain.Account, req DepositRequest, res DepositResult) {
	l := slogx.FromContext(ctx)

	msg := notify.DepositMessage{
		TransactionID: res.TransactionID,
		AccountNumber: a.AccountNumber,
		Currency:      a.Currency,
		Amount:        req.Amount,
		NewBalance:    res.NewBalance,
		PerformedBy:   req.PerformedBy,
		At:            time.Now().UTC(),
	}
	if holder, err := s.Store.Users().GetUserByID(ctx, a.UserID); err == nil {
		msg.HolderEmail = holder.Email
	}

	if err := s.Notifier.DepositCompleted(ctx, msg); err != nil {
		l.Warn("deposit notification failed",
			"account_number", a.AccountNumber,
			"transaction_id", res.TransactionID,
			"error", err,
		)
	}
}
