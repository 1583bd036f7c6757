package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// LogNotifier writes notifications to the log instead of delivering them.
// RevealCodes puts the OTP itself in the log line, only ever set it in
// development.
type LogNotifier struct {
	Logger      *slog.Logger
	RevealCodes bool
}

func (n *LogNotifier) logger(ctx context.Context) *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slogx.FromContext(ctx)
}

func (n *LogNotifier) OTPIssued(ctx context.Context, msg OTPMessage) error {
	attrs := []any{
		"user_id", msg.UserID,
		"email", slogx.MaskEmail(msg.Email),
		"expires_at", msg.ExpiresAt,
	}
	if n.RevealCodes {
		attrs = append(attrs, "otp", msg.Code)
	}
	n.logger(ctx).Info("otp issued", attrs...)
	return nil
}

func (n *LogNotifier) LockedOut(ctx context.Context, msg LockoutMessage) error {
	n.logger(ctx).Info("account locked",
		"user_id", msg.UserID,
		"email", slogx.MaskEmail(msg.Email),
		"locked_until", msg.LockedUntil,
	)
	return nil
}

func (n *LogNotifier) DepositCompleted(ctx context.Context, msg DepositMessage) error {
	n.logger(ctx).Info("deposit completed",
		"transaction_id", msg.TransactionID,
		"account_number", msg.AccountNumber,
		"amount", msg.Amount.StringFixed(2),
		"new_balance", msg.NewBalance.StringFixed(2),
		"performed_by", msg.PerformedBy,
	)
	return nil
}
