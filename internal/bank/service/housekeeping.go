package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/store"
)

const DefaultHousekeepingInterval = time.Hour

// HousekeepingService sweeps expired OTPs and refresh token records on a
// ticker. Lookups already ignore expired rows; sweeping frees their OTP
// fingerprints from the unique index and keeps the token table small.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// SweepResult counts what one sweep removed.
type SweepResult struct {
	OTPsCleared          int64
	RefreshTokensDeleted int64
}

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &HousekeepingService{Store: st, Logger: logger, Interval: interval}
}

// Start sweeps once right away, then every Interval until Stop.
func (s *HousekeepingService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.sweepAndLog(ctx)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweepAndLog(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop waits for a sweep in progress to finish.
func (s *HousekeepingService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.Logger.Info("housekeeping stopped")
}

// Sweep removes everything that expired before now. Both deletions are
// attempted even if the first fails.
func (s *HousekeepingService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult
	var otpErr, tokenErr error

	res.OTPsCleared, otpErr = s.Store.Users().ClearExpiredOTPs(ctx, now)
	res.RefreshTokensDeleted, tokenErr = s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)

	return res, errors.Join(otpErr, tokenErr)
}

func (s *HousekeepingService) sweepAndLog(ctx context.Context) {
	res, err := s.Sweep(context.WithoutCancel(ctx), time.Now().UTC())
	if err != nil {
		s.Logger.Error("housekeeping sweep failed", "error", err)
	}
	s.Logger.Info("housekeeping sweep done",
		"otps_cleared", res.OTPsCleared,
		"refresh_tokens_deleted", res.RefreshTokensDeleted,
	)
}
