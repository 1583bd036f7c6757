package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/store"
)

const (
	DefaultLoginAttempts   = 5
	DefaultLockoutDuration = 30 * time.Minute
)

// LockoutGovernor tracks consecutive failed logins per user and opens a
// fixed lockout window once Threshold is reached. Callers hand it the
// transaction holding the user row so the count can't race.
type LockoutGovernor struct {
	Threshold int
	Duration  time.Duration
	Metrics   *metrics.Metrics
}

// IsLockedOut reports whether u is inside a lockout window at now.
func (g *LockoutGovernor) IsLockedOut(u domain.User, now time.Time) bool {
	return u.IsLockedOut(now)
}

// RecordFailure counts one failed attempt. It reports true when this
// failure tripped the lockout, in which case the counter starts again from
// zero for the next window.
func (g *LockoutGovernor) RecordFailure(ctx context.Context, tx store.Tx, u domain.User, now time.Time) (bool, error) {
	n, err := tx.Users().IncrementFailedLoginAttempts(ctx, u.ID)
	if err != nil {
		return false, err
	}
	if n < g.Threshold {
		return false, nil
	}

	if err := tx.Users().LockUser(ctx, u.ID, now.Add(g.Duration)); err != nil {
		return false, err
	}
	g.Metrics.ObserveLockout()
	return true, nil
}

// ResetOnSuccess clears the failure counter and any expired window.
func (g *LockoutGovernor) ResetOnSuccess(ctx context.Context, tx store.Tx, u domain.User) error {
	if u.FailedLoginAttempts == 0 && u.LockedUntil == nil {
		return nil
	}
	return tx.Users().ResetLoginState(ctx, u.ID)
}

// LockoutMinutes is the window length as shown to users, rounded up.
func (g *LockoutGovernor) LockoutMinutes() int {
	return int((g.Duration + time.Minute - 1) / time.Minute)
}
