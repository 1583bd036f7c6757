package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/metrics"
	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/idx"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// SessionService mints access/refresh token pairs and rotates them. Both
// tokens are signed JWTs, the refresh token is also recorded by fingerprint
// so that rotation retires it.
type SessionService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Metrics    *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue starts a new session for u inside tx.
func (s *SessionService) Issue(ctx context.Context, tx store.Tx, u domain.User, now time.Time) (domain.TokenPair, error) {
	return s.issuePair(ctx, tx, u, idx.New().String(), now)
}

func (s *SessionService) issuePair(ctx context.Context, tx store.Tx, u domain.User, sid string, now time.Time) (domain.TokenPair, error) {
	access, err := s.sign(u, sid, jwtx.TokenTypeAccess, s.AccessTTL, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.sign(u, sid, jwtx.TokenTypeRefresh, s.RefreshTTL, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		SessionID: sid,
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(s.AccessTTL),
		RefreshToken:     refresh,
		RefreshExpiresAt: rt.ExpiresAt,
		SessionID:        sid,
	}, nil
}

func (s *SessionService) sign(u domain.User, sid, typ string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwtx.NewSessionClaims(jwtx.SessionClaimsParams{
		Subject:   u.ID,
		SessionID: sid,
		TokenType: typ,
		Email:     u.Email,
		Issuer:    s.Issuer,
		Audience:  s.Audience,
		TTL:       ttl,
		Now:       now,
	})
	return s.KeyManager.Signer.Sign(claims)
}

// Refresh exchanges a refresh token for a new pair in the same session and
// retires the presented one. Every failure is ErrRefreshInvalid.
func (s *SessionService) Refresh(ctx context.Context, raw string) (domain.TokenPair, error) {
	pair, err := s.refresh(ctx, strings.TrimSpace(raw))
	switch {
	case err == nil:
		s.Metrics.ObserveRefresh("ok")
	case errors.Is(err, ErrRefreshInvalid):
		s.Metrics.ObserveRefresh("invalid")
	default:
		s.Metrics.ObserveRefresh("error")
	}
	return pair, err
}

func (s *SessionService) refresh(ctx context.Context, raw string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	if raw == "" {
		return domain.TokenPair{}, ErrRefreshInvalid
	}

	claims, err := s.KeyManager.Verifier.Verify(raw)
	if err != nil {
		l.Debug("refresh token rejected", "error", err)
		return domain.TokenPair{}, ErrRefreshInvalid
	}
	if err := claims.ValidateType(jwtx.TokenTypeRefresh); err != nil {
		l.Debug("refresh token rejected", "error", err)
		return domain.TokenPair{}, ErrRefreshInvalid
	}

	now := s.now()
	fp := cryptox.FingerprintToken(raw)

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// a validly signed token without a live record was already rotated
				l.Warn("refresh token reuse detected",
					"user_id", claims.Subject,
					"session_id", claims.SID,
				)
				return ErrRefreshInvalid
			}
			return err
		}

		u, err := tx.Users().GetUserByID(ctx, claims.Subject)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRefreshInvalid
		}
		if err != nil {
			return err
		}
		if !u.Active {
			l.Info("refresh refused for inactive user", "user_id", u.ID)
			return ErrRefreshInvalid
		}

		pair, err = s.issuePair(ctx, tx, u, claims.SID, now)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return pair, nil
}
