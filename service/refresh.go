package service

import (
	"context"
	"fmt"
	"time"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

// ErrTokenReplay marks a rotation attempt with a refresh token that is no
// longer the one on record. It wraps core.ErrTokenInvalid so callers see
// an undifferentiated invalid token; only logs learn it was a replay.
var ErrTokenReplay = fmt.Errorf("%w: refresh token replay", core.ErrTokenInvalid)

// RefreshTokenStore tracks the single currently-valid refresh token per
// subject. Rotation rides on the cache's compare-and-replace primitive so
// two concurrent presentations of the same token resolve to one winner.
type RefreshTokenStore struct {
	cache ports.Cache
	ttl   time.Duration
}

// NewRefreshTokenStore creates a new RefreshTokenStore
func NewRefreshTokenStore(cache ports.Cache, ttl time.Duration) *RefreshTokenStore {
	return &RefreshTokenStore{cache: cache, ttl: ttl}
}

// Store records token as the only valid refresh token for subjectID,
// replacing whatever was there before.
func (s *RefreshTokenStore) Store(ctx context.Context, subjectID, token string) error {
	if err := s.cache.SetWithTTL(ctx, refreshKey(subjectID), token, s.ttl); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ValidateAndRotate atomically replaces the stored refresh token with next
// if and only if presented is the one on record. Exactly one of two
// concurrent attempts with the same presented token succeeds; the loser
// gets ErrTokenReplay.
func (s *RefreshTokenStore) ValidateAndRotate(ctx context.Context, subjectID, presented, next string) error {
	ok, err := s.cache.CompareAndReplace(ctx, refreshKey(subjectID), presented, next, s.ttl)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !ok {
		return ErrTokenReplay
	}
	return nil
}

// Invalidate drops the stored refresh token for subjectID, moving the
// session to its terminal state. Idempotent.
func (s *RefreshTokenStore) Invalidate(ctx context.Context, subjectID string) error {
	if err := s.cache.Delete(ctx, refreshKey(subjectID)); err != nil {
		return fmt.Errorf("failed to invalidate refresh token: %w", err)
	}
	return nil
}
