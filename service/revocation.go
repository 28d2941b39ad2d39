package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

// RevocationRegistry tracks revoked access tokens until their natural
// expiry. Entries self-expire in the cache; a revoked token never outlives
// its own exp in the registry.
type RevocationRegistry struct {
	cache ports.Cache
	clock ports.Clock
}

// NewRevocationRegistry creates a new RevocationRegistry
func NewRevocationRegistry(cache ports.Cache, clock ports.Clock) *RevocationRegistry {
	return &RevocationRegistry{cache: cache, clock: clock}
}

// Revoke marks the access token behind claims as revoked for its remaining
// lifetime. Revoking an already expired token is a no-op.
func (r *RevocationRegistry) Revoke(ctx context.Context, claims *core.Claims) error {
	remaining := claims.ExpiresAt.Sub(r.clock.Now())
	if remaining <= 0 {
		return nil
	}

	if err := r.cache.SetWithTTL(ctx, revokedKey(claims.TokenID), "1", remaining); err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

// IsRevoked reports whether the access token identified by tokenID has been
// revoked. Cache unavailability propagates as an error: silently trusting
// an unreachable registry would defeat its purpose.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.cache.Get(ctx, revokedKey(tokenID))
	if err != nil {
		if errors.Is(err, core.ErrCacheMiss) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return true, nil
}
