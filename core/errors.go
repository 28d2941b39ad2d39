package core

import "errors"

var (
	// ErrValidation is returned when input violates the credential policy
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication is returned when credentials do not match a known user
	ErrAuthentication = errors.New("invalid email or password")

	// ErrRateLimited is returned when the attempt budget for an identifier is exhausted
	ErrRateLimited = errors.New("too many attempts")

	// ErrTokenInvalid covers malformed, expired, mismatched and replayed tokens.
	// The causes are deliberately not distinguished to callers.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenRevoked is returned when an access token was revoked before its expiry
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrDuplicateEmail is returned when the identity already exists
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUserNotFound is returned by the user repository for unknown identities
	ErrUserNotFound = errors.New("user not found")

	// ErrInfrastructure is returned when the cache or repository is unreachable.
	// An unreachable revocation registry must never be treated as "not revoked".
	ErrInfrastructure = errors.New("infrastructure unavailable")

	// ErrCacheMiss is returned by the cache port for absent keys
	ErrCacheMiss = errors.New("cache miss")
)
