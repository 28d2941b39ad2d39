package ports

import (
	"context"

	"github.com/heimdall-auth/heimdall/core"
)

// CreateUserInput carries the fields for a new credential record.
// The password travels in plaintext only as far as the repository,
// which owns the hashing.
type CreateUserInput struct {
	Email    string
	Password string
	Role     string
}

// UserRepository is the external identity store. The session core reads
// identity facts through it and never mutates them.
type UserRepository interface {
	// CreateUser persists a new credential. Returns core.ErrDuplicateEmail
	// when the normalized email already exists.
	CreateUser(ctx context.Context, input CreateUserInput) (*core.User, error)

	// FindByEmail looks up a credential by normalized email.
	// Returns core.ErrUserNotFound for unknown identities.
	FindByEmail(ctx context.Context, email string) (*core.User, error)

	// VerifyPassword reports whether password matches the stored hash for user.
	VerifyPassword(ctx context.Context, user *core.User, password string) (bool, error)
}
