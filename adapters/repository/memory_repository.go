package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

type record struct {
	user core.User
	hash []byte
}

// MemoryUserRepository implements the UserRepository port with an in-process
// map and bcrypt password hashes. Production deployments substitute their
// own repository; the session core only sees the port.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]record // keyed by normalized email
	clock ports.Clock
	cost  int
}

// NewMemoryUserRepository creates a new MemoryUserRepository
func NewMemoryUserRepository(clock ports.Clock) *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]record),
		clock: clock,
		cost:  bcrypt.DefaultCost,
	}
}

// CreateUser persists a new credential record
func (r *MemoryUserRepository) CreateUser(ctx context.Context, input ports.CreateUserInput) (*core.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), r.cost)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[input.Email]; exists {
		return nil, core.ErrDuplicateEmail
	}

	now := r.clock.Now()
	user := core.User{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[input.Email] = record{user: user, hash: hash}

	out := user
	return &out, nil
}

// FindByEmail looks up a credential by normalized email
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	out := rec.user
	return &out, nil
}

// VerifyPassword reports whether password matches the stored hash for user
func (r *MemoryUserRepository) VerifyPassword(ctx context.Context, user *core.User, password string) (bool, error) {
	r.mu.RLock()
	rec, ok := r.users[user.Email]
	r.mu.RUnlock()

	if !ok {
		return false, core.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}
