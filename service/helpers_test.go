package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/heimdall-auth/heimdall/adapters/cache"
	"github.com/heimdall-auth/heimdall/adapters/repository"
	"github.com/heimdall-auth/heimdall/adapters/tokenizer"
	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingRepo wraps a UserRepository and counts calls, so tests can assert
// that validation failures never reach the repository. The counter is
// atomic; concurrency tests drive this fake from multiple goroutines.
type countingRepo struct {
	inner ports.UserRepository
	calls atomic.Int64
}

func (r *countingRepo) CreateUser(ctx context.Context, input ports.CreateUserInput) (*core.User, error) {
	r.calls.Add(1)
	return r.inner.CreateUser(ctx, input)
}

func (r *countingRepo) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	r.calls.Add(1)
	return r.inner.FindByEmail(ctx, email)
}

func (r *countingRepo) VerifyPassword(ctx context.Context, user *core.User, password string) (bool, error) {
	r.calls.Add(1)
	return r.inner.VerifyPassword(ctx, user, password)
}

// downCache simulates an unreachable shared store.
type downCache struct{}

func (downCache) Get(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("%w: connection refused", core.ErrInfrastructure)
}

func (downCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return fmt.Errorf("%w: connection refused", core.ErrInfrastructure)
}

func (downCache) Delete(ctx context.Context, key string) error {
	return fmt.Errorf("%w: connection refused", core.ErrInfrastructure)
}

func (downCache) CompareAndReplace(ctx context.Context, key, expected, next string, ttl time.Duration) (bool, error) {
	return false, fmt.Errorf("%w: connection refused", core.ErrInfrastructure)
}

func (downCache) IncrementWithCap(ctx context.Context, key string, cap int64, ttlIfNew time.Duration) (int64, error) {
	return 0, fmt.Errorf("%w: connection refused", core.ErrInfrastructure)
}

type recordedEvent struct {
	kind    string
	userID  string
	tokenID string
}

// recordingPublisher captures published session events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) record(kind, userID, tokenID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{kind: kind, userID: userID, tokenID: tokenID})
}

func (p *recordingPublisher) PublishLogin(ctx context.Context, userID, tokenID string) error {
	p.record("login", userID, tokenID)
	return nil
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, userID, tokenID string) error {
	p.record("logout", userID, tokenID)
	return nil
}

func (p *recordingPublisher) PublishRefresh(ctx context.Context, userID, tokenID string) error {
	p.record("refresh", userID, tokenID)
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.kind
	}
	return out
}

type testEnv struct {
	auth      *AuthService
	cache     ports.Cache
	users     *countingRepo
	clock     *fakeClock
	publisher *recordingPublisher
	redis     *miniredis.Miniredis
}

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		LoginLimit:    5,
		LoginWindow:   15 * time.Minute,
	}
}

// newTestEnv builds an AuthService on a miniredis-backed cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return newTestEnvWithCache(t, cache.NewRedisCache(client), mr)
}

// newTestEnvMemory builds an AuthService on the in-memory cache, where the
// fake clock also drives entry expiry.
func newTestEnvMemory(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{clock: newFakeClock()}
	return buildEnv(t, env, nil)
}

func newTestEnvWithCache(t *testing.T, c ports.Cache, mr *miniredis.Miniredis) *testEnv {
	t.Helper()

	env := &testEnv{clock: newFakeClock(), redis: mr}
	return buildEnv(t, env, c)
}

func buildEnv(t *testing.T, env *testEnv, c ports.Cache) *testEnv {
	t.Helper()

	if c == nil {
		c = cache.NewMemoryCache(env.clock)
	}

	cfg := testConfig()
	tk := tokenizer.NewJWTTokenizer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL, env.clock)

	env.cache = c
	env.users = &countingRepo{inner: repository.NewMemoryUserRepository(env.clock)}
	env.publisher = &recordingPublisher{}
	env.auth = NewAuthService(cfg, tk, c, env.users, env.publisher, env.clock, slog.New(slog.DiscardHandler))

	return env
}

func (e *testEnv) register(t *testing.T, email, password string) *core.AuthResult {
	t.Helper()

	result, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return result
}
