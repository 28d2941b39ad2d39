package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdall-auth/heimdall/adapters/cache"
	"github.com/heimdall-auth/heimdall/adapters/repository"
	"github.com/heimdall-auth/heimdall/adapters/tokenizer"
	"github.com/heimdall-auth/heimdall/ports"
	"github.com/heimdall-auth/heimdall/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := ports.SystemClock{}
	cfg := service.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	tk := tokenizer.NewJWTTokenizer(cfg.AccessSecret, cfg.RefreshSecret, 15*time.Minute, 7*24*time.Hour, clock)
	auth := service.NewAuthService(cfg, tk, cache.NewRedisCache(client), repository.NewMemoryUserRepository(clock), nil, clock, nil)

	return SetupRouter(auth)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, email string) AuthResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"email":    email,
		"password": "Str0ng!1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	resp := registerUser(t, router, "a@test.com")
	assert.Equal(t, "a@test.com", resp.User.Email)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
}

func TestRegisterWeakPassword(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"email":    "a@test.com",
		"password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "a@test.com")

	w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"email":    "a@test.com",
		"password": "Str0ng!1",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "a@test.com")

	w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    "a@test.com",
		"password": "Str0ng!1",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    "a@test.com",
		"password": "Wr0ng!pass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimited(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "a@test.com")

	for i := 0; i < 5; i++ {
		w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
			"email":    "a@test.com",
			"password": "Wr0ng!pass",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    "a@test.com",
		"password": "Str0ng!1",
	}, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRefreshEndpointRotates(t *testing.T) {
	router := newTestRouter(t)

	resp := registerUser(t, router, "a@test.com")

	w := doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{
		"refresh_token": resp.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Replaying the rotated-out token fails
	w = doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{
		"refresh_token": resp.Tokens.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	resp := registerUser(t, router, "a@test.com")

	w := doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer " + resp.Tokens.AccessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "a@test.com", me.Email)

	w = doJSON(t, router, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesAccess(t *testing.T) {
	router := newTestRouter(t)

	resp := registerUser(t, router, "a@test.com")

	w := doJSON(t, router, http.MethodPost, "/auth/logout", gin.H{
		"access_token":  resp.Tokens.AccessToken,
		"refresh_token": resp.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/authorize", nil, map[string]string{
		"Authorization": "Bearer " + resp.Tokens.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{
		"refresh_token": resp.Tokens.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
