package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

const (
	// Issuer identifies this trust domain in every issued token
	Issuer = "heimdall"

	// AudienceAccess marks a token as an access token
	AudienceAccess = "session:access"

	// AudienceRefresh marks a token as a refresh token
	AudienceRefresh = "session:refresh"
)

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs.
// Access and refresh tokens are signed with distinct secrets so a refresh
// token can never pass as an access token even if audiences were confused.
type JWTTokenizer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         ports.Clock
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration, clock ports.Clock) *JWTTokenizer {
	return &JWTTokenizer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         clock,
	}
}

// IssueAccess signs a short-lived access token for user
func (j *JWTTokenizer) IssueAccess(user *core.User) (string, *core.Claims, error) {
	now := j.clock.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AudienceAccess},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
		Role:  user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.accessSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, accessToClaims(&claims), nil
}

// IssueRefresh signs a long-lived refresh token for user
func (j *JWTTokenizer) IssueRefresh(user *core.User) (string, *core.Claims, error) {
	now := j.clock.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AudienceRefresh},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signed, refreshToClaims(&claims), nil
}

// VerifyAccess parses and validates an access token. Signature, expiry,
// issuer and audience failures all surface as core.ErrTokenInvalid so the
// caller cannot leak the exact cause.
func (j *JWTTokenizer) VerifyAccess(tokenStr string) (*core.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, j.keyFunc(j.accessSecret),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AudienceAccess),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, core.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrTokenInvalid
	}

	return accessToClaims(claims), nil
}

// VerifyRefresh parses and validates a refresh token
func (j *JWTTokenizer) VerifyRefresh(tokenStr string) (*core.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, j.keyFunc(j.refreshSecret),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AudienceRefresh),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, core.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return nil, core.ErrTokenInvalid
	}

	return refreshToClaims(claims), nil
}

// keyFunc validates the signing method before handing out the secret
func (j *JWTTokenizer) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}
}

func accessToClaims(c *AccessClaims) *core.Claims {
	return &core.Claims{
		TokenID:   c.ID,
		Subject:   c.Subject,
		Email:     c.Email,
		Role:      c.Role,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}
}

func refreshToClaims(c *RefreshClaims) *core.Claims {
	return &core.Claims{
		TokenID:   c.ID,
		Subject:   c.Subject,
		Email:     c.Email,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}
}
