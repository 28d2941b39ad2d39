package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with access-specific ones
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RefreshClaims carry only the identity needed to rotate a session
type RefreshClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}
