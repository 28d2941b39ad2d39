package core

import "time"

// User is the credential record owned by the external UserRepository.
// The session core treats it as read-only input.
type User struct {
	ID        string
	Email     string // normalized: trimmed, lower-cased
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Claims is the decoded content of a verified token.
type Claims struct {
	TokenID   string // JTI, the revocation key for access tokens
	Subject   string // user ID
	Email     string
	Role      string // empty on refresh tokens
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the access+refresh pair returned by Register, Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *User
	Tokens TokenPair
}
