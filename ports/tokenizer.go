package ports

import "github.com/heimdall-auth/heimdall/core"

// Tokenizer creates and verifies signed bearer tokens, independent of storage.
// Access and refresh tokens use distinct signing secrets so one kind cannot
// be substituted for the other.
type Tokenizer interface {
	// IssueAccess signs a short-lived access token for user.
	IssueAccess(user *core.User) (string, *core.Claims, error)

	// IssueRefresh signs a long-lived refresh token for user.
	IssueRefresh(user *core.User) (string, *core.Claims, error)

	// VerifyAccess checks signature, expiry, issuer and audience of an
	// access token. All failure causes map to core.ErrTokenInvalid.
	VerifyAccess(token string) (*core.Claims, error)

	// VerifyRefresh is VerifyAccess for refresh tokens.
	VerifyRefresh(token string) (*core.Claims, error)
}
