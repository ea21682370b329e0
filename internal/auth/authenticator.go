// Package auth issues and verifies the bearer tokens that bind a client to
// its session. There are no user accounts.
package auth

// Authenticator defines the interface for session token implementations.
// This abstraction allows swapping the token format without changing the
// service or middleware code.
type Authenticator interface {
	// Issue returns a token that grants access to the session.
	Issue(sessionID string) (string, error)

	// Verify checks a token and returns the session id it grants access to.
	// It returns an error wrapping ErrInvalidToken when the token is
	// malformed, expired or signed with another key.
	Verify(token string) (string, error)
}
