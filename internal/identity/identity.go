// Package identity establishes who the current session belongs to, either
// anonymously or from a pre-issued token.
package identity

import (
	"context"
	"errors"
)

// ErrAuthentication wraps every sign-in failure.
var ErrAuthentication = errors.New("authentication failed")

// Provider is the identity collaborator a session is built on.
type Provider interface {
	// OnUserChanged calls fn with the current user id ("" when signed out)
	// immediately and again on every change, until unsubscribe is called.
	OnUserChanged(fn func(uid string)) (unsubscribe func())
	SignInAnonymously(ctx context.Context) (string, error)
	SignInWithToken(ctx context.Context, token string) (string, error)
}
