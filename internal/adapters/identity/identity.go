// Package identity issues anonymous participant identities. The login flow
// never collects credentials; each participant gets an opaque uid that
// becomes the canonical key for every record they own.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Provider issues identities for new sign-ins.
type Provider interface {
	// SignInAnonymously mints a fresh uid.
	SignInAnonymously(ctx context.Context) (string, error)
}

// Anonymous is the default provider. Uids are random UUIDs, so identities
// survive restarts only through the records written under them.
type Anonymous struct {
	onSignIn func(uid string)
}

// NewAnonymous constructs the provider.
func NewAnonymous(opts ...Option) *Anonymous {
	a := &Anonymous{}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// SignInAnonymously mints a fresh uid and fires the sign-in hook.
func (a *Anonymous) SignInAnonymously(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	uid := uuid.NewString()
	if a.onSignIn != nil {
		a.onSignIn(uid)
	}
	return uid, nil
}
