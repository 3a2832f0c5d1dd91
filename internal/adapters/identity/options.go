package identity

// Option applies a configuration option to the Anonymous provider.
type Option func(*Anonymous)

// WithSignInHook registers a callback fired for every minted uid.
func WithSignInHook(fn func(uid string)) Option {
	return func(a *Anonymous) {
		a.onSignIn = fn
	}
}
