package session

import "errors"

var (
	// ErrMissingUsername reports an abandoned username prompt. This aborts
	// login immediately; it is not a retryable failure.
	ErrMissingUsername = errors.New("session: username not provided")

	// ErrMissingPassword reports an abandoned password prompt.
	ErrMissingPassword = errors.New("session: password not provided")

	// ErrMaxAttempts is returned after the login attempt cap is exhausted.
	ErrMaxAttempts = errors.New("session: maximum login attempts exceeded")

	// ErrCorrupt reports persisted session data that cannot be parsed.
	// Readers may choose to treat the store as empty.
	ErrCorrupt = errors.New("session: corrupt session store")
)
