package session

import "context"

// Prompter is the host's interactive input surface. Prompts that receive no
// input must return an empty string rather than block; the manager treats
// empty input as user abandonment and aborts instead of re-prompting.
type Prompter interface {
	// Username asks for the account name in plain text.
	Username(ctx context.Context) (string, error)

	// Password asks for the password with masked input.
	Password(ctx context.Context) (string, error)

	// Warn surfaces a non-blocking warning, used between login retries.
	Warn(message string)
}
