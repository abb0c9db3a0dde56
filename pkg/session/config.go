package session

import "time"

const (
	// DefaultTTL is the client-side access token lifetime under the
	// FixedTTL strategy.
	DefaultTTL = 10 * time.Minute

	// DefaultSweepInterval is how often the background refresh pass runs.
	DefaultSweepInterval = 10 * time.Minute

	// DefaultMaxLoginAttempts caps interactive login retries.
	DefaultMaxLoginAttempts = 3
)

// Config tunes the lifecycle manager. The zero value is usable; unset fields
// take the defaults above.
type Config struct {
	// SweepInterval is the period of the background refresh timer.
	SweepInterval time.Duration

	// MaxLoginAttempts caps interactive login retries for recoverable
	// failures (rejected credentials, unreachable server).
	MaxLoginAttempts int

	// Expiry selects the token expiry strategy. Nil means FixedTTL with
	// DefaultTTL.
	Expiry ExpiryStrategy
}

func (c Config) withDefaults() Config {
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.MaxLoginAttempts <= 0 {
		c.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	if c.Expiry == nil {
		c.Expiry = FixedTTL{TTL: DefaultTTL}
	}
	return c
}
