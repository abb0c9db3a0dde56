package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryStrategy decides when a freshly issued or refreshed access token
// stops being trusted. Two deployed server variants exist: one where the
// client applies its own fixed TTL, and one where the access token itself
// carries the authoritative expiry. The strategy is configuration so a
// deployment can match its server.
type ExpiryStrategy interface {
	ExpiresAt(now time.Time, accessToken string) time.Time
}

// FixedTTL expires tokens a fixed duration after issue, regardless of any
// server-advised lifetime. This is the default strategy.
type FixedTTL struct {
	TTL time.Duration
}

func (s FixedTTL) ExpiresAt(now time.Time, _ string) time.Time {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(ttl)
}

// ServerAdvised trusts the exp claim of a JWT access token. The token is
// parsed without signature verification: the client has no verification key
// and the claim is only used for refresh scheduling, not authorization.
// Tokens that are not JWTs or carry no exp fall back to a fixed TTL.
type ServerAdvised struct {
	Fallback time.Duration
}

func (s ServerAdvised) ExpiresAt(now time.Time, accessToken string) time.Time {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err == nil {
		if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}

	return FixedTTL{TTL: s.Fallback}.ExpiresAt(now, accessToken)
}
