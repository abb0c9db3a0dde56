package session_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/ldapsession/pkg/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestFixedTTL(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()

	t.Run("uses configured TTL", func(t *testing.T) {
		strategy := session.FixedTTL{TTL: 5 * time.Minute}
		require.Equal(t, now.Add(5*time.Minute), strategy.ExpiresAt(now, "whatever"))
	})

	t.Run("zero TTL falls back to default", func(t *testing.T) {
		strategy := session.FixedTTL{}
		require.Equal(t, now.Add(session.DefaultTTL), strategy.ExpiresAt(now, "whatever"))
	})
}

func TestServerAdvised(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	strategy := session.ServerAdvised{Fallback: 2 * time.Minute}

	t.Run("trusts exp claim of a JWT token", func(t *testing.T) {
		exp := now.Add(42 * time.Minute)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "amber",
			"exp": exp.Unix(),
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		require.Equal(t, exp.Unix(), strategy.ExpiresAt(now, token).Unix())
	})

	t.Run("opaque token falls back to fixed TTL", func(t *testing.T) {
		require.Equal(t, now.Add(2*time.Minute), strategy.ExpiresAt(now, "opaque-token"))
	})

	t.Run("JWT without exp falls back", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "amber",
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		require.Equal(t, now.Add(2*time.Minute), strategy.ExpiresAt(now, token))
	})
}
