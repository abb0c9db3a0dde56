// Package session manages authenticated sessions against an LDAP-fronting
// credential server on behalf of a host application: interactive login with
// bounded retries, persisted session records, background token refresh, and
// lifecycle events for the host's account UI.
package session

import "time"

// Account is the display identity the host UI shows for a session.
type Account struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Record is the persisted unit of authentication state. The serialized list
// of records in the secure store is the sole source of truth; in-memory
// copies are never authoritative across asynchronous operations.
type Record struct {
	// ID is the username and is unique within the stored list.
	ID string `json:"id"`

	AccessToken string `json:"accessToken"`

	// RefreshToken may be empty when the server issued none; such a record
	// can never be refreshed.
	RefreshToken string `json:"refreshToken"`

	Account Account  `json:"account"`
	Scopes  []string `json:"scopes"`

	// ExpiresAt is the instant after which AccessToken must be treated as
	// invalid. It is computed by the configured expiry strategy at issue and
	// refresh time.
	ExpiresAt time.Time `json:"expiresAt"`

	// LoginNeeded tells the UI that re-authentication is required even
	// though a stored record exists.
	LoginNeeded bool `json:"loginNeeded"`
}

// Expired reports whether the access token must be considered invalid at t.
func (r Record) Expired(t time.Time) bool {
	return !t.Before(r.ExpiresAt)
}
