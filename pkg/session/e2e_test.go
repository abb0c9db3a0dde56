package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/ldapsession/pkg/dirclient"
	"github.com/aussiebroadwan/ldapsession/pkg/securestore"
	"github.com/aussiebroadwan/ldapsession/pkg/session"
	"github.com/stretchr/testify/require"
)

// TestEndToEndLoginAndSweep drives the real HTTP client against a fake
// credential server: login stores the minimal token envelope as-is, and a
// later sweep rotates the access token.
func TestEndToEndLoginAndSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var accessToken atomic.Value
	accessToken.Store("T1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tokens": map[string]string{"accessToken": accessToken.Load().(string)},
			})
		case "/refresh":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tokens": map[string]string{"accessToken": accessToken.Load().(string)},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	backend := securestore.NewMemory()
	store := session.NewRecordStore(backend)

	manager := session.NewManager(
		session.Config{},
		dirclient.NewClient(server.URL),
		backend,
		&fakePrompter{usernames: []string{"a"}, passwords: []string{"p"}},
		nil,
	)
	t.Cleanup(manager.Dispose)

	record, err := manager.CreateSession(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "a", record.ID)
	require.Equal(t, "T1", record.AccessToken)
	require.Empty(t, record.RefreshToken)

	// Hand the stored session a refresh token and force it past expiry, the
	// way a long-lived deployment would find it.
	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	records[0].RefreshToken = "R1"
	records[0].ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, records))

	accessToken.Store("T2")
	require.NoError(t, manager.RefreshSessions(ctx))

	records, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "T2", records[0].AccessToken)
	require.Equal(t, "R1", records[0].RefreshToken)
	require.True(t, time.Now().Before(records[0].ExpiresAt))
}
