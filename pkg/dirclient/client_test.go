package dirclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/ldapsession/pkg/dirclient"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user": map[string]any{
				"username":    "amber",
				"email":       "amber@example.com",
				"displayName": "Amber L",
				"groups":      []string{"staff"},
			},
			"tokens": map[string]string{
				"accessToken":  "access-1",
				"refreshToken": "refresh-1",
			},
		})
	}))
	t.Cleanup(server.Close)

	client := dirclient.NewClient(server.URL)
	result, err := client.Login(context.Background(), "amber", "p4ss")
	require.NoError(t, err)

	require.Equal(t, "/login", gotPath)
	require.Equal(t, map[string]string{"username": "amber", "password": "p4ss"}, gotBody)

	require.Equal(t, "amber", result.User.Username)
	require.Equal(t, []string{"staff"}, result.User.Groups)
	require.Equal(t, "access-1", result.Tokens.AccessToken)
	require.Equal(t, "refresh-1", result.Tokens.RefreshToken)
}

func TestLoginMinimalEnvelope(t *testing.T) {
	t.Parallel()

	// Some server variants return only the token envelope.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tokens": map[string]string{"accessToken": "T1"},
		})
	}))
	t.Cleanup(server.Close)

	result, err := dirclient.NewClient(server.URL).Login(context.Background(), "a", "p")
	require.NoError(t, err)
	require.Equal(t, "T1", result.Tokens.AccessToken)
	require.Empty(t, result.Tokens.RefreshToken)
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()

	t.Run("with detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "account locked"})
		}))
		t.Cleanup(server.Close)

		_, err := dirclient.NewClient(server.URL).Login(context.Background(), "amber", "bad")

		var authErr *dirclient.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, http.StatusUnauthorized, authErr.Status)
		require.Equal(t, "account locked", authErr.Detail)
	})

	t.Run("without detail falls back to generic message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(server.Close)

		_, err := dirclient.NewClient(server.URL).Login(context.Background(), "amber", "bad")

		var authErr *dirclient.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "invalid username or password", authErr.Detail)
	})
}

func TestLoginUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	_, err := dirclient.NewClient(server.URL).Login(context.Background(), "amber", "p4ss")
	require.ErrorIs(t, err, dirclient.ErrUnreachable)
}

func TestLoginTimeoutCancelsRequest(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	cancelled := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Drain the body so net/http starts its background connection read;
		// otherwise the server never observes the client disconnect and
		// r.Context() is never cancelled.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
		close(cancelled)
	}))
	t.Cleanup(server.Close)

	client := dirclient.NewClient(server.URL)
	client.LoginTimeout = 50 * time.Millisecond

	_, err := client.Login(context.Background(), "amber", "p4ss")
	require.ErrorIs(t, err, dirclient.ErrUnreachable)

	<-started
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("server never observed request cancellation")
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("success rotates tokens", func(t *testing.T) {
		var gotBody map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/refresh", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"tokens": map[string]string{
					"accessToken":  "access-2",
					"refreshToken": "refresh-2",
				},
			})
		}))
		t.Cleanup(server.Close)

		tokens, err := dirclient.NewClient(server.URL).Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)
		require.Equal(t, map[string]string{"refresh_token": "refresh-1"}, gotBody)
		require.Equal(t, "access-2", tokens.AccessToken)
		require.Equal(t, "refresh-2", tokens.RefreshToken)
	})

	t.Run("rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token revoked"})
		}))
		t.Cleanup(server.Close)

		_, err := dirclient.NewClient(server.URL).Refresh(context.Background(), "refresh-1")

		var refreshErr *dirclient.RefreshError
		require.ErrorAs(t, err, &refreshErr)
		require.Equal(t, "token revoked", refreshErr.Detail)
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		_, err := dirclient.NewClient(server.URL).Refresh(context.Background(), "refresh-1")
		require.ErrorIs(t, err, dirclient.ErrUnreachable)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		var gotBody map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/logout", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)

		err := dirclient.NewClient(server.URL).Logout(context.Background(), "refresh-1")
		require.NoError(t, err)
		require.Equal(t, map[string]string{"refresh_token": "refresh-1"}, gotBody)
	})

	t.Run("non-2xx is an error for the caller to log", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		err := dirclient.NewClient(server.URL).Logout(context.Background(), "refresh-1")
		require.Error(t, err)
	})
}
