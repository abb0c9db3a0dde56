// Package dirclient is the HTTP client for the LDAP-fronting credential
// server. It issues bounded-timeout login, refresh, and logout requests and
// translates failures into typed errors; retry policy belongs to the caller.
package dirclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the credential server address used when no
	// deployment-specific URL is configured.
	DefaultBaseURL = "http://localhost:8389"

	defaultLoginTimeout   = 10 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultLogoutTimeout  = 5 * time.Second
)

// Client talks to the credential server. The zero timeouts are replaced with
// the defaults above; every request runs under its own deadline and the
// in-flight request is cancelled when it expires.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	LoginTimeout   time.Duration
	RefreshTimeout time.Duration
	LogoutTimeout  time.Duration

	// Limiter throttles refresh calls so a misbehaving sweep cannot hammer
	// the server. Nil disables throttling.
	Limiter *rate.Limiter
}

// NewClient creates a client for the given base URL with default timeouts and
// a conservative refresh limiter.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{},
		Limiter:    rate.NewLimiter(rate.Limit(1), 5),
	}
}

// postJSON sends a JSON body to path under the given timeout and returns the
// response with its body read. Transport failures and timeouts are reported
// as ErrUnreachable.
func (c *Client) postJSON(
	ctx context.Context,
	path string,
	timeout time.Duration,
	payload any,
) (*http.Response, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("dirclient: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("dirclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	respBody, err := readBody(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return resp, respBody, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) loginTimeout() time.Duration {
	if c.LoginTimeout > 0 {
		return c.LoginTimeout
	}
	return defaultLoginTimeout
}

func (c *Client) refreshTimeout() time.Duration {
	if c.RefreshTimeout > 0 {
		return c.RefreshTimeout
	}
	return defaultRefreshTimeout
}

func (c *Client) logoutTimeout() time.Duration {
	if c.LogoutTimeout > 0 {
		return c.LogoutTimeout
	}
	return defaultLogoutTimeout
}
