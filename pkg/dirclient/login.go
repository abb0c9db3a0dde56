package dirclient

import (
	"context"
	"encoding/json"
	"fmt"
)

// Login authenticates the user against the directory. It returns *AuthError
// when the server rejects the credentials and ErrUnreachable on transport
// failure or timeout. No retries happen here.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, body, err := c.postJSON(ctx, "/login", c.loginTimeout(), loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		return nil, &AuthError{
			Status: resp.StatusCode,
			Detail: detail(body, "invalid username or password"),
		}
	}

	// A 2xx status is authoritative; some server variants omit the
	// {success} flag.
	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("dirclient: decode login response: %w", err)
	}

	return &LoginResult{User: parsed.User, Tokens: parsed.Tokens}, nil
}
