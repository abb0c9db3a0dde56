package dirclient

import (
	"context"
	"encoding/json"
	"fmt"
)

// Refresh exchanges a refresh token for a new token envelope. It returns
// *RefreshError on a non-success response and ErrUnreachable on transport
// failure or timeout.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
	}

	resp, body, err := c.postJSON(ctx, "/refresh", c.refreshTimeout(), tokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		return nil, &RefreshError{
			Status: resp.StatusCode,
			Detail: detail(body, "refresh token rejected"),
		}
	}

	// A 2xx status is authoritative; some server variants omit the
	// {success} flag on refresh.
	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("dirclient: decode refresh response: %w", err)
	}

	tokens := parsed.Tokens
	return &tokens, nil
}
