package dirclient

import (
	"context"
	"fmt"
)

// Logout invalidates the refresh token on the server. Callers treat this as
// best-effort: the error is returned for logging but local session removal
// must not depend on it.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	resp, body, err := c.postJSON(ctx, "/logout", c.logoutTimeout(), tokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return err
	}

	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("dirclient: logout failed (status %d): %s",
			resp.StatusCode, detail(body, "logout rejected"))
	}

	return nil
}
