package dirclient

import (
	"io"
	"net/http"
)

// User is the directory identity returned by a successful login.
type User struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Groups      []string `json:"groups"`
}

// Tokens is the credential envelope issued on login and refresh. The server
// may omit the refresh token, in which case the session cannot be refreshed.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// LoginResult carries the identity and tokens from a successful login.
type LoginResult struct {
	User   User
	Tokens Tokens
}

// loginRequest is the POST /login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenRequest is the POST /refresh and POST /logout body.
type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// loginResponse is the success envelope for POST /login.
type loginResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Tokens  Tokens `json:"tokens"`
}

// refreshResponse is the success envelope for POST /refresh.
type refreshResponse struct {
	Success bool   `json:"success"`
	Tokens  Tokens `json:"tokens"`
}

// errorResponse is the optional non-2xx body carrying a human-readable
// reason.
type errorResponse struct {
	Detail string `json:"detail"`
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
