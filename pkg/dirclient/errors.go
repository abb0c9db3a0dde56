package dirclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnreachable wraps transport errors and timeouts. Callers treat it as a
// retryable network failure, distinct from the server rejecting a request.
var ErrUnreachable = errors.New("dirclient: server unreachable")

// AuthError is a login rejection from the server. Detail is the server's
// human-readable reason when one was provided.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("dirclient: login rejected (status %d): %s", e.Status, e.Detail)
}

// RefreshError is a refresh rejection from the server.
type RefreshError struct {
	Status int
	Detail string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("dirclient: refresh rejected (status %d): %s", e.Status, e.Detail)
}

// detail extracts the optional {detail} field from a non-2xx body, falling
// back to the given generic message.
func detail(body []byte, fallback string) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return fallback
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
