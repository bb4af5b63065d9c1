package bullhorn

import (
	"errors"
	"fmt"
)

// AuthError indicates the OAuth credential exchange or REST login was
// rejected or failed. Detail carries the remote-provided message; credentials
// are never included.
type AuthError struct {
	Stage  string // "authorize", "token", "refresh" or "login"
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bullhorn auth failed during %s", e.Stage)
	}
	return fmt.Sprintf("bullhorn auth failed during %s: %s", e.Stage, e.Detail)
}

// NotFoundError indicates a by-id lookup matched no record. A zero-result
// search is not an error and returns an empty slice instead.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// RemoteError is any non-auth 4xx/5xx from the Bullhorn REST API. These are
// not assumed transient and are never retried.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bullhorn API returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("bullhorn API returned HTTP %d: %s", e.StatusCode, e.Detail)
}

// errSessionExpired is returned internally when the REST API reports an
// invalid session. The client converts it into exactly one
// force-refresh-and-retry cycle; it never crosses the package boundary.
var errSessionExpired = errors.New("bullhorn session expired")
