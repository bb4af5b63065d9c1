package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/recruitkit/bullhorn-mcp/pkg/bullhorn"
)

// JSONResult renders payload as indented JSON text, the shape assistants
// consume most reliably.
func JSONResult(payload any) *Result {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ErrorResult("internal", fmt.Sprintf("encoding result: %v", err))
	}
	return &Result{Status: ResultSuccess, Text: string(data)}
}

// ErrorResult builds a failed result with a machine-readable error kind.
// Tool failures are returned as structured errors, never thrown past the
// tool boundary.
func ErrorResult(kind, message string) *Result {
	return &Result{
		Status:  ResultError,
		Text:    message,
		Details: map[string]any{"error_kind": kind},
		Error:   message,
	}
}

// classifyError maps client/auth errors onto the adapter's error taxonomy.
func classifyError(err error) *Result {
	var (
		authErr     *bullhorn.AuthError
		notFoundErr *bullhorn.NotFoundError
		remoteErr   *bullhorn.RemoteError
	)
	switch {
	case errors.As(err, &authErr):
		return ErrorResult("authentication", authErr.Error())
	case errors.As(err, &notFoundErr):
		return ErrorResult("not_found", notFoundErr.Error())
	case errors.As(err, &remoteErr):
		return ErrorResult("remote_request", remoteErr.Error())
	default:
		// Anything else is a transport-level failure (connect, timeout,
		// malformed payload); the host may retry the whole invocation.
		return ErrorResult("transient_network", err.Error())
	}
}
