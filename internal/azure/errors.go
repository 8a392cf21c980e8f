package azure

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the Azure DevOps
// API. Callers should prefer the predicate functions (IsNotFound,
// IsUnauthorized, etc.) to inspect errors rather than asserting on this
// type directly.
type APIError struct {
	operation  string
	statusCode int
	typeKey    string
	message    string
}

func (e *APIError) Error() string {
	if e.typeKey != "" {
		return fmt.Sprintf("%s: HTTP %d: [%s] %s", e.operation, e.statusCode, e.typeKey, e.message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.operation, e.statusCode, e.message)
}

func newAPIError(operation string, statusCode int, typeKey, message string) *APIError {
	return &APIError{
		operation:  operation,
		statusCode: statusCode,
		typeKey:    typeKey,
		message:    message,
	}
}

// StatusCode returns the HTTP status code from the response.
func (e *APIError) StatusCode() int { return e.statusCode }

// TypeKey returns the service's exception type key, when present.
func (e *APIError) TypeKey() string { return e.typeKey }

// Message returns the human-readable error message.
func (e *APIError) Message() string { return e.message }

// Operation returns a short description of the API call that failed.
func (e *APIError) Operation() string { return e.operation }

// IsNotFound reports whether err is an API error with HTTP 404 status.
func IsNotFound(err error) bool { return HasStatusCode(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is an API error with HTTP 401 status.
func IsUnauthorized(err error) bool { return HasStatusCode(err, http.StatusUnauthorized) }

// IsForbidden reports whether err is an API error with HTTP 403 status.
func IsForbidden(err error) bool { return HasStatusCode(err, http.StatusForbidden) }

// HasStatusCode reports whether err is an API error whose HTTP status code matches.
func HasStatusCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.statusCode == code
}
