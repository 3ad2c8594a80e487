// ABOUTME: Error types returned by the intranet API client
// ABOUTME: Separates transport failures from server-reported failures

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnreachable wraps every failure where no response was received
var ErrUnreachable = errors.New("cannot reach server")

// ErrMalformed is returned when a 2xx response does not have the expected shape
var ErrMalformed = errors.New("invalid response from backend")

// ErrNotFound is returned when the API answers without the requested entity
var ErrNotFound = errors.New("not found")

// APIError is a non-success HTTP status, with the server-provided message if any
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error: %s", e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsNotFound reports whether err means the entity does not exist
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ServerMessage returns the message the server attached to err, or ""
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
