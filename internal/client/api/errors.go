package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound maps a 404 response.
	ErrNotFound = errors.New("api: not found")
	// ErrUnauthorized maps 401 and 403 responses, including expired credentials.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrConflict maps a 409 response, e.g. losing a location create race.
	ErrConflict = errors.New("api: conflict")
	// ErrBadResponse indicates a 2xx response whose body did not carry the
	// expected record. Malformed payloads are an explicit error kind rather
	// than zero-valued fields leaking into the view.
	ErrBadResponse = errors.New("api: malformed response")
)

// StatusError reports a non-2xx status outside the mapped sentinel kinds,
// carrying the server's message when one was provided.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}
