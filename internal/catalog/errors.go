package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an exact-name lookup matches nothing.
	ErrNotFound = errors.New("card not found")
	// ErrUnavailable marks hard failures: 5xx responses, network errors and timeouts.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall %d %s: %s", e.Status, e.Code, e.Details)
	}
	return fmt.Sprintf("scryfall %d %s", e.Status, e.Code)
}
