package resolver

import "errors"

var (
	ErrValidation         = errors.New("invalid card query")
	ErrServiceUnavailable = errors.New("card catalog unavailable")
	ErrNotFound           = errors.New("no card matched the query")
	// ErrWorkspace is fatal: images cannot be stored, so nothing is retried.
	ErrWorkspace = errors.New("temp workspace unavailable")
)
