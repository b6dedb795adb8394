package workspace

import "errors"

var (
	// ErrUnavailable is returned when the workspace directory or a file in it
	// cannot be created.
	ErrUnavailable = errors.New("temp workspace unavailable")
)
