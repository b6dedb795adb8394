package compose

import "errors"

var (
	// ErrNoImages is returned when Composite is called without any URL.
	ErrNoImages = errors.New("no images to composite")
	// ErrDownload wraps any failure to fetch one image.
	ErrDownload = errors.New("image download failed")
)
