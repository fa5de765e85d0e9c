package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrIDMismatch   = errors.New("body id does not match path id")
	ErrMissingParam = errors.New("missing query parameter")
)
