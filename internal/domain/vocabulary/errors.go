package vocabulary

import "errors"

var (
	// ErrLoadTable marks a table source that could not be read or decoded.
	ErrLoadTable = errors.New("load vocabulary failed")
	// ErrInvalidTable marks a decoded table that is not usable.
	ErrInvalidTable = errors.New("invalid vocabulary")
)
