package repository

import "errors"

// Sentinel kinds for profile store errors.
var (
	ErrNotFound      = errors.New("profile not found")
	ErrMissingID     = errors.New("profile id is required")
	ErrInvalidFilter = errors.New("invalid caregiver filter")
	ErrStoreFailure  = errors.New("profile store failure")
)
