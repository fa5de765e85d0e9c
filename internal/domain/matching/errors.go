package matching

import "errors"

var (
	// ErrNilFamily is returned when no family profile is given.
	ErrNilFamily = errors.New("family profile is required")
	// ErrMissingCaregiverID is returned for a caregiver with a blank ID.
	ErrMissingCaregiverID = errors.New("caregiver id is required")
	// ErrInvalidWeights is returned for a weight set that is incomplete,
	// negative or does not sum to one.
	ErrInvalidWeights = errors.New("invalid factor weights")
	// ErrInvalidOption is returned for an out-of-range engine option.
	ErrInvalidOption = errors.New("invalid engine option")
)
