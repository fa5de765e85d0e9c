// Package repository stores family and caregiver profiles.
//
// Stores hold profiles only. Scoring happens elsewhere; the caregiver filter
// narrows the candidate pool before it is scored.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// Store provides read/write access to profiles.
type Store interface {
	// UpsertFamily creates or replaces a family profile by ID.
	UpsertFamily(ctx context.Context, f model.FamilyProfile) error
	// GetFamily returns ErrNotFound if the family is unknown.
	GetFamily(ctx context.Context, id string) (model.FamilyProfile, error)

	// UpsertCaregiver creates or replaces a caregiver profile by ID.
	UpsertCaregiver(ctx context.Context, c model.CaregiverProfile) error
	// GetCaregiver returns ErrNotFound if the caregiver is unknown.
	GetCaregiver(ctx context.Context, id string) (model.CaregiverProfile, error)
	// ListCaregivers returns caregivers passing filter, best rated first and
	// then by ID.
	ListCaregivers(ctx context.Context, filter Filter) ([]model.CaregiverProfile, error)

	// Counts returns the number of stored profiles.
	Counts(ctx context.Context) (Counts, error)
}

// Counts reports stored profile totals.
type Counts struct {
	Families   int `json:"families"`
	Caregivers int `json:"caregivers"`
}

// Filter narrows the caregiver pool. Zero values do not filter, except
// Limit where zero means no limit.
type Filter struct {
	City           string
	Neighborhood   string
	MinPrice       *float64
	MaxPrice       *float64
	MinRating      *float64
	Specialization string
	VerifiedOnly   bool
	AvailableOnly  bool
	Offset         int
	Limit          int
}

// Validate rejects negative paging and inverted price ranges.
func (f Filter) Validate() error {
	switch {
	case f.Offset < 0:
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidFilter)
	case f.Limit < 0:
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidFilter)
	case f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice:
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidFilter)
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	return nil
}
