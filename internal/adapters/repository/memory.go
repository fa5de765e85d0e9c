package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
	"github.com/seniorcare/smartmatch/pkg/metrics"
)

// MemoryStore keeps profiles in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	families   map[string]model.FamilyProfile
	caregivers map[string]model.CaregiverProfile
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		families:   make(map[string]model.FamilyProfile),
		caregivers: make(map[string]model.CaregiverProfile),
	}
}

// UpsertFamily stores a copy of f.
func (s *MemoryStore) UpsertFamily(_ context.Context, f model.FamilyProfile) error { //nolint:gocritic // profiles are values
	if err := requireID(f.ID); err != nil {
		return err
	}
	s.mu.Lock()
	s.families[f.ID] = cloneFamily(f)
	n := len(s.families)
	s.mu.Unlock()

	metrics.UpdateProfilesTotal("family", n)
	return nil
}

// GetFamily returns a copy of the stored family.
func (s *MemoryStore) GetFamily(_ context.Context, id string) (model.FamilyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.families[id]
	if !ok {
		return model.FamilyProfile{}, ErrNotFound
	}
	return cloneFamily(f), nil
}

// UpsertCaregiver stores a copy of c.
func (s *MemoryStore) UpsertCaregiver(_ context.Context, c model.CaregiverProfile) error { //nolint:gocritic // profiles are values
	if err := requireID(c.ID); err != nil {
		return err
	}
	s.mu.Lock()
	s.caregivers[c.ID] = cloneCaregiver(c)
	n := len(s.caregivers)
	s.mu.Unlock()

	metrics.UpdateProfilesTotal("caregiver", n)
	return nil
}

// GetCaregiver returns a copy of the stored caregiver.
func (s *MemoryStore) GetCaregiver(_ context.Context, id string) (model.CaregiverProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.caregivers[id]
	if !ok {
		return model.CaregiverProfile{}, ErrNotFound
	}
	return cloneCaregiver(c), nil
}

// ListCaregivers scans every caregiver. City, neighborhood and
// specialization compare case and accent insensitively.
func (s *MemoryStore) ListCaregivers(_ context.Context, filter Filter) ([]model.CaregiverProfile, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency("list_caregivers", float64(time.Since(start).Microseconds())/1000)
	}()

	m := newMatcher(filter)
	s.mu.RLock()
	out := make([]model.CaregiverProfile, 0, len(s.caregivers))
	for _, c := range s.caregivers {
		if m.match(&c) {
			out = append(out, cloneCaregiver(c))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.CaregiverProfile) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return page(out, filter.Offset, filter.Limit), nil
}

// Counts returns the number of stored profiles.
func (s *MemoryStore) Counts(context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{Families: len(s.families), Caregivers: len(s.caregivers)}, nil
}

type matcher struct {
	f              Filter
	city           string
	neighborhood   string
	specialization string
}

func newMatcher(f Filter) matcher {
	return matcher{
		f:              f,
		city:           vocabulary.Normalize(f.City),
		neighborhood:   vocabulary.Normalize(f.Neighborhood),
		specialization: vocabulary.Normalize(f.Specialization),
	}
}

func (m matcher) match(c *model.CaregiverProfile) bool {
	switch {
	case m.f.AvailableOnly && !c.Available:
		return false
	case m.f.VerifiedOnly && !c.Verified:
		return false
	case m.city != "" && vocabulary.Normalize(c.City) != m.city:
		return false
	case m.neighborhood != "" && vocabulary.Normalize(c.Neighborhood) != m.neighborhood:
		return false
	case m.f.MinPrice != nil && c.PriceHour < *m.f.MinPrice:
		return false
	case m.f.MaxPrice != nil && c.PriceHour > *m.f.MaxPrice:
		return false
	case m.f.MinRating != nil && c.Rating < *m.f.MinRating:
		return false
	}
	if m.specialization == "" {
		return true
	}
	return slices.ContainsFunc(c.Specializations, func(s string) bool {
		return vocabulary.Normalize(s) == m.specialization
	})
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneFamily(f model.FamilyProfile) model.FamilyProfile { //nolint:gocritic // profiles are values
	f.ElderNeeds = slices.Clone(f.ElderNeeds)
	f.PreferredLanguages = slices.Clone(f.PreferredLanguages)
	f.ElderHobbies = slices.Clone(f.ElderHobbies)
	if f.BudgetPerHour != nil {
		f.BudgetPerHour = model.Budget(*f.BudgetPerHour)
	}
	return f
}

func cloneCaregiver(c model.CaregiverProfile) model.CaregiverProfile { //nolint:gocritic // profiles are values
	c.Specializations = slices.Clone(c.Specializations)
	c.Languages = slices.Clone(c.Languages)
	c.Hobbies = slices.Clone(c.Hobbies)
	return c
}
