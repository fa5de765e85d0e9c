// Package model contains the core domain types shared across the service.
package model

// CareLevel is the family's declared level of care.
type CareLevel string

// Known care levels.
const (
	CareCompanionship CareLevel = "companionship"
	CareMobility      CareLevel = "mobility"
	CareMedical       CareLevel = "medical"
	CareAlzheimer     CareLevel = "alzheimer"
	CarePostSurgery   CareLevel = "post_surgery"
)

// CareLevels lists every known care level in declaration order.
func CareLevels() []CareLevel {
	return []CareLevel{CareCompanionship, CareMobility, CareMedical, CareAlzheimer, CarePostSurgery}
}

// Valid reports whether l is one of the known care levels.
func (l CareLevel) Valid() bool {
	switch l {
	case CareCompanionship, CareMobility, CareMedical, CareAlzheimer, CarePostSurgery:
		return true
	}
	return false
}

// FamilyProfile describes the elder's needs and the family's preferences.
type FamilyProfile struct {
	ID           string    `json:"id"`
	ElderNeeds   []string  `json:"elder_needs"`
	CareLevel    CareLevel `json:"care_level"`
	City         string    `json:"city"`
	Neighborhood string    `json:"neighborhood"`
	// PreferredLanguages is ordered; the first entry matters most.
	PreferredLanguages []string `json:"preferred_languages"`
	HasPets            bool     `json:"has_pets"`
	NeedsDriver        bool     `json:"needs_driver"`
	// BudgetPerHour is nil when the family set no budget.
	BudgetPerHour *float64 `json:"budget_per_hour,omitempty"`
	ElderHobbies  []string `json:"elder_hobbies"`
}

// HasBudget reports whether the family set a usable hourly budget.
func (f *FamilyProfile) HasBudget() bool {
	return f.BudgetPerHour != nil && *f.BudgetPerHour > 0
}

// CaregiverProfile is a caregiver candidate.
type CaregiverProfile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
	City            string   `json:"city"`
	Neighborhood    string   `json:"neighborhood"`
	Languages       []string `json:"languages"`
	ExperienceYears int      `json:"experience_years"`
	PriceHour       float64  `json:"price_hour"`
	HasCar          bool     `json:"has_car"`
	AcceptsPets     bool     `json:"accepts_pets"`
	Hobbies         []string `json:"hobbies"`
	Rating          float64  `json:"rating"`
	TotalReviews    int      `json:"total_reviews"`
	Available       bool     `json:"available"`
	// Verified is only consulted by store-side filtering.
	Verified bool `json:"verified"`
}

// Budget returns a pointer suitable for FamilyProfile.BudgetPerHour.
func Budget(v float64) *float64 { return &v }
