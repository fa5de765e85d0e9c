package matching

import (
	"math"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
)

const (
	maxScore = 100

	localityExact    = 100
	localitySameCity = 60
	localityElse     = 20

	// neutralValue is used when one side gives no signal.
	neutralValue = 50
)

// familyView is a family profile normalized once per request.
type familyView struct {
	required     map[string]struct{}
	languages    []string
	city         string
	neighborhood string
	hobbies      map[string]struct{}
	needsDriver  bool
	hasPets      bool
	hasBudget    bool
	budget       float64
}

func (e *Engine) prepare(f *model.FamilyProfile) familyView {
	required := e.vocab.ResolveAll(f.ElderNeeds)
	for _, c := range e.vocab.CareLevel(f.CareLevel) {
		required[c] = struct{}{}
	}

	var languages []string
	for _, l := range f.PreferredLanguages {
		if n := vocabulary.Normalize(l); n != "" {
			languages = append(languages, n)
		}
	}

	v := familyView{
		required:     required,
		languages:    languages,
		city:         vocabulary.Normalize(f.City),
		neighborhood: vocabulary.Normalize(f.Neighborhood),
		hobbies:      normalizedSet(f.ElderHobbies),
		needsDriver:  f.NeedsDriver,
		hasPets:      f.HasPets,
	}
	if f.HasBudget() && !math.IsInf(*f.BudgetPerHour, 0) {
		v.hasBudget = true
		v.budget = *f.BudgetPerHour
	}
	return v
}

// specialization is the share of required concepts the caregiver offers.
func (e *Engine) specialization(v familyView, c *model.CaregiverProfile) float64 {
	if len(v.required) == 0 {
		return neutralValue
	}
	offered := e.vocab.ResolveAll(c.Specializations)
	hit := 0
	for concept := range v.required {
		if _, ok := offered[concept]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(v.required)) * maxScore
}

func (e *Engine) language(v familyView, c *model.CaregiverProfile) float64 {
	if len(v.languages) == 0 {
		return maxScore
	}
	spoken := normalizedSet(c.Languages)
	if _, ok := spoken[v.languages[0]]; ok {
		return maxScore
	}
	for _, l := range v.languages[1:] {
		if _, ok := spoken[l]; ok {
			return e.languagePartial
		}
	}
	return 0
}

// locality compares city and neighborhood. A blank city never matches.
func locality(v familyView, c *model.CaregiverProfile) float64 {
	city := vocabulary.Normalize(c.City)
	if v.city == "" || city != v.city {
		return localityElse
	}
	if n := vocabulary.Normalize(c.Neighborhood); v.neighborhood != "" && n == v.neighborhood {
		return localityExact
	}
	return localitySameCity
}

func (e *Engine) experience(c *model.CaregiverProfile) float64 {
	if c.ExperienceYears <= 0 {
		return 0
	}
	return math.Min(maxScore, float64(c.ExperienceYears)/e.referenceYears*maxScore)
}

// budget decays linearly from 100 at the budget to 0 at budgetTolerance
// overshoot.
func (e *Engine) budget(v familyView, c *model.CaregiverProfile) float64 {
	price := finite(c.PriceHour)
	if !v.hasBudget || price <= v.budget {
		return maxScore
	}
	overshoot := (price - v.budget) / v.budget
	return math.Max(0, maxScore*(1-overshoot/e.budgetTolerance))
}

// hobbies is the Jaccard similarity of both hobby sets.
func hobbies(v familyView, c *model.CaregiverProfile) float64 {
	theirs := normalizedSet(c.Hobbies)
	if len(v.hobbies) == 0 || len(theirs) == 0 {
		return neutralValue
	}
	inter := 0
	for h := range v.hobbies {
		if _, ok := theirs[h]; ok {
			inter++
		}
	}
	union := len(v.hobbies) + len(theirs) - inter
	return float64(inter) / float64(union) * maxScore
}

// trust scales the rating and blends it toward a neutral value while the
// caregiver has fewer than minReviews reviews.
func (e *Engine) trust(c *model.CaregiverProfile) float64 {
	full := clamp(finite(c.Rating), 0, 5) / 5 * maxScore
	if e.minReviews == 0 || c.TotalReviews >= e.minReviews {
		return full
	}
	share := math.Max(0, float64(c.TotalReviews)) / float64(e.minReviews)
	return share*full + (1-share)*e.neutralTrust
}

func normalizedSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if n := vocabulary.Normalize(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// finite maps NaN to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
