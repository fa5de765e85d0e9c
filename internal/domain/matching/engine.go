// Package matching scores caregivers against a family's care profile.
//
// The engine is a deterministic weighted rule set. It performs no I/O and
// holds no mutable state, so one Engine may be shared by any number of
// goroutines.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
)

// Default engine parameters.
const (
	defaultReferenceYears  = 10
	defaultMinReviews      = 5
	defaultNeutralTrust    = 70
	defaultBudgetTolerance = 0.5
	defaultLanguagePartial = 50
)

// Engine computes match results.
type Engine struct {
	vocab           *vocabulary.Table
	weights         Weights
	referenceYears  float64
	minReviews      int
	neutralTrust    float64
	budgetTolerance float64
	languagePartial float64
}

// Indexed is a caregiver tagged with its position in the caller's input.
type Indexed struct {
	Index     int
	Caregiver model.CaregiverProfile
}

// Scored is an unranked result that keeps what ranking needs.
type Scored struct {
	Index   int
	Rating  float64
	Reviews int
	Result  model.MatchResult
}

var defaultEngine = func() *Engine {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}()

// New creates an Engine with the default parameters and the embedded alias
// table, then applies opts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		vocab:           vocabulary.MustDefault(),
		weights:         DefaultWeights(),
		referenceYears:  defaultReferenceYears,
		minReviews:      defaultMinReviews,
		neutralTrust:    defaultNeutralTrust,
		budgetTolerance: defaultBudgetTolerance,
		languagePartial: defaultLanguagePartial,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	switch {
	case !(e.referenceYears > 0):
		return nil, fmt.Errorf("%w: reference years must be positive", ErrInvalidOption)
	case e.minReviews < 0:
		return nil, fmt.Errorf("%w: min reviews must not be negative", ErrInvalidOption)
	case !inRange(e.neutralTrust, 0, maxScore):
		return nil, fmt.Errorf("%w: neutral trust must be within [0,100]", ErrInvalidOption)
	case !(e.budgetTolerance > 0):
		return nil, fmt.Errorf("%w: budget tolerance must be positive", ErrInvalidOption)
	case !inRange(e.languagePartial, 0, maxScore):
		return nil, fmt.Errorf("%w: language partial credit must be within [0,100]", ErrInvalidOption)
	}
	return e, nil
}

// Default returns the shared engine built with default parameters.
func Default() *Engine { return defaultEngine }

// ComputeMatches scores caregivers with the default engine.
func ComputeMatches(family *model.FamilyProfile, caregivers []model.CaregiverProfile) ([]model.MatchResult, error) {
	return defaultEngine.ComputeMatches(family, caregivers)
}

// Weights returns a copy of the engine's factor weights.
func (e *Engine) Weights() Weights { return e.weights.clone() }

// Vocabulary returns the alias table in use.
func (e *Engine) Vocabulary() *vocabulary.Table { return e.vocab }

// ComputeMatches scores every caregiver against family and returns the
// results ranked best first. No caregiver is dropped: hard constraint
// violations are flagged on the result.
func (e *Engine) ComputeMatches(family *model.FamilyProfile, caregivers []model.CaregiverProfile) ([]model.MatchResult, error) {
	if family == nil {
		return nil, ErrNilFamily
	}
	if err := checkIDs(caregivers); err != nil {
		return nil, err
	}

	view := e.prepare(family)
	scored := make([]Scored, len(caregivers))
	for i := range caregivers {
		scored[i] = e.score(view, i, &caregivers[i])
	}
	return Rank(scored), nil
}

// Score scores a single caregiver.
func (e *Engine) Score(family *model.FamilyProfile, caregiver model.CaregiverProfile) (model.MatchResult, error) {
	if family == nil {
		return model.MatchResult{}, ErrNilFamily
	}
	if strings.TrimSpace(caregiver.ID) == "" {
		return model.MatchResult{}, fmt.Errorf("%w: index 0", ErrMissingCaregiverID)
	}
	return e.score(e.prepare(family), 0, &caregiver).Result, nil
}

// ScoreShard scores one slice of a larger pool without ranking it. Results
// keep the caregiver's original index so shards can be merged with Rank.
func (e *Engine) ScoreShard(family *model.FamilyProfile, shard []Indexed) ([]Scored, error) {
	if family == nil {
		return nil, ErrNilFamily
	}
	for _, in := range shard {
		if strings.TrimSpace(in.Caregiver.ID) == "" {
			return nil, fmt.Errorf("%w: index %d", ErrMissingCaregiverID, in.Index)
		}
	}

	view := e.prepare(family)
	out := make([]Scored, len(shard))
	for i := range shard {
		out[i] = e.score(view, shard[i].Index, &shard[i].Caregiver)
	}
	return out, nil
}

// CheckCaregivers reports the first caregiver with a blank ID.
func CheckCaregivers(caregivers []model.CaregiverProfile) error {
	return checkIDs(caregivers)
}

func checkIDs(caregivers []model.CaregiverProfile) error {
	for i := range caregivers {
		if strings.TrimSpace(caregivers[i].ID) == "" {
			return fmt.Errorf("%w: index %d", ErrMissingCaregiverID, i)
		}
	}
	return nil
}

func (e *Engine) score(view familyView, index int, c *model.CaregiverProfile) Scored {
	breakdown := map[model.Factor]float64{
		model.FactorSpecialization: e.specialization(view, c),
		model.FactorLanguage:       e.language(view, c),
		model.FactorLocality:       locality(view, c),
		model.FactorExperience:     e.experience(c),
		model.FactorBudget:         e.budget(view, c),
		model.FactorHobbies:        hobbies(view, c),
		model.FactorTrust:          e.trust(c),
	}

	// The score is taken from the exact values; only the reported breakdown
	// is rounded.
	var total float64
	for _, f := range model.Factors() {
		total += breakdown[f] * e.weights[f]
		breakdown[f] = round2(breakdown[f])
	}

	return Scored{
		Index:   index,
		Rating:  finite(c.Rating),
		Reviews: c.TotalReviews,
		Result: model.MatchResult{
			CaregiverID:             c.ID,
			Score:                   int(clamp(math.Round(total), 0, maxScore)),
			FactorBreakdown:         breakdown,
			HardConstraintsViolated: constraints(view, c),
		},
	}
}

// constraints lists violated hard constraints in reporting order.
func constraints(view familyView, c *model.CaregiverProfile) []model.Constraint {
	out := []model.Constraint{}
	if view.needsDriver && !c.HasCar {
		out = append(out, model.ConstraintNeedsDriver)
	}
	if view.hasPets && !c.AcceptsPets {
		out = append(out, model.ConstraintPets)
	}
	if view.hasBudget && finite(c.PriceHour) > view.budget {
		out = append(out, model.ConstraintOverBudget)
	}
	return out
}
