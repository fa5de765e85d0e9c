package model

// Factor names one weighted dimension of a match.
type Factor string

// Scoring factors.
const (
	FactorSpecialization Factor = "specialization"
	FactorLanguage       Factor = "language"
	FactorLocality       Factor = "locality"
	FactorExperience     Factor = "experience"
	FactorBudget         Factor = "budget"
	FactorHobbies        Factor = "hobbies"
	FactorTrust          Factor = "trust"
)

// Factors returns every factor in canonical order.
func Factors() []Factor {
	return []Factor{
		FactorSpecialization,
		FactorLanguage,
		FactorLocality,
		FactorExperience,
		FactorBudget,
		FactorHobbies,
		FactorTrust,
	}
}

// Constraint names a hard eligibility rule that is flagged, never subtracted.
type Constraint string

// Hard constraints, in reporting order.
const (
	ConstraintNeedsDriver Constraint = "needs_driver_not_met"
	ConstraintPets        Constraint = "pets_not_accepted"
	ConstraintOverBudget  Constraint = "over_budget"
)

// Quality buckets a score for display copy.
type Quality string

// Score quality buckets.
const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
	QualityNone      Quality = "none"
)

// MatchResult is the scored compatibility of one caregiver with one family.
type MatchResult struct {
	CaregiverID string `json:"caregiver_id"`
	// Score is an integer in [0,100].
	Score int `json:"score"`
	// FactorBreakdown holds the pre-weight value (0..100) of every factor.
	FactorBreakdown map[Factor]float64 `json:"factor_breakdown"`
	// HardConstraintsViolated is never nil so it encodes as [].
	HardConstraintsViolated []Constraint `json:"hard_constraints_violated"`
}

// Violates reports whether c is among the result's flagged constraints.
func (r MatchResult) Violates(c Constraint) bool {
	for _, v := range r.HardConstraintsViolated {
		if v == c {
			return true
		}
	}
	return false
}

// Quality buckets the score.
func (r MatchResult) Quality() Quality {
	switch {
	case r.Score >= 80:
		return QualityExcellent
	case r.Score >= 60:
		return QualityGood
	case r.Score >= 40:
		return QualityFair
	case r.Score >= 20:
		return QualityPoor
	default:
		return QualityNone
	}
}
