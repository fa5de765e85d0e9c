package matching

import "github.com/seniorcare/smartmatch/internal/domain/vocabulary"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithVocabulary sets the alias table used to resolve care tags.
func WithVocabulary(t *vocabulary.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.vocab = t
		}
	}
}

// WithWeights replaces the factor weights. New rejects an invalid set.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w.clone()
	}
}

// WithReferenceYears sets the experience at which the experience factor
// reaches 100.
func WithReferenceYears(years float64) Option {
	return func(e *Engine) {
		e.referenceYears = years
	}
}

// WithTrustPolicy sets the review count at which the rating is trusted in
// full, and the neutral trust value a caregiver with no reviews starts from.
func WithTrustPolicy(minReviews int, neutral float64) Option {
	return func(e *Engine) {
		e.minReviews = minReviews
		e.neutralTrust = neutral
	}
}

// WithBudgetTolerance sets the overshoot fraction at which the budget factor
// reaches zero.
func WithBudgetTolerance(fraction float64) Option {
	return func(e *Engine) {
		e.budgetTolerance = fraction
	}
}

// WithLanguagePartialCredit sets the language value awarded when only a
// lower-priority preference is spoken.
func WithLanguagePartialCredit(v float64) Option {
	return func(e *Engine) {
		e.languagePartial = v
	}
}
