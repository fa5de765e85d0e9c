package matching

import (
	"fmt"
	"math"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

const weightSumTolerance = 1e-6

// Weights assigns each factor its share of the final score.
type Weights map[model.Factor]float64

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		model.FactorSpecialization: 0.35,
		model.FactorLanguage:       0.15,
		model.FactorLocality:       0.15,
		model.FactorExperience:     0.10,
		model.FactorBudget:         0.10,
		model.FactorHobbies:        0.05,
		model.FactorTrust:          0.10,
	}
}

// WeightsFromMap converts factor-name keyed weights, as found in config.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	w := make(Weights, len(m))
	known := make(map[model.Factor]struct{}, len(model.Factors()))
	for _, f := range model.Factors() {
		known[f] = struct{}{}
	}
	for k, v := range m {
		f := model.Factor(k)
		if _, ok := known[f]; !ok {
			return nil, fmt.Errorf("%w: unknown factor %q", ErrInvalidWeights, k)
		}
		w[f] = v
	}
	return w, w.Validate()
}

// Validate checks that every factor has a finite non-negative weight and that
// the weights sum to one.
func (w Weights) Validate() error {
	var sum float64
	for _, f := range model.Factors() {
		v, ok := w[f]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidWeights, f)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidWeights, f)
		}
		sum += v
	}
	if len(w) != len(model.Factors()) {
		return fmt.Errorf("%w: unexpected factors", ErrInvalidWeights)
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.6f", ErrInvalidWeights, sum)
	}
	return nil
}

func (w Weights) clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
