package matching

import (
	"cmp"
	"slices"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// Contribution is one factor's share of a score.
type Contribution struct {
	Factor   model.Factor `json:"factor"`
	Value    float64      `json:"value"`
	Weighted float64      `json:"weighted"`
}

// Highlights returns the n factors that contributed most to result under
// weights, largest first. Equal contributions keep canonical factor order.
func Highlights(result model.MatchResult, weights Weights, n int) []Contribution {
	if n <= 0 {
		return nil
	}
	all := make([]Contribution, 0, len(model.Factors()))
	for _, f := range model.Factors() {
		v := result.FactorBreakdown[f]
		all = append(all, Contribution{Factor: f, Value: v, Weighted: round2(v * weights[f])})
	}
	slices.SortStableFunc(all, func(a, b Contribution) int {
		return cmp.Compare(b.Weighted, a.Weighted)
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}
