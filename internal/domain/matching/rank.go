package matching

import (
	"cmp"
	"slices"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// Rank orders scored caregivers best first and returns their results. The
// order is total: score descending, then fewer hard constraint violations,
// then rating, then review count, then original input index. Rank sorts
// scored in place.
func Rank(scored []Scored) []model.MatchResult {
	slices.SortFunc(scored, compareScored)
	out := make([]model.MatchResult, len(scored))
	for i := range scored {
		out[i] = scored[i].Result
	}
	return out
}

func compareScored(a, b Scored) int {
	if c := cmp.Compare(b.Result.Score, a.Result.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.Result.HardConstraintsViolated), len(b.Result.HardConstraintsViolated)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Reviews, a.Reviews); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
