package matching

import "github.com/seniorcare/smartmatch/internal/domain/model"

// Selection trims a ranked result list for presentation.
type Selection struct {
	// Limit keeps at most this many results. Zero keeps all.
	Limit int
	// ExcludeViolations drops results that broke any hard constraint.
	ExcludeViolations bool
}

// Apply returns the selected prefix of ranked results, preserving order.
func (s Selection) Apply(ranked []model.MatchResult) []model.MatchResult {
	out := ranked
	if s.ExcludeViolations {
		out = make([]model.MatchResult, 0, len(ranked))
		for _, r := range ranked {
			if len(r.HardConstraintsViolated) == 0 {
				out = append(out, r)
			}
		}
	}
	if s.Limit > 0 && s.Limit < len(out) {
		out = out[:s.Limit]
	}
	return out
}
