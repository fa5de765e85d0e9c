package benchmark

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// checkRanking verifies the invariants every ranked response must hold:
// scores in [0,100], a full factor breakdown within [0,100], flags that
// agree with the profiles, and a total order matching the tie-break rules.
func checkRanking(f *model.FamilyProfile, byID map[string]model.CaregiverProfile, results []model.MatchResult) error {
	for i := range results {
		r := &results[i]
		c, ok := byID[r.CaregiverID]
		if !ok {
			return fmt.Errorf("result %d: unknown caregiver %q", i, r.CaregiverID)
		}
		if r.Score < 0 || r.Score > 100 {
			return fmt.Errorf("result %d: score %d out of range", i, r.Score)
		}
		for _, factor := range model.Factors() {
			v, ok := r.FactorBreakdown[factor]
			if !ok || v < 0 || v > 100 {
				return fmt.Errorf("result %d: factor %s = %v", i, factor, v)
			}
		}
		if want := expectedConstraints(f, &c); !slices.Equal(want, r.HardConstraintsViolated) {
			return fmt.Errorf("result %d: constraints %v, want %v", i, r.HardConstraintsViolated, want)
		}
		if i == 0 {
			continue
		}
		prev := &results[i-1]
		if order := compareRanked(prev, r, byID); order > 0 {
			return fmt.Errorf("results %d and %d are out of order", i-1, i)
		}
	}
	return nil
}

func expectedConstraints(f *model.FamilyProfile, c *model.CaregiverProfile) []model.Constraint {
	out := []model.Constraint{}
	if f.NeedsDriver && !c.HasCar {
		out = append(out, model.ConstraintNeedsDriver)
	}
	if f.HasPets && !c.AcceptsPets {
		out = append(out, model.ConstraintPets)
	}
	if f.HasBudget() && c.PriceHour > *f.BudgetPerHour {
		out = append(out, model.ConstraintOverBudget)
	}
	return out
}

// compareRanked applies every tie-break except input position, which the
// client cannot observe.
func compareRanked(a, b *model.MatchResult, byID map[string]model.CaregiverProfile) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.HardConstraintsViolated), len(b.HardConstraintsViolated)); c != 0 {
		return c
	}
	ca, cb := byID[a.CaregiverID], byID[b.CaregiverID]
	if c := cmp.Compare(cb.Rating, ca.Rating); c != 0 {
		return c
	}
	return cmp.Compare(cb.TotalReviews, ca.TotalReviews)
}

// localRanking ranks the available caregivers in-process, presenting them in
// the order the store lists them: best rated first, then by ID.
func localRanking(f *model.FamilyProfile, caregivers []model.CaregiverProfile, limit int) ([]model.MatchResult, error) {
	pool := make([]model.CaregiverProfile, 0, len(caregivers))
	for i := range caregivers {
		if caregivers[i].Available {
			pool = append(pool, caregivers[i])
		}
	}
	slices.SortFunc(pool, func(a, b model.CaregiverProfile) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ranked, err := matching.ComputeMatches(f, pool)
	if err != nil {
		return nil, err
	}
	return matching.Selection{Limit: limit}.Apply(ranked), nil
}

func sameRanking(a, b []model.MatchResult) bool {
	return reflect.DeepEqual(a, b)
}
