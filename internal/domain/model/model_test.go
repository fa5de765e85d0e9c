package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/seniorcare/smartmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCareLevel(t *testing.T) {
	Convey("Given care levels", t, func() {
		Convey("Then every declared level is valid", func() {
			for _, l := range model.CareLevels() {
				So(l.Valid(), ShouldBeTrue)
			}
		})

		Convey("Then unknown or empty levels are not", func() {
			So(model.CareLevel("").Valid(), ShouldBeFalse)
			So(model.CareLevel("Alzheimer").Valid(), ShouldBeFalse)
			So(model.CareLevel("hospice").Valid(), ShouldBeFalse)
		})
	})
}

func TestFamilyBudget(t *testing.T) {
	Convey("Given a family profile", t, func() {
		f := model.FamilyProfile{ID: "f-1"}

		Convey("When no budget is set", func() {
			Convey("Then HasBudget is false", func() {
				So(f.HasBudget(), ShouldBeFalse)
			})
		})

		Convey("When the budget is zero or negative", func() {
			f.BudgetPerHour = model.Budget(0)
			So(f.HasBudget(), ShouldBeFalse)
			f.BudgetPerHour = model.Budget(-5)
			So(f.HasBudget(), ShouldBeFalse)
		})

		Convey("When the budget is positive", func() {
			f.BudgetPerHour = model.Budget(40)
			So(f.HasBudget(), ShouldBeTrue)
		})
	})
}

func TestMatchResult(t *testing.T) {
	Convey("Given match results", t, func() {
		Convey("When bucketing scores", func() {
			cases := []struct {
				score int
				want  model.Quality
			}{
				{100, model.QualityExcellent},
				{80, model.QualityExcellent},
				{79, model.QualityGood},
				{60, model.QualityGood},
				{40, model.QualityFair},
				{20, model.QualityPoor},
				{19, model.QualityNone},
				{0, model.QualityNone},
			}

			Convey("Then each lands in its bucket", func() {
				for _, tc := range cases {
					So(model.MatchResult{Score: tc.score}.Quality(), ShouldEqual, tc.want)
				}
			})
		})

		Convey("When checking flagged constraints", func() {
			r := model.MatchResult{HardConstraintsViolated: []model.Constraint{model.ConstraintOverBudget}}

			Convey("Then only the flagged one is reported", func() {
				So(r.Violates(model.ConstraintOverBudget), ShouldBeTrue)
				So(r.Violates(model.ConstraintNeedsDriver), ShouldBeFalse)
			})
		})

		Convey("When encoding to JSON", func() {
			r := model.MatchResult{
				CaregiverID:             "c-1",
				Score:                   92,
				FactorBreakdown:         map[model.Factor]float64{model.FactorTrust: 96},
				HardConstraintsViolated: []model.Constraint{},
			}
			raw, err := json.Marshal(r)
			So(err, ShouldBeNil)

			Convey("Then the wire names are snake_case", func() {
				So(string(raw), ShouldEqual,
					`{"caregiver_id":"c-1","score":92,"factor_breakdown":{"trust":96},"hard_constraints_violated":[]}`)
			})
		})
	})

	Convey("Given the factor list", t, func() {
		Convey("Then it holds the seven factors in canonical order", func() {
			So(model.Factors(), ShouldResemble, []model.Factor{
				"specialization", "language", "locality", "experience", "budget", "hobbies", "trust",
			})
		})
	})
}
