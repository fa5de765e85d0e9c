package matching_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/model"
)

func scenarioFamily() *model.FamilyProfile {
	return &model.FamilyProfile{
		ID:                 "family-1",
		ElderNeeds:         []string{"alzheimer"},
		CareLevel:          model.CareAlzheimer,
		City:               "Campo Grande",
		Neighborhood:       "Centro",
		PreferredLanguages: []string{"Português"},
		BudgetPerHour:      model.Budget(40),
	}
}

func scenarioCaregiver() model.CaregiverProfile {
	return model.CaregiverProfile{
		ID:              "caregiver-1",
		Name:            "Maria",
		Specializations: []string{"Alzheimer/Demência"},
		City:            "Campo Grande",
		Neighborhood:    "Centro",
		Languages:       []string{"Português"},
		ExperienceYears: 5,
		PriceHour:       35,
		Rating:          4.8,
		TotalReviews:    20,
		Available:       true,
	}
}

func pool(n int) []model.CaregiverProfile {
	cities := []string{"Campo Grande", "São Paulo", "Curitiba"}
	specs := [][]string{{"Alzheimer/Demência"}, {"Enfermagem"}, {"Companhia", "Fisioterapia"}, nil}
	out := make([]model.CaregiverProfile, n)
	for i := range out {
		out[i] = model.CaregiverProfile{
			ID:              fmt.Sprintf("c-%03d", i),
			Specializations: specs[i%len(specs)],
			City:            cities[i%len(cities)],
			Neighborhood:    "Centro",
			Languages:       []string{"Português"},
			ExperienceYears: i % 12,
			PriceHour:       float64(25 + i%40),
			HasCar:          i%2 == 0,
			AcceptsPets:     i%3 == 0,
			Rating:          float64(i%6) * 0.9,
			TotalReviews:    i % 9,
		}
	}
	return out
}

func TestComputeMatchesScenarios(t *testing.T) {
	Convey("Given the reference family", t, func() {
		family := scenarioFamily()

		Convey("When scoring an in-budget Alzheimer specialist", func() {
			results, err := matching.ComputeMatches(family, []model.CaregiverProfile{scenarioCaregiver()})
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)
			r := results[0]

			Convey("Then it is a low-90s match with no violations", func() {
				So(r.CaregiverID, ShouldEqual, "caregiver-1")
				So(r.Score, ShouldEqual, 92)
				So(r.HardConstraintsViolated, ShouldBeEmpty)
				So(r.HardConstraintsViolated, ShouldNotBeNil)
			})

			Convey("Then every factor is explained", func() {
				b := r.FactorBreakdown
				So(b, ShouldHaveLength, 7)
				So(b[model.FactorSpecialization], ShouldEqual, 100.0)
				So(b[model.FactorLanguage], ShouldEqual, 100.0)
				So(b[model.FactorLocality], ShouldEqual, 100.0)
				So(b[model.FactorExperience], ShouldEqual, 50.0)
				So(b[model.FactorBudget], ShouldEqual, 100.0)
				So(b[model.FactorHobbies], ShouldEqual, 50.0)
				So(b[model.FactorTrust], ShouldAlmostEqual, 96.0, 0.001)
			})
		})

		Convey("When the caregiver charges double the budget", func() {
			c := scenarioCaregiver()
			c.PriceHour = 80
			results, err := matching.ComputeMatches(family, []model.CaregiverProfile{c})
			So(err, ShouldBeNil)

			Convey("Then the result is kept, flagged and scored lower", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].Score, ShouldEqual, 82)
				So(results[0].FactorBreakdown[model.FactorBudget], ShouldEqual, 0.0)
				So(results[0].HardConstraintsViolated, ShouldResemble, []model.Constraint{model.ConstraintOverBudget})
			})
		})
	})
}

func TestComputeMatchesProperties(t *testing.T) {
	Convey("Given a mixed caregiver pool", t, func() {
		family := scenarioFamily()
		family.NeedsDriver = true
		family.HasPets = true
		caregivers := pool(60)

		Convey("When scoring twice", func() {
			first, err := matching.ComputeMatches(family, caregivers)
			So(err, ShouldBeNil)
			second, err := matching.ComputeMatches(family, caregivers)
			So(err, ShouldBeNil)

			Convey("Then the output is identical", func() {
				So(second, ShouldResemble, first)
			})

			Convey("Then every score is within bounds and sorted", func() {
				So(first, ShouldHaveLength, len(caregivers))
				for i, r := range first {
					So(r.Score, ShouldBeBetweenOrEqual, 0, 100)
					if i > 0 {
						So(first[i-1].Score, ShouldBeGreaterThanOrEqualTo, r.Score)
					}
				}
			})

			Convey("Then drivers and pets are flagged but never dropped", func() {
				byID := make(map[string]model.MatchResult, len(first))
				for _, r := range first {
					byID[r.CaregiverID] = r
				}
				for _, c := range caregivers {
					r, ok := byID[c.ID]
					So(ok, ShouldBeTrue)
					So(r.Violates(model.ConstraintNeedsDriver), ShouldEqual, !c.HasCar)
					So(r.Violates(model.ConstraintPets), ShouldEqual, !c.AcceptsPets)
				}
			})
		})

		Convey("When the caller's slice is scored", func() {
			snapshot := append([]model.CaregiverProfile(nil), caregivers...)
			_, err := matching.ComputeMatches(family, caregivers)

			Convey("Then the input is not reordered", func() {
				So(err, ShouldBeNil)
				So(caregivers, ShouldResemble, snapshot)
			})
		})
	})

	Convey("Given a trusted caregiver", t, func() {
		family := scenarioFamily()
		c := scenarioCaregiver()
		c.TotalReviews = 5

		Convey("When the rating increases step by step", func() {
			Convey("Then the score never decreases", func() {
				prev := -1
				for rating := 0.0; rating <= 5.0; rating += 0.1 {
					c.Rating = rating
					r, err := matching.Default().Score(family, c)
					So(err, ShouldBeNil)
					So(r.Score, ShouldBeGreaterThanOrEqualTo, prev)
					prev = r.Score
				}
			})
		})
	})
}

func TestComputeMatchesEdgeCases(t *testing.T) {
	Convey("Given edge-case inputs", t, func() {
		Convey("When the pool is empty", func() {
			results, err := matching.ComputeMatches(scenarioFamily(), nil)

			Convey("Then an empty list is returned", func() {
				So(err, ShouldBeNil)
				So(results, ShouldNotBeNil)
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When the family states no needs and no care level", func() {
			family := &model.FamilyProfile{ID: "f"}
			results, err := matching.ComputeMatches(family, pool(5))

			Convey("Then specialization defaults to neutral", func() {
				So(err, ShouldBeNil)
				for _, r := range results {
					So(r.FactorBreakdown[model.FactorSpecialization], ShouldEqual, 50.0)
					So(r.FactorBreakdown[model.FactorLanguage], ShouldEqual, 100.0)
					So(r.FactorBreakdown[model.FactorBudget], ShouldEqual, 100.0)
				}
			})
		})

		Convey("When a medical family names its need in the shared vocabulary", func() {
			family := &model.FamilyProfile{
				ID:         "f",
				ElderNeeds: []string{"medication-administration"},
				CareLevel:  model.CareMedical,
			}
			c := scenarioCaregiver()
			c.Specializations = []string{"Cuidados Médicos", "Enfermagem"}
			r, err := matching.Default().Score(family, c)

			Convey("Then a medical caregiver covers it in full", func() {
				So(err, ShouldBeNil)
				So(r.FactorBreakdown[model.FactorSpecialization], ShouldEqual, 100.0)
			})
		})

		Convey("When hygiene and meal needs are only half covered", func() {
			family := &model.FamilyProfile{
				ID:         "f",
				ElderNeeds: []string{"hygiene-assistance", "meal-preparation"},
			}
			c := scenarioCaregiver()
			c.Specializations = []string{"Higiene pessoal"}
			r, err := matching.Default().Score(family, c)

			Convey("Then specialization is proportional", func() {
				So(err, ShouldBeNil)
				So(r.FactorBreakdown[model.FactorSpecialization], ShouldEqual, 50.0)

				c.Specializations = append(c.Specializations, "Preparo de refeições")
				full, err := matching.Default().Score(family, c)
				So(err, ShouldBeNil)
				So(full.FactorBreakdown[model.FactorSpecialization], ShouldEqual, 100.0)
			})
		})

		Convey("When a factor value sits just below a half point", func() {
			weights := matching.DefaultWeights()
			for f := range weights {
				weights[f] = 0
			}
			weights[model.FactorExperience] = 1
			e, err := matching.New(matching.WithWeights(weights), matching.WithReferenceYears(2.4694))
			So(err, ShouldBeNil)
			c := scenarioCaregiver()
			c.ExperienceYears = 1
			r, err := e.Score(&model.FamilyProfile{ID: "f"}, c)

			Convey("Then the score rounds the exact sum, not the rounded breakdown", func() {
				So(err, ShouldBeNil)
				So(r.FactorBreakdown[model.FactorExperience], ShouldEqual, 40.5)
				So(r.Score, ShouldEqual, 40)
			})
		})

		Convey("When the care level is unknown", func() {
			family := &model.FamilyProfile{ID: "f", CareLevel: "hospice"}
			r, err := matching.Default().Score(family, scenarioCaregiver())

			Convey("Then it carries no specialization signal", func() {
				So(err, ShouldBeNil)
				So(r.FactorBreakdown[model.FactorSpecialization], ShouldEqual, 50.0)
			})
		})

		Convey("When the family is nil", func() {
			_, err := matching.ComputeMatches(nil, pool(2))

			Convey("Then ErrNilFamily is returned", func() {
				So(errors.Is(err, matching.ErrNilFamily), ShouldBeTrue)
			})
		})

		Convey("When a caregiver has no ID", func() {
			caregivers := pool(3)
			caregivers[2].ID = "  "
			_, err := matching.ComputeMatches(scenarioFamily(), caregivers)

			Convey("Then the offending index is reported", func() {
				So(errors.Is(err, matching.ErrMissingCaregiverID), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "index 2")
			})
		})

		Convey("When values are out of range", func() {
			c := scenarioCaregiver()
			c.Rating = 9
			c.ExperienceYears = -3
			c.TotalReviews = -1
			r, err := matching.Default().Score(scenarioFamily(), c)

			Convey("Then they are normalized", func() {
				So(err, ShouldBeNil)
				So(r.FactorBreakdown[model.FactorExperience], ShouldEqual, 0.0)
				So(r.FactorBreakdown[model.FactorTrust], ShouldEqual, 70.0)
				So(r.Score, ShouldBeBetweenOrEqual, 0, 100)
			})
		})
	})
}

func TestTieBreak(t *testing.T) {
	Convey("Given caregivers with equal scores", t, func() {
		family := &model.FamilyProfile{ID: "f", City: "Curitiba"}
		base := model.CaregiverProfile{City: "Curitiba", TotalReviews: 10, Rating: 4}
		var caregivers []model.CaregiverProfile
		for _, tc := range []struct {
			id      string
			rating  float64
			reviews int
		}{
			{"a", 4.0, 10},
			{"b", 4.0, 30},
			{"c", 4.0, 30},
			{"d", 4.04, 10},
		} {
			c := base
			c.ID, c.Rating, c.TotalReviews = tc.id, tc.rating, tc.reviews
			caregivers = append(caregivers, c)
		}

		Convey("When ranking", func() {
			results, err := matching.ComputeMatches(family, caregivers)
			So(err, ShouldBeNil)

			Convey("Then rating, reviews and input order break ties", func() {
				for _, r := range results {
					So(r.Score, ShouldEqual, results[0].Score)
				}
				ids := make([]string, len(results))
				for i, r := range results {
					ids[i] = r.CaregiverID
				}
				So(ids, ShouldResemble, []string{"d", "b", "c", "a"})
			})
		})

		Convey("When one of them violates a hard constraint", func() {
			family.NeedsDriver = true
			caregivers[0].HasCar = true
			caregivers[0].Rating = 3.95
			caregivers[3].HasCar = true
			results, err := matching.ComputeMatches(family, caregivers)
			So(err, ShouldBeNil)

			Convey("Then fewer violations rank first among equal scores", func() {
				So(results[0].CaregiverID, ShouldEqual, "d")
				So(results[1].CaregiverID, ShouldEqual, "a")
				So(results[0].Score, ShouldEqual, results[1].Score)
				So(results[1].Score, ShouldEqual, results[2].Score)
			})
		})
	})
}

func TestScoreShardMerge(t *testing.T) {
	Convey("Given a pool split into shards", t, func() {
		family := scenarioFamily()
		caregivers := pool(97)
		engine := matching.Default()

		sequential, err := engine.ComputeMatches(family, caregivers)
		So(err, ShouldBeNil)

		Convey("When each shard is scored separately and merged", func() {
			var merged []matching.Scored
			for start := 0; start < len(caregivers); start += 10 {
				end := min(start+10, len(caregivers))
				shard := make([]matching.Indexed, 0, end-start)
				for i := start; i < end; i++ {
					shard = append(shard, matching.Indexed{Index: i, Caregiver: caregivers[i]})
				}
				scored, err := engine.ScoreShard(family, shard)
				So(err, ShouldBeNil)
				// Merge in reverse shard order to show order does not matter.
				merged = append(scored, merged...)
			}

			Convey("Then the ranking equals the sequential one", func() {
				So(matching.Rank(merged), ShouldResemble, sequential)
			})
		})

		Convey("When a shard holds a caregiver without ID", func() {
			_, err := engine.ScoreShard(family, []matching.Indexed{{Index: 41}})

			Convey("Then its original index is reported", func() {
				So(errors.Is(err, matching.ErrMissingCaregiverID), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "index 41")
			})
		})

		Convey("When the family is nil", func() {
			_, err := engine.ScoreShard(nil, nil)
			So(errors.Is(err, matching.ErrNilFamily), ShouldBeTrue)
		})
	})
}
