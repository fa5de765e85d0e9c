package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/seniorcare/smartmatch/internal/adapters/repository"
	"github.com/seniorcare/smartmatch/internal/domain/model"
)

func ptr(v float64) *float64 { return &v }

func seedCaregivers() []model.CaregiverProfile {
	return []model.CaregiverProfile{
		{ID: "c-1", City: "Campo Grande", Neighborhood: "Centro", PriceHour: 35, Rating: 4.8, Available: true, Verified: true, Specializations: []string{"Alzheimer/Demência"}},
		{ID: "c-2", City: "campo grande", Neighborhood: "Jardim", PriceHour: 55, Rating: 4.2, Available: true, Specializations: []string{"Enfermagem"}},
		{ID: "c-3", City: "São Paulo", Neighborhood: "Centro", PriceHour: 40, Rating: 4.9, Available: false, Verified: true},
		{ID: "c-4", City: "Campo Grande", Neighborhood: "Centro", PriceHour: 30, Rating: 4.8, Available: true, Specializations: []string{"enfermagem"}},
	}
}

func ids(cs []model.CaregiverProfile) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestMemoryStoreProfiles(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("When a family is upserted", func() {
			f := model.FamilyProfile{ID: "f-1", ElderNeeds: []string{"alzheimer"}, BudgetPerHour: ptr(40)}
			So(s.UpsertFamily(ctx, f), ShouldBeNil)

			Convey("Then it can be read back as an independent copy", func() {
				got, err := s.GetFamily(ctx, "f-1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, f)

				got.ElderNeeds[0] = "tampered"
				*got.BudgetPerHour = 1
				again, _ := s.GetFamily(ctx, "f-1")
				So(again.ElderNeeds[0], ShouldEqual, "alzheimer")
				So(*again.BudgetPerHour, ShouldEqual, 40.0)
			})

			Convey("Then a second upsert replaces it", func() {
				f.City = "Curitiba"
				So(s.UpsertFamily(ctx, f), ShouldBeNil)
				got, _ := s.GetFamily(ctx, "f-1")
				So(got.City, ShouldEqual, "Curitiba")
				counts, err := s.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts.Families, ShouldEqual, 1)
			})
		})

		Convey("When profiles lack an ID", func() {
			Convey("Then upserts are rejected", func() {
				So(errors.Is(s.UpsertFamily(ctx, model.FamilyProfile{}), repository.ErrMissingID), ShouldBeTrue)
				So(errors.Is(s.UpsertCaregiver(ctx, model.CaregiverProfile{ID: " "}), repository.ErrMissingID), ShouldBeTrue)
			})
		})

		Convey("When profiles are unknown", func() {
			_, ferr := s.GetFamily(ctx, "nope")
			_, cerr := s.GetCaregiver(ctx, "nope")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(ferr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(cerr, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When writers race", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = s.UpsertCaregiver(ctx, model.CaregiverProfile{ID: "same", TotalReviews: i})
					_, _ = s.ListCaregivers(ctx, repository.Filter{})
				}()
			}
			wg.Wait()

			Convey("Then exactly one caregiver remains", func() {
				counts, _ := s.Counts(ctx)
				So(counts.Caregivers, ShouldEqual, 1)
			})
		})
	})
}

func TestMemoryStoreFilter(t *testing.T) {
	Convey("Given a seeded memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		for _, c := range seedCaregivers() {
			So(s.UpsertCaregiver(ctx, c), ShouldBeNil)
		}

		list := func(f repository.Filter) []string {
			out, err := s.ListCaregivers(ctx, f)
			So(err, ShouldBeNil)
			return ids(out)
		}

		Convey("Then an empty filter lists everyone by rating then ID", func() {
			So(list(repository.Filter{}), ShouldResemble, []string{"c-3", "c-1", "c-4", "c-2"})
		})

		Convey("Then city matching ignores case and accents", func() {
			So(list(repository.Filter{City: "CAMPO GRANDE"}), ShouldResemble, []string{"c-1", "c-4", "c-2"})
			So(list(repository.Filter{City: "sao paulo"}), ShouldResemble, []string{"c-3"})
		})

		Convey("Then the remaining filters narrow the pool", func() {
			So(list(repository.Filter{AvailableOnly: true}), ShouldResemble, []string{"c-1", "c-4", "c-2"})
			So(list(repository.Filter{VerifiedOnly: true}), ShouldResemble, []string{"c-3", "c-1"})
			So(list(repository.Filter{Neighborhood: "jardim"}), ShouldResemble, []string{"c-2"})
			So(list(repository.Filter{MinPrice: ptr(35), MaxPrice: ptr(50)}), ShouldResemble, []string{"c-3", "c-1"})
			So(list(repository.Filter{MinRating: ptr(4.8)}), ShouldResemble, []string{"c-3", "c-1", "c-4"})
			So(list(repository.Filter{Specialization: "ENFERMAGEM"}), ShouldResemble, []string{"c-4", "c-2"})
		})

		Convey("Then paging applies after ordering", func() {
			So(list(repository.Filter{Offset: 1, Limit: 2}), ShouldResemble, []string{"c-1", "c-4"})
			So(list(repository.Filter{Offset: 10}), ShouldBeEmpty)
		})

		Convey("When the filter is invalid", func() {
			_, err := s.ListCaregivers(ctx, repository.Filter{MinPrice: ptr(50), MaxPrice: ptr(10)})
			_, lerr := s.ListCaregivers(ctx, repository.Filter{Limit: -1})

			Convey("Then ErrInvalidFilter is returned", func() {
				So(errors.Is(err, repository.ErrInvalidFilter), ShouldBeTrue)
				So(errors.Is(lerr, repository.ErrInvalidFilter), ShouldBeTrue)
			})
		})
	})
}
