package vocabulary_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
)

func TestNormalize(t *testing.T) {
	Convey("Given free-text tags", t, func() {
		Convey("Then case, accents and spacing are folded", func() {
			So(vocabulary.Normalize("  Pós-Operatório "), ShouldEqual, "pos-operatorio")
			So(vocabulary.Normalize("ALZHEIMER/Demência"), ShouldEqual, "alzheimer/demencia")
			So(vocabulary.Normalize("Cuidados\tMédicos"), ShouldEqual, "cuidados medicos")
			So(vocabulary.Normalize("São  Paulo"), ShouldEqual, "sao paulo")
			So(vocabulary.Normalize(""), ShouldEqual, "")
		})
	})
}

func TestDefaultTable(t *testing.T) {
	Convey("Given the embedded table", t, func() {
		table, err := vocabulary.Default()
		So(err, ShouldBeNil)

		Convey("Then it carries a version and every care level", func() {
			So(table.Version(), ShouldEqual, "2024.2")
			for _, l := range model.CareLevels() {
				So(table.CareLevel(l), ShouldNotBeEmpty)
			}
		})

		Convey("When resolving the original specialization labels", func() {
			Convey("Then they land on the care level concepts", func() {
				So(table.Resolve("Alzheimer/Demência"), ShouldResemble, []string{"alzheimer"})
				So(table.Resolve("alzheimer"), ShouldResemble, []string{"alzheimer"})
				So(table.Resolve("Cuidados Gerais"), ShouldResemble, []string{"companionship"})
				So(table.Resolve("Companhia"), ShouldResemble, []string{"companionship"})
				So(table.Resolve("Mobilidade Reduzida"), ShouldResemble, []string{"mobility"})
				So(table.Resolve("Fisioterapia"), ShouldResemble, []string{"mobility"})
				So(table.Resolve("Cuidados Médicos"), ShouldResemble, []string{"medical"})
				So(table.Resolve("Pós-Operatório"), ShouldResemble, []string{"post_surgery"})
			})

			Convey("Then nursing covers both medical and post-surgery care", func() {
				So(table.Resolve("Enfermagem"), ShouldResemble, []string{"medical", "post_surgery"})
			})
		})

		Convey("When resolving family need tags", func() {
			Convey("Then each named need lands on a concept", func() {
				So(table.Resolve("medication-administration"), ShouldResemble, []string{"medical"})
				So(table.Resolve("Medicação"), ShouldResemble, []string{"medical"})
				So(table.Resolve("Medicamentos e procedimentos básicos"), ShouldResemble, []string{"medical"})
				So(table.Resolve("hygiene-assistance"), ShouldResemble, []string{"hygiene"})
				So(table.Resolve("Higiene pessoal"), ShouldResemble, []string{"hygiene"})
				So(table.Resolve("meal-preparation"), ShouldResemble, []string{"meal_preparation"})
				So(table.Resolve("Preparo de refeições"), ShouldResemble, []string{"meal_preparation"})
				So(table.Resolve("mobility-assistance"), ShouldResemble, []string{"mobility"})
				So(table.Resolve("companionship"), ShouldResemble, []string{"companionship"})
			})
		})

		Convey("When resolving unknown or blank tags", func() {
			Convey("Then unknown tags resolve to themselves", func() {
				So(table.Resolve("Música Clássica"), ShouldResemble, []string{"musica classica"})
			})

			Convey("Then blank tags resolve to nothing", func() {
				So(table.Resolve("   "), ShouldBeNil)
			})
		})

		Convey("When an alias is only part of a word", func() {
			Convey("Then it does not match", func() {
				So(table.Resolve("hypermobility"), ShouldResemble, []string{"hypermobility"})
			})
		})

		Convey("When resolving a tag list", func() {
			set := table.ResolveAll([]string{"Alzheimer", "Diabetes", "demência", ""})

			Convey("Then the concepts are de-duplicated", func() {
				So(len(set), ShouldEqual, 2)
				So(set, ShouldContainKey, "alzheimer")
				So(set, ShouldContainKey, "diabetes")
			})
		})

		Convey("When mutating returned slices", func() {
			levels := table.CareLevel(model.CareAlzheimer)
			levels[0] = "tampered"
			doc := table.Document()
			doc.Concepts["alzheimer"][0] = "tampered"

			Convey("Then the table is unchanged", func() {
				So(table.CareLevel(model.CareAlzheimer), ShouldResemble, []string{"alzheimer"})
				So(table.Resolve("alzheimer"), ShouldResemble, []string{"alzheimer"})
			})
		})

		Convey("Then unknown care levels carry no requirement", func() {
			So(table.CareLevel("hospice"), ShouldBeEmpty)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given YAML documents", t, func() {
		Convey("When the document is valid", func() {
			table, err := vocabulary.Parse([]byte(`
version: "test-1"
concepts:
  dementia: [alzheimer, demencia]
care_levels:
  alzheimer: [dementia]
`))
			So(err, ShouldBeNil)

			Convey("Then it resolves with its own aliases", func() {
				So(table.Version(), ShouldEqual, "test-1")
				So(table.Resolve("Demência"), ShouldResemble, []string{"dementia"})
				So(table.CareLevel(model.CareAlzheimer), ShouldResemble, []string{"dementia"})
				So(table.ConceptNames(), ShouldResemble, []string{"dementia"})
			})
		})

		cases := []struct {
			name string
			doc  string
			want error
		}{
			{"no version", "concepts:\n  a: [b]\n", vocabulary.ErrInvalidTable},
			{"no concepts", "version: v1\n", vocabulary.ErrInvalidTable},
			{"an unknown care level", "version: v1\nconcepts:\n  a: [b]\ncare_levels:\n  hospice: [a]\n", vocabulary.ErrInvalidTable},
			{"a dangling concept reference", "version: v1\nconcepts:\n  a: [b]\ncare_levels:\n  medical: [c]\n", vocabulary.ErrInvalidTable},
			{"malformed YAML", "version: [\n", vocabulary.ErrLoadTable},
		}
		for _, tc := range cases {
			Convey("When the document has "+tc.name, func() {
				_, err := vocabulary.Parse([]byte(tc.doc))

				Convey("Then it is rejected", func() {
					So(errors.Is(err, tc.want), ShouldBeTrue)
				})
			})
		}
	})
}

func TestLoad(t *testing.T) {
	Convey("Given table files", t, func() {
		Convey("When the path is empty", func() {
			table, err := vocabulary.Load("")

			Convey("Then the embedded table is used", func() {
				So(err, ShouldBeNil)
				So(table.Version(), ShouldEqual, "2024.2")
			})
		})

		Convey("When the path names a valid file", func() {
			path := filepath.Join(t.TempDir(), "vocabulary.yaml")
			So(os.WriteFile(path, []byte("version: file-1\nconcepts:\n  night_care: [plantao noturno]\n"), 0o600), ShouldBeNil)
			table, err := vocabulary.Load(path)

			Convey("Then the file replaces the default", func() {
				So(err, ShouldBeNil)
				So(table.Version(), ShouldEqual, "file-1")
				So(table.Resolve("Plantão Noturno"), ShouldResemble, []string{"night_care"})
				So(table.Resolve("alzheimer"), ShouldResemble, []string{"alzheimer"})
				So(table.CareLevel(model.CareAlzheimer), ShouldBeEmpty)
			})
		})

		Convey("When the file is missing", func() {
			_, err := vocabulary.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			Convey("Then a load error is returned", func() {
				So(errors.Is(err, vocabulary.ErrLoadTable), ShouldBeTrue)
			})
		})
	})
}
