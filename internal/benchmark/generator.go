package benchmark

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// Value pools for synthetic profiles. Tags use the spellings families and
// caregivers type in practice so that alias resolution is exercised.
var (
	cities        = []string{"Campo Grande", "São Paulo", "Curitiba", "Recife"}
	neighborhoods = []string{"Centro", "Jardim", "Vila Nova"}
	languages     = []string{"Português", "English", "Español"}
	hobbies       = []string{"música", "jardinagem", "leitura", "culinária", "xadrez", "caminhada"}
	needs         = []string{"Alzheimer/Demência", "Mobilidade Reduzida", "Fisioterapia", "Enfermagem", "Companhia", "Diabetes", "Cuidados Médicos"}
)

// Profiles is a generated data set.
type Profiles struct {
	Families   []model.FamilyProfile    `json:"families"`
	Caregivers []model.CaregiverProfile `json:"caregivers"`
}

type generator struct {
	rnd *rand.Rand
}

func newGenerator(seed uint64) *generator {
	return &generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate builds families and caregivers from seed. IDs are UUIDs derived
// from the same stream, so equal seeds yield equal data sets.
func Generate(seed uint64, families, caregivers int) Profiles {
	g := newGenerator(seed)
	p := Profiles{
		Families:   make([]model.FamilyProfile, families),
		Caregivers: make([]model.CaregiverProfile, caregivers),
	}
	for i := range p.Families {
		p.Families[i] = g.family()
	}
	for i := range p.Caregivers {
		p.Caregivers[i] = g.caregiver()
	}
	return p
}

func (g *generator) id() string {
	var b [16]byte
	for i := range b {
		b[i] = byte(g.rnd.UintN(256))
	}
	id, _ := uuid.FromBytes(b[:])
	return id.String()
}

func (g *generator) pick(pool []string) string {
	return pool[g.rnd.IntN(len(pool))]
}

// some returns up to n distinct entries of pool.
func (g *generator) some(pool []string, n int) []string {
	k := g.rnd.IntN(n + 1)
	perm := g.rnd.Perm(len(pool))
	out := make([]string, 0, k)
	for _, i := range perm[:min(k, len(pool))] {
		out = append(out, pool[i])
	}
	return out
}

func (g *generator) family() model.FamilyProfile {
	levels := model.CareLevels()
	f := model.FamilyProfile{
		ID:                 g.id(),
		ElderNeeds:         g.some(needs, 3),
		CareLevel:          levels[g.rnd.IntN(len(levels))],
		City:               g.pick(cities),
		Neighborhood:       g.pick(neighborhoods),
		PreferredLanguages: g.some(languages, 2),
		HasPets:            g.rnd.IntN(3) == 0,
		NeedsDriver:        g.rnd.IntN(4) == 0,
		ElderHobbies:       g.some(hobbies, 3),
	}
	if g.rnd.IntN(5) > 0 {
		f.BudgetPerHour = model.Budget(float64(25 + g.rnd.IntN(40)))
	}
	return f
}

func (g *generator) caregiver() model.CaregiverProfile {
	return model.CaregiverProfile{
		ID:              g.id(),
		Name:            "caregiver",
		Specializations: g.some(needs, 3),
		City:            g.pick(cities),
		Neighborhood:    g.pick(neighborhoods),
		Languages:       append([]string{"Português"}, g.some(languages[1:], 1)...),
		ExperienceYears: g.rnd.IntN(20),
		PriceHour:       float64(20 + g.rnd.IntN(60)),
		HasCar:          g.rnd.IntN(2) == 0,
		AcceptsPets:     g.rnd.IntN(2) == 0,
		Hobbies:         g.some(hobbies, 3),
		Rating:          float64(g.rnd.IntN(51)) / 10,
		TotalReviews:    g.rnd.IntN(40),
		Available:       g.rnd.IntN(10) > 0,
		Verified:        g.rnd.IntN(3) > 0,
	}
}
