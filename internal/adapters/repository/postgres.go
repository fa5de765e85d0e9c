package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
	"github.com/seniorcare/smartmatch/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

const (
	familyColumns    = "id, elder_needs, care_level, city, neighborhood, preferred_languages, has_pets, needs_driver, budget_per_hour, elder_hobbies"
	caregiverColumns = "id, name, specializations, city, neighborhood, languages, experience_years, price_hour, has_car, accepts_pets, hobbies, rating, total_reviews, available, verified"
	// Filter keys: city, neighborhood and specializations folded with
	// vocabulary.Normalize at write time so SQL filtering matches the memory store.
	caregiverKeyColumns = "city_key, neighborhood_key, specialization_keys"
)

// OpenPostgres opens a lib/pq connection pool and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %w", ErrStoreFailure, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns / 2)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrStoreFailure, err)
	}
	return db, nil
}

// PostgresStore keeps profiles in PostgreSQL. List-valued fields are text[]
// columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrStoreFailure, err)
	}
	return nil
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// UpsertFamily inserts or replaces a family row.
func (s *PostgresStore) UpsertFamily(ctx context.Context, f model.FamilyProfile) error { //nolint:gocritic // profiles are values
	if err := requireID(f.ID); err != nil {
		return err
	}
	defer observe("upsert_family", time.Now())

	var budget sql.NullFloat64
	if f.BudgetPerHour != nil {
		budget = sql.NullFloat64{Float64: *f.BudgetPerHour, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO families (`+familyColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    elder_needs = EXCLUDED.elder_needs,
    care_level = EXCLUDED.care_level,
    city = EXCLUDED.city,
    neighborhood = EXCLUDED.neighborhood,
    preferred_languages = EXCLUDED.preferred_languages,
    has_pets = EXCLUDED.has_pets,
    needs_driver = EXCLUDED.needs_driver,
    budget_per_hour = EXCLUDED.budget_per_hour,
    elder_hobbies = EXCLUDED.elder_hobbies,
    updated_at = now()`,
		f.ID, textArray(f.ElderNeeds), string(f.CareLevel), f.City, f.Neighborhood,
		textArray(f.PreferredLanguages), f.HasPets, f.NeedsDriver, budget, textArray(f.ElderHobbies),
	)
	if err != nil {
		return storeError("upsert family", err)
	}
	return nil
}

// GetFamily loads one family row.
func (s *PostgresStore) GetFamily(ctx context.Context, id string) (model.FamilyProfile, error) {
	defer observe("get_family", time.Now())

	var (
		f         model.FamilyProfile
		careLevel string
		budget    sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE id = $1`, id).Scan(
		&f.ID, pq.Array(&f.ElderNeeds), &careLevel, &f.City, &f.Neighborhood,
		pq.Array(&f.PreferredLanguages), &f.HasPets, &f.NeedsDriver, &budget, pq.Array(&f.ElderHobbies),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FamilyProfile{}, ErrNotFound
	}
	if err != nil {
		return model.FamilyProfile{}, storeError("get family", err)
	}
	f.CareLevel = model.CareLevel(careLevel)
	if budget.Valid {
		f.BudgetPerHour = model.Budget(budget.Float64)
	}
	return f, nil
}

// UpsertCaregiver inserts or replaces a caregiver row.
func (s *PostgresStore) UpsertCaregiver(ctx context.Context, c model.CaregiverProfile) error { //nolint:gocritic // profiles are values
	if err := requireID(c.ID); err != nil {
		return err
	}
	defer observe("upsert_caregiver", time.Now())

	_, err := s.db.ExecContext(ctx, `INSERT INTO caregivers (`+caregiverColumns+`, `+caregiverKeyColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    specializations = EXCLUDED.specializations,
    city = EXCLUDED.city,
    neighborhood = EXCLUDED.neighborhood,
    languages = EXCLUDED.languages,
    experience_years = EXCLUDED.experience_years,
    price_hour = EXCLUDED.price_hour,
    has_car = EXCLUDED.has_car,
    accepts_pets = EXCLUDED.accepts_pets,
    hobbies = EXCLUDED.hobbies,
    rating = EXCLUDED.rating,
    total_reviews = EXCLUDED.total_reviews,
    available = EXCLUDED.available,
    verified = EXCLUDED.verified,
    city_key = EXCLUDED.city_key,
    neighborhood_key = EXCLUDED.neighborhood_key,
    specialization_keys = EXCLUDED.specialization_keys,
    updated_at = now()`,
		c.ID, c.Name, textArray(c.Specializations), c.City, c.Neighborhood, textArray(c.Languages),
		c.ExperienceYears, c.PriceHour, c.HasCar, c.AcceptsPets, textArray(c.Hobbies),
		c.Rating, c.TotalReviews, c.Available, c.Verified,
		vocabulary.Normalize(c.City), vocabulary.Normalize(c.Neighborhood), textArray(normalizeAll(c.Specializations)),
	)
	if err != nil {
		return storeError("upsert caregiver", err)
	}
	return nil
}

// GetCaregiver loads one caregiver row.
func (s *PostgresStore) GetCaregiver(ctx context.Context, id string) (model.CaregiverProfile, error) {
	defer observe("get_caregiver", time.Now())

	c, err := scanCaregiver(s.db.QueryRowContext(ctx, `SELECT `+caregiverColumns+` FROM caregivers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.CaregiverProfile{}, ErrNotFound
	}
	if err != nil {
		return model.CaregiverProfile{}, storeError("get caregiver", err)
	}
	return c, nil
}

// ListCaregivers runs the filter as SQL. Text filters compare normalized
// keys, so case, accents and spacing are ignored.
func (s *PostgresStore) ListCaregivers(ctx context.Context, filter Filter) ([]model.CaregiverProfile, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	defer observe("list_caregivers", time.Now())

	query, args := listQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("list caregivers", err)
	}
	defer rows.Close()

	var out []model.CaregiverProfile
	for rows.Next() {
		c, err := scanCaregiver(rows)
		if err != nil {
			return nil, storeError("scan caregiver", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list caregivers", err)
	}
	return out, nil
}

// Counts returns the number of stored profiles.
func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	defer observe("counts", time.Now())

	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM families), (SELECT count(*) FROM caregivers)`,
	).Scan(&c.Families, &c.Caregivers)
	if err != nil {
		return Counts{}, storeError("count profiles", err)
	}
	metrics.UpdateProfilesTotal("family", c.Families)
	metrics.UpdateProfilesTotal("caregiver", c.Caregivers)
	return c, nil
}

// listQuery builds the caregiver listing statement with positional args.
func listQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AvailableOnly {
		where = append(where, "available = TRUE")
	}
	if f.VerifiedOnly {
		where = append(where, "verified = TRUE")
	}
	if city := vocabulary.Normalize(f.City); city != "" {
		where = append(where, "city_key = "+arg(city))
	}
	if neighborhood := vocabulary.Normalize(f.Neighborhood); neighborhood != "" {
		where = append(where, "neighborhood_key = "+arg(neighborhood))
	}
	if f.MinPrice != nil {
		where = append(where, "price_hour >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price_hour <= "+arg(*f.MaxPrice))
	}
	if f.MinRating != nil {
		where = append(where, "rating >= "+arg(*f.MinRating))
	}
	if spec := vocabulary.Normalize(f.Specialization); spec != "" {
		where = append(where, arg(spec)+" = ANY(specialization_keys)")
	}

	var b strings.Builder
	b.WriteString("SELECT " + caregiverColumns + " FROM caregivers")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY rating DESC, id ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET " + arg(f.Offset))
	}
	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaregiver(r rowScanner) (model.CaregiverProfile, error) {
	var c model.CaregiverProfile
	err := r.Scan(
		&c.ID, &c.Name, pq.Array(&c.Specializations), &c.City, &c.Neighborhood, pq.Array(&c.Languages),
		&c.ExperienceYears, &c.PriceHour, &c.HasCar, &c.AcceptsPets, pq.Array(&c.Hobbies),
		&c.Rating, &c.TotalReviews, &c.Available, &c.Verified,
	)
	return c, err
}

func normalizeAll(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := vocabulary.Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// textArray encodes nil as an empty array so NOT NULL columns accept it.
func textArray(s []string) any {
	if s == nil {
		s = []string{}
	}
	return pq.Array(s)
}

func storeError(op string, err error) error {
	metrics.RecordErrorByComponent("store", strings.ReplaceAll(op, " ", "_"))
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}
