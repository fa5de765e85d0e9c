package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seniorcare/smartmatch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrVerification is returned when a run found failed requests, broken
// ranking invariants or rankings that differ from the local engine.
var ErrVerification = errors.New("benchmark verification failed")

// Run executes a complete benchmark: readiness, generation, seeding,
// matching and verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("benchmark")

	log.Info(ctx, "starting smart match benchmark",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("families", cfg.Families),
		logger.Int("caregivers", cfg.Caregivers),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verify_local", cfg.VerifyLocal),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := checkReady(ctx, c); err != nil {
		return stats, fmt.Errorf("service readiness check failed: %w", err)
	}

	profiles := Generate(cfg.Seed, cfg.Families, cfg.Caregivers)
	if cfg.OutputFile != "" {
		if err := saveProfiles(cfg.OutputFile, profiles); err != nil {
			log.Warn(ctx, "failed to save profiles", logger.Error(err))
		}
	}

	seedProfiles(ctx, cfg, c, profiles, stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	runMatches(ctx, cfg, c, profiles, stats)

	stats.Duration = time.Since(stats.StartTime)
	logStats(ctx, log, stats)

	if stats.SeedFailures > 0 || stats.MatchFailures > 0 || stats.Violations > 0 || stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d seed failures, %d match failures, %d invariant violations, %d mismatches",
			ErrVerification, stats.SeedFailures, stats.MatchFailures, stats.Violations, stats.Mismatches)
	}
	return stats, nil
}

// checkReady verifies the service and its stores answer.
func checkReady(ctx context.Context, c *client) error {
	var body map[string]string
	return c.getJSON(ctx, "/readyz", &body)
}

// saveProfiles writes the generated data set as JSON.
func saveProfiles(filename string, p Profiles) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Matches) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("families_seeded", stats.FamiliesSeeded),
		logger.Int("caregivers_seeded", stats.CaregiversSeeded),
		logger.Int("seed_failures", stats.SeedFailures),
		logger.Int("matches", stats.Matches),
		logger.Int("match_failures", stats.MatchFailures),
		logger.Int("violations", stats.Violations),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("p50", stats.LatencyP50),
		logger.Duration("p95", stats.LatencyP95),
		logger.Duration("max", stats.LatencyMax),
		logger.Duration("duration", stats.Duration),
		logger.Float64("matches_per_second", perSecond),
	)
}
