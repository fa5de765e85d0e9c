// Package benchmark seeds a running Smart Match service with synthetic
// profiles, runs matches against it and checks the returned rankings.
package benchmark

import (
	"errors"
	"time"
)

// Config holds configuration for a benchmark run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Families   int           // Number of families to generate
	Caregivers int           // Number of caregivers to generate
	Workers    int           // Number of concurrent HTTP workers
	Limit      int           // limit query parameter for match requests
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Generator seed; equal seeds give equal profiles
	OutputFile string        // Optional file receiving the generated profiles
	// VerifyLocal recomputes every ranking in-process and compares it with
	// the service's answer. It assumes the service runs default weights.
	VerifyLocal bool
	Verbose     bool
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid benchmark config")

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base URL is required"))
	case c.Families < 1 || c.Caregivers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("families and caregivers must be positive"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.Limit < 1:
		return errors.Join(ErrInvalidConfig, errors.New("limit must be positive"))
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	FamiliesSeeded   int
	CaregiversSeeded int
	SeedFailures     int
	Matches          int
	MatchFailures    int
	Violations       int // ranking invariant violations found
	Mismatches       int // rankings that differ from the local engine
	LatencyP50       time.Duration
	LatencyP95       time.Duration
	LatencyMax       time.Duration
	StartTime        time.Time
	Duration         time.Duration
}
