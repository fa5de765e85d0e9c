// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/seniorcare/smartmatch/internal/adapters/mq/queue"
	"github.com/seniorcare/smartmatch/internal/adapters/mq/worker"
	"github.com/seniorcare/smartmatch/internal/adapters/repository"
	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
	"github.com/seniorcare/smartmatch/pkg/logger"
	"github.com/seniorcare/smartmatch/pkg/metrics"
)

const (
	defaultShardSize = 2_000
	defaultQueueSize = 1_024
)

// ErrNotStarted is returned by readiness checks before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the matching system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *matching.Engine
	queue  *queue.InMemoryQueue
	pool   *worker.Pool

	// Configuration
	workerCount  int
	queueSize    int
	shardSize    int
	cacheEnabled bool
	checks       []readinessCheck

	// State
	started    bool
	stopWorker context.CancelFunc

	// Logging
	logger logger.Logger
}

type readinessCheck struct {
	name  string
	check func(context.Context) error
}

// New constructs a new Service with default configuration: an in-memory
// store and the default engine.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		shardSize:   defaultShardSize,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.engine == nil {
		s.engine = matching.Default()
	}
	return s
}

// Start creates the job queue and starts the scoring pool. The pool outlives
// cancellation of ctx and runs until Stop, so matches in flight during
// shutdown keep their workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.engine, worker.WithLogger(s.logger.Named("worker")))
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stopWorker = cancel
	s.pool.Start(poolCtx)

	s.started = true
	s.logger.Info(ctx, "smart match service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("shard_size", s.shardSize),
		logger.String("vocabulary", s.engine.Vocabulary().Version()),
		logger.Bool("cache", s.cacheEnabled),
	)
	return nil
}

// Stop drains the scoring pool. Matches that arrive afterwards are scored
// inline.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping smart match service...")

	err := s.pool.Shutdown(ctx)
	s.stopWorker()
	s.started = false
	s.logger.Info(ctx, "smart match service stopped", logger.Int("jobs_processed", int(s.pool.Processed())))
	return err
}

// SaveFamily upserts f. A blank ID is replaced with a new UUID.
func (s *Service) SaveFamily(ctx context.Context, f model.FamilyProfile) (model.FamilyProfile, error) { //nolint:gocritic // profiles are values
	if strings.TrimSpace(f.ID) == "" {
		f.ID = uuid.NewString()
	}
	if err := s.store.UpsertFamily(ctx, f); err != nil {
		return model.FamilyProfile{}, err
	}
	return f, nil
}

// Family returns a stored family.
func (s *Service) Family(ctx context.Context, id string) (model.FamilyProfile, error) {
	return s.store.GetFamily(ctx, id)
}

// SaveCaregiver upserts c. A blank ID is replaced with a new UUID.
func (s *Service) SaveCaregiver(ctx context.Context, c model.CaregiverProfile) (model.CaregiverProfile, error) { //nolint:gocritic // profiles are values
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	if err := s.store.UpsertCaregiver(ctx, c); err != nil {
		return model.CaregiverProfile{}, err
	}
	return c, nil
}

// Caregiver returns a stored caregiver.
func (s *Service) Caregiver(ctx context.Context, id string) (model.CaregiverProfile, error) {
	return s.store.GetCaregiver(ctx, id)
}

// ListCaregivers returns stored caregivers passing filter.
func (s *Service) ListCaregivers(ctx context.Context, filter repository.Filter) ([]model.CaregiverProfile, error) {
	return s.store.ListCaregivers(ctx, filter)
}

// MatchFamily ranks the caregivers passing filter for a stored family and
// trims the ranking with sel.
func (s *Service) MatchFamily(ctx context.Context, familyID string, filter repository.Filter, sel matching.Selection) ([]model.MatchResult, error) {
	family, err := s.store.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.store.ListCaregivers(ctx, filter)
	if err != nil {
		return nil, err
	}
	ranked, err := s.rank(ctx, "stored", &family, candidates)
	if err != nil {
		return nil, err
	}
	return sel.Apply(ranked), nil
}

// Match ranks caregivers supplied by the caller.
func (s *Service) Match(ctx context.Context, family *model.FamilyProfile, caregivers []model.CaregiverProfile) ([]model.MatchResult, error) {
	return s.rank(ctx, "adhoc", family, caregivers)
}

// MatchCaregiver scores one stored caregiver for one stored family.
func (s *Service) MatchCaregiver(ctx context.Context, familyID, caregiverID string) (model.MatchResult, error) {
	family, err := s.store.GetFamily(ctx, familyID)
	if err != nil {
		return model.MatchResult{}, err
	}
	caregiver, err := s.store.GetCaregiver(ctx, caregiverID)
	if err != nil {
		return model.MatchResult{}, err
	}

	metrics.RecordMatchRequest("single")
	result, err := s.engine.Score(&family, caregiver)
	if err != nil {
		metrics.RecordMatchError()
		return model.MatchResult{}, err
	}
	observeResults([]model.MatchResult{result})
	return result, nil
}

// Weights returns the engine's factor weights.
func (s *Service) Weights() matching.Weights { return s.engine.Weights() }

// Vocabulary returns the engine's alias table.
func (s *Service) Vocabulary() vocabulary.Document { return s.engine.Vocabulary().Document() }

// Ready runs every registered readiness check.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	for _, c := range s.checks {
		if err := c.check(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":            s.started,
		"worker_count":       s.workerCount,
		"queue_size":         s.queueSize,
		"shard_size":         s.shardSize,
		"cache_enabled":      s.cacheEnabled,
		"vocabulary_version": s.engine.Vocabulary().Version(),
		"weights":            s.engine.Weights(),
	}

	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		stats["jobs_processed"] = s.pool.Processed()
	}

	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.log().Warn(ctx, "profile counts unavailable", logger.Error(err))
	} else {
		stats["families"] = counts.Families
		stats["caregivers"] = counts.Caregivers
		metrics.UpdateProfilesTotal("family", counts.Families)
		metrics.UpdateProfilesTotal("caregiver", counts.Caregivers)
	}

	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get().Named("service")
}
