package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seniorcare/smartmatch/internal/adapters/mq/queue"
	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/pkg/logger"
	"github.com/seniorcare/smartmatch/pkg/metrics"
)

// rank scores and orders caregivers, recording request metrics under mode.
func (s *Service) rank(ctx context.Context, mode string, family *model.FamilyProfile, caregivers []model.CaregiverProfile) ([]model.MatchResult, error) {
	start := time.Now()
	metrics.RecordMatchRequest(mode)

	results, err := s.score(ctx, family, caregivers)
	if err != nil {
		metrics.RecordMatchError()
		metrics.RecordErrorByComponent("service", "match")
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordCandidatesScored(len(caregivers))
	metrics.RecordMatchLatency(float64(elapsed.Microseconds()) / 1000)
	observeResults(results)

	s.log().Debug(ctx, "match computed",
		logger.String("mode", mode),
		logger.String("family", family.ID),
		logger.Int("candidates", len(caregivers)),
		logger.Duration("took", elapsed),
	)
	return results, nil
}

// score ranks small pools inline. Larger pools are split into shards and
// fanned out to the worker pool; a shard the queue refuses is scored on the
// calling goroutine. Each result keeps its input index, so the merged
// ranking equals the sequential one.
func (s *Service) score(ctx context.Context, family *model.FamilyProfile, caregivers []model.CaregiverProfile) ([]model.MatchResult, error) {
	if family == nil {
		return nil, matching.ErrNilFamily
	}

	s.mu.RLock()
	started, q, shardSize := s.started, s.queue, s.shardSize
	s.mu.RUnlock()

	if !started || len(caregivers) <= shardSize {
		return s.engine.ComputeMatches(family, caregivers)
	}
	if err := matching.CheckCaregivers(caregivers); err != nil {
		return nil, err
	}

	shards := split(caregivers, shardSize)
	results := make(chan queue.Outcome, len(shards))
	done := make(chan struct{})
	defer close(done)

	requestID := uuid.NewString()
	for i, shard := range shards {
		job := queue.Job{
			ID:      fmt.Sprintf("%s/%d", requestID, i),
			Family:  family,
			Shard:   shard,
			Done:    done,
			Results: results,
		}
		if q.Enqueue(ctx, job) {
			metrics.RecordShardJob("pool")
			continue
		}
		metrics.RecordShardJob("inline")
		scored, err := s.engine.ScoreShard(family, shard)
		results <- queue.Outcome{JobID: job.ID, Scored: scored, Err: err}
	}

	merged := make([]matching.Scored, 0, len(caregivers))
	for range shards {
		select {
		case out := <-results:
			if out.Err != nil {
				return nil, fmt.Errorf("shard %s: %w", out.JobID, out.Err)
			}
			merged = append(merged, out.Scored...)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return matching.Rank(merged), nil
}

// split cuts caregivers into index-carrying shards of at most size entries.
func split(caregivers []model.CaregiverProfile, size int) [][]matching.Indexed {
	shards := make([][]matching.Indexed, 0, (len(caregivers)+size-1)/size)
	for lo := 0; lo < len(caregivers); lo += size {
		hi := min(lo+size, len(caregivers))
		shard := make([]matching.Indexed, 0, hi-lo)
		for i := lo; i < hi; i++ {
			shard = append(shard, matching.Indexed{Index: i, Caregiver: caregivers[i]})
		}
		shards = append(shards, shard)
	}
	return shards
}

func observeResults(results []model.MatchResult) {
	for i := range results {
		metrics.RecordScore(results[i].Score)
		for _, c := range results[i].HardConstraintsViolated {
			metrics.RecordConstraintViolation(string(c))
		}
	}
}
