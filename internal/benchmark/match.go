package benchmark

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/pkg/logger"
)

// runMatches requests a ranking for every family and checks each answer.
func runMatches(ctx context.Context, cfg *Config, c *client, p Profiles, stats *Stats) {
	byID := make(map[string]model.CaregiverProfile, len(p.Caregivers))
	for _, cg := range p.Caregivers {
		byID[cg.ID] = cg
	}

	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, len(p.Families))
		wg        sync.WaitGroup
	)
	log := logger.Get().Named("match")
	indices := make(chan int, cfg.Workers*2)

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				f := &p.Families[i]
				q := url.Values{}
				q.Set("familyId", f.ID)
				q.Set("limit", strconv.Itoa(cfg.Limit))

				var results []model.MatchResult
				start := time.Now()
				err := c.getJSON(ctx, "/caregivers/match?"+q.Encode(), &results)
				took := time.Since(start)

				violation, mismatch := false, false
				if err == nil {
					if verr := checkRanking(f, byID, results); verr != nil {
						violation = true
						log.Warn(ctx, "ranking invariant violated", logger.String("family", f.ID), logger.Error(verr))
					}
					if cfg.VerifyLocal {
						want, lerr := localRanking(f, p.Caregivers, cfg.Limit)
						if lerr != nil || !sameRanking(want, results) {
							mismatch = true
							log.Warn(ctx, "ranking differs from local engine", logger.String("family", f.ID))
						}
					}
				} else if cfg.Verbose {
					log.Warn(ctx, "match failed", logger.String("family", f.ID), logger.Error(err))
				}

				mu.Lock()
				stats.Matches++
				if err != nil {
					stats.MatchFailures++
				} else {
					latencies = append(latencies, took)
				}
				if violation {
					stats.Violations++
				}
				if mismatch {
					stats.Mismatches++
				}
				mu.Unlock()
			}
		}()
	}

	func() {
		defer close(indices)
		for i := range p.Families {
			select {
			case indices <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	stats.LatencyP50, stats.LatencyP95, stats.LatencyMax = percentiles(latencies)
}

// percentiles returns the 50th and 95th percentile and the maximum.
func percentiles(d []time.Duration) (p50, p95, maxLatency time.Duration) {
	if len(d) == 0 {
		return 0, 0, 0
	}
	slices.Sort(d)
	at := func(q float64) time.Duration {
		return d[min(len(d)-1, int(q*float64(len(d))))]
	}
	return at(0.50), at(0.95), d[len(d)-1]
}
