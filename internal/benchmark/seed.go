package benchmark

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/seniorcare/smartmatch/pkg/logger"
)

// seedProfiles upserts every generated profile with cfg.Workers concurrent
// PUT requests.
func seedProfiles(ctx context.Context, cfg *Config, c *client, p Profiles, stats *Stats) {
	type upsert struct {
		path   string
		body   any
		family bool
	}
	jobs := make(chan upsert, cfg.Workers*2)

	var families, caregivers, failed atomic.Int64
	var wg sync.WaitGroup
	log := logger.Get().Named("seed")

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := c.putJSON(ctx, job.path, job.body); err != nil {
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "upsert failed", logger.String("path", job.path), logger.Error(err))
					}
					continue
				}
				if job.family {
					families.Add(1)
				} else {
					caregivers.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range p.Families {
			f := p.Families[i]
			select {
			case jobs <- upsert{path: "/families/" + url.PathEscape(f.ID), body: f, family: true}:
			case <-ctx.Done():
				return
			}
		}
		for i := range p.Caregivers {
			cg := p.Caregivers[i]
			select {
			case jobs <- upsert{path: "/caregivers/" + url.PathEscape(cg.ID), body: cg}:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	stats.FamiliesSeeded = int(families.Load())
	stats.CaregiversSeeded = int(caregivers.Load())
	stats.SeedFailures = int(failed.Load())
	log.Info(ctx, "profiles seeded",
		logger.Int("families", stats.FamiliesSeeded),
		logger.Int("caregivers", stats.CaregiversSeeded),
		logger.Int("failed", stats.SeedFailures),
	)
}
