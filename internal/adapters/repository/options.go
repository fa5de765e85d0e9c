package repository

import (
	"time"

	"github.com/seniorcare/smartmatch/pkg/logger"
)

// CacheOption applies a configuration option to the CachedStore.
type CacheOption func(*CachedStore)

// WithCacheTTL sets how long cached profiles live.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(s *CachedStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the Redis key namespace.
func WithKeyPrefix(prefix string) CacheOption {
	return func(s *CachedStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(s *CachedStore) {
		if l != nil {
			s.logger = l
		}
	}
}
