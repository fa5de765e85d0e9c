package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/pkg/logger"
	"github.com/seniorcare/smartmatch/pkg/metrics"
)

const (
	defaultCacheTTL       = 5 * time.Minute
	defaultCacheKeyPrefix = "smartmatch:"
)

// NewRedisClient builds a go-redis client with the service's timeouts.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// CachedStore is a read-through Redis cache in front of another Store.
// Single profile reads are cached; writes go to the inner store and then
// evict the cached copy. Cache failures are logged and never fail a call.
type CachedStore struct {
	inner  Store
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

// NewCachedStore wraps inner with client.
func NewCachedStore(inner Store, client redis.Cmdable, opts ...CacheOption) *CachedStore {
	s := &CachedStore{
		inner:  inner,
		client: client,
		ttl:    defaultCacheTTL,
		prefix: defaultCacheKeyPrefix,
		logger: logger.Get().Named("profile-cache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertFamily writes through and evicts the cached family.
func (s *CachedStore) UpsertFamily(ctx context.Context, f model.FamilyProfile) error { //nolint:gocritic // profiles are values
	if err := s.inner.UpsertFamily(ctx, f); err != nil {
		return err
	}
	s.evict(ctx, s.familyKey(f.ID))
	return nil
}

// GetFamily serves from the cache, loading from the inner store on a miss.
func (s *CachedStore) GetFamily(ctx context.Context, id string) (model.FamilyProfile, error) {
	return readThrough(ctx, s, s.familyKey(id), func() (model.FamilyProfile, error) {
		return s.inner.GetFamily(ctx, id)
	})
}

// UpsertCaregiver writes through and evicts the cached caregiver.
func (s *CachedStore) UpsertCaregiver(ctx context.Context, c model.CaregiverProfile) error { //nolint:gocritic // profiles are values
	if err := s.inner.UpsertCaregiver(ctx, c); err != nil {
		return err
	}
	s.evict(ctx, s.caregiverKey(c.ID))
	return nil
}

// GetCaregiver serves from the cache, loading from the inner store on a miss.
func (s *CachedStore) GetCaregiver(ctx context.Context, id string) (model.CaregiverProfile, error) {
	return readThrough(ctx, s, s.caregiverKey(id), func() (model.CaregiverProfile, error) {
		return s.inner.GetCaregiver(ctx, id)
	})
}

// ListCaregivers is not cached.
func (s *CachedStore) ListCaregivers(ctx context.Context, filter Filter) ([]model.CaregiverProfile, error) {
	return s.inner.ListCaregivers(ctx, filter)
}

// Counts is not cached.
func (s *CachedStore) Counts(ctx context.Context) (Counts, error) {
	return s.inner.Counts(ctx)
}

// Ping checks the Redis connection.
func (s *CachedStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CachedStore) familyKey(id string) string    { return s.prefix + "family:" + id }
func (s *CachedStore) caregiverKey(id string) string { return s.prefix + "caregiver:" + id }

func (s *CachedStore) evict(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.cacheFailed(ctx, "evict", key, err)
	}
}

func (s *CachedStore) cacheFailed(ctx context.Context, op, key string, err error) {
	metrics.RecordCacheLookup("error")
	metrics.RecordErrorByComponent("cache", op+"_failed")
	s.logger.Warn(ctx, "profile cache "+op+" failed", logger.String("key", key), logger.Error(err))
}

func readThrough[T any](ctx context.Context, s *CachedStore, key string, load func() (T, error)) (T, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		jerr := json.Unmarshal(raw, &v)
		if jerr == nil {
			metrics.RecordCacheLookup("hit")
			return v, nil
		}
		s.cacheFailed(ctx, "decode", key, jerr)
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
	default:
		s.cacheFailed(ctx, "get", key, err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if payload, jerr := json.Marshal(v); jerr == nil {
		if serr := s.client.Set(ctx, key, payload, s.ttl).Err(); serr != nil {
			s.cacheFailed(ctx, "set", key, serr)
		}
	}
	return v, nil
}
