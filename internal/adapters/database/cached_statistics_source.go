package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/internal/domain/providers"
	"github.com/zatekoja/healthcapacity/internal/domain/repositories"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
)

const facilitySnapshotKey = "snapshot:facility_statistics"

// CachedStatisticsSource keeps the raw upstream snapshot in a cache for a
// short TTL. Recommendation results are never cached.
type CachedStatisticsSource struct {
	source  repositories.FacilityStatisticsSource
	cache   providers.CacheProvider
	ttl     int
	name    string
	metrics *observability.Metrics
}

// NewCachedStatisticsSource wraps source with cache. name labels fetch metrics.
func NewCachedStatisticsSource(source repositories.FacilityStatisticsSource, cache providers.CacheProvider, ttlSeconds int, name string, metrics *observability.Metrics) *CachedStatisticsSource {
	return &CachedStatisticsSource{
		source:  source,
		cache:   cache,
		ttl:     ttlSeconds,
		name:    name,
		metrics: metrics,
	}
}

// ListFacilityStatistics returns the cached snapshot or loads and caches a fresh one
func (s *CachedStatisticsSource) ListFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	logger := observability.LoggerFromContext(ctx)

	if s.ttl > 0 {
		cached, err := s.cache.Get(ctx, facilitySnapshotKey)
		switch {
		case err == nil:
			var facilities []*entities.FacilityStatistic
			decodeErr := json.Unmarshal(cached, &facilities)
			if decodeErr == nil {
				observability.RecordCacheHit(ctx, s.metrics, facilitySnapshotKey)
				return facilities, nil
			}
			logger.Warn().Err(decodeErr).Msg("Discarding unreadable cached snapshot")
		case !errors.Is(err, providers.ErrCacheMiss):
			logger.Warn().Err(err).Msg("Snapshot cache unavailable")
		}
		observability.RecordCacheMiss(ctx, s.metrics, facilitySnapshotKey)
	}

	return s.load(ctx)
}

// Refresh loads a fresh snapshot from the source and replaces the cached one
func (s *CachedStatisticsSource) Refresh(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

func (s *CachedStatisticsSource) load(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	start := time.Now()
	facilities, err := s.source.ListFacilityStatistics(ctx)
	observability.RecordSourceFetch(ctx, s.metrics, s.name, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if data, err := json.Marshal(facilities); err == nil {
			if err := s.cache.Set(ctx, facilitySnapshotKey, data, s.ttl); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to cache facility snapshot")
			}
		}
	}

	return facilities, nil
}
