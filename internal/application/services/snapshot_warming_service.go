package services

import (
	"context"
	"time"

	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
)

// SnapshotRefresher reloads a cached snapshot from its origin
type SnapshotRefresher interface {
	Refresh(ctx context.Context) error
}

// SnapshotWarmingService keeps the cached facility snapshot populated so
// requests rarely wait on the upstream API.
type SnapshotWarmingService struct {
	refresher SnapshotRefresher
}

// NewSnapshotWarmingService creates a new snapshot warming service
func NewSnapshotWarmingService(refresher SnapshotRefresher) *SnapshotWarmingService {
	return &SnapshotWarmingService{refresher: refresher}
}

// WarmCache reloads the snapshot once
func (s *SnapshotWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Snapshot warming failed")
		return err
	}
	observability.LoggerFromContext(ctx).Debug().
		Dur("duration", time.Since(start)).
		Msg("Snapshot cache warmed")
	return nil
}

// StartPeriodicWarming warms immediately and then every interval until ctx is done.
// It blocks; run it in its own goroutine.
func (s *SnapshotWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	_ = s.WarmCache(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.WarmCache(ctx)
		case <-ctx.Done():
			observability.GetLogger().Info().Msg("Snapshot warming stopped")
			return
		}
	}
}
