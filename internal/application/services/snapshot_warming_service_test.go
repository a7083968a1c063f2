package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/healthcapacity/internal/application/services"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestSnapshotWarmingService_WarmCache(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("api down")}
	service := services.NewSnapshotWarmingService(refresher)

	assert.Error(t, service.WarmCache(context.Background()))
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestSnapshotWarmingService_StartPeriodicWarming(t *testing.T) {
	refresher := &countingRefresher{}
	service := services.NewSnapshotWarmingService(refresher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.StartPeriodicWarming(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("warming loop did not stop")
	}
}
