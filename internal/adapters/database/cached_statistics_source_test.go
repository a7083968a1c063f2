package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/healthcapacity/internal/adapters/database"
	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/internal/domain/providers"
)

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockStatisticsSource struct {
	mock.Mock
}

func (m *MockStatisticsSource) ListFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FacilityStatistic), args.Error(1)
}

func snapshot() []*entities.FacilityStatistic {
	lat, lon := 43.25, 76.91
	return []*entities.FacilityStatistic{
		{ID: 1, MedicalOrganization: "City Hospital", OccupancyRate: 0.9, BedsDeployed: 100, Latitude: &lat, Longitude: &lon},
	}
}

func TestCachedStatisticsSource_Hit(t *testing.T) {
	cache := new(MockCacheProvider)
	source := new(MockStatisticsSource)

	data, err := json.Marshal(snapshot())
	require.NoError(t, err)
	cache.On("Get", mock.Anything, "snapshot:facility_statistics").Return(data, nil)

	cached := database.NewCachedStatisticsSource(source, cache, 60, "api", nil)
	facilities, err := cached.ListFacilityStatistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, snapshot(), facilities)
	source.AssertNotCalled(t, "ListFacilityStatistics", mock.Anything)
	cache.AssertExpectations(t)
}

func TestCachedStatisticsSource_MissLoadsAndStores(t *testing.T) {
	cache := new(MockCacheProvider)
	source := new(MockStatisticsSource)

	cache.On("Get", mock.Anything, "snapshot:facility_statistics").Return(nil, providers.ErrCacheMiss)
	source.On("ListFacilityStatistics", mock.Anything).Return(snapshot(), nil)
	cache.On("Set", mock.Anything, "snapshot:facility_statistics", mock.AnythingOfType("[]uint8"), 60).Return(nil)

	cached := database.NewCachedStatisticsSource(source, cache, 60, "api", nil)
	facilities, err := cached.ListFacilityStatistics(context.Background())

	require.NoError(t, err)
	assert.Len(t, facilities, 1)
	cache.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestCachedStatisticsSource_CacheErrorsAreNotFatal(t *testing.T) {
	cache := new(MockCacheProvider)
	source := new(MockStatisticsSource)

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
	source.On("ListFacilityStatistics", mock.Anything).Return(snapshot(), nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	cached := database.NewCachedStatisticsSource(source, cache, 60, "api", nil)
	facilities, err := cached.ListFacilityStatistics(context.Background())

	require.NoError(t, err)
	assert.Len(t, facilities, 1)
}

func TestCachedStatisticsSource_SourceErrorIsReturned(t *testing.T) {
	cache := new(MockCacheProvider)
	source := new(MockStatisticsSource)

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, providers.ErrCacheMiss)
	source.On("ListFacilityStatistics", mock.Anything).Return(nil, errors.New("upstream down"))

	cached := database.NewCachedStatisticsSource(source, cache, 60, "api", nil)
	_, err := cached.ListFacilityStatistics(context.Background())

	require.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedStatisticsSource_ZeroTTLBypassesCache(t *testing.T) {
	cache := new(MockCacheProvider)
	source := new(MockStatisticsSource)
	source.On("ListFacilityStatistics", mock.Anything).Return(snapshot(), nil)

	cached := database.NewCachedStatisticsSource(source, cache, 0, "api", nil)
	_, err := cached.ListFacilityStatistics(context.Background())

	require.NoError(t, err)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCachedStatisticsSource_RefreshSkipsRead(t *testing.T) {
	cache := new(MockCacheProvider)
	source := new(MockStatisticsSource)
	source.On("ListFacilityStatistics", mock.Anything).Return(snapshot(), nil)
	cache.On("Set", mock.Anything, "snapshot:facility_statistics", mock.AnythingOfType("[]uint8"), 60).Return(nil)

	cached := database.NewCachedStatisticsSource(source, cache, 60, "api", nil)
	require.NoError(t, cached.Refresh(context.Background()))

	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}
