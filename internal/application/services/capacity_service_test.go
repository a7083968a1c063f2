package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/healthcapacity/internal/application/services"
	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

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

func serviceFixture() []*entities.FacilityStatistic {
	overloaded := facilityAt(1, "general hospital", 1.05, 180, 0)
	target := facilityAt(2, "general hospital", 0.5, 40, 3)
	target.District = "Bostandyk"
	busy := facilityAt(3, "general hospital", 0.9, 100, 1)
	malformed := &entities.FacilityStatistic{ID: 0, OccupancyRate: 0.99, BedsDeployed: 10}
	return []*entities.FacilityStatistic{overloaded, target, busy, malformed}
}

func newService(t *testing.T, facilities []*entities.FacilityStatistic, err error) (*services.CapacityService, *MockStatisticsSource) {
	t.Helper()
	source := new(MockStatisticsSource)
	source.On("ListFacilityStatistics", mock.Anything).Return(facilities, err)
	return services.NewCapacityService(source, newEngine(), nil), source
}

func TestCapacityService_Recommendations(t *testing.T) {
	service, source := newService(t, serviceFixture(), nil)

	report, err := service.Recommendations(context.Background(), entities.FacilityFilter{})
	require.NoError(t, err)

	assert.Equal(t, entities.ReportStatusOverloaded, report.Status)
	assert.Equal(t, 3, report.FacilitiesEvaluated)
	assert.Equal(t, []int64{1, 3}, recordIDs(report.Records))
	assert.Equal(t, []int64{2}, alternativeIDs(report.Records[0].Alternatives))
	source.AssertExpectations(t)
}

func TestCapacityService_Recommendations_FilterKeepsTargets(t *testing.T) {
	service, _ := newService(t, serviceFixture(), nil)

	report, err := service.Recommendations(context.Background(), entities.FacilityFilter{District: "Almaly"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.FacilitiesEvaluated)
	require.Len(t, report.Records, 2)
	// target sits in another district but is still offered
	assert.Equal(t, []int64{2}, alternativeIDs(report.Records[0].Alternatives))
}

func TestCapacityService_SourceFailure(t *testing.T) {
	upstream := apperrors.NewExternalError("statistics api unavailable", errors.New("timeout"))
	service, _ := newService(t, nil, upstream)
	ctx := context.Background()

	_, err := service.Recommendations(ctx, entities.FacilityFilter{})
	assert.ErrorIs(t, err, upstream)

	_, err = service.Summary(ctx, entities.FacilityFilter{})
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))

	_, err = service.Facilities(ctx, entities.FacilityFilter{})
	assert.Error(t, err)

	_, err = service.Alternatives(ctx, 1, 0)
	assert.Error(t, err)
}

func TestCapacityService_UnknownFacility(t *testing.T) {
	service, _ := newService(t, serviceFixture(), nil)
	ctx := context.Background()

	_, err := service.Alternatives(ctx, 42, 0)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = service.PotentialSources(ctx, 42)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = service.RequiredBeds(ctx, 42)
	assert.True(t, apperrors.IsNotFound(err))

	// malformed records are not addressable
	_, err = service.RequiredBeds(ctx, 0)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCapacityService_Alternatives(t *testing.T) {
	service, _ := newService(t, serviceFixture(), nil)

	result, err := service.Alternatives(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.True(t, result.Overloaded)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []int64{2}, alternativeIDs(result.Alternatives))
}

func TestCapacityService_PotentialSources(t *testing.T) {
	service, _ := newService(t, serviceFixture(), nil)

	result, err := service.PotentialSources(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, result.Eligible)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, int64(3), result.Candidates[0].Facility.ID)
	assert.Equal(t, int64(1), result.Candidates[1].Facility.ID)
}

func TestCapacityService_RequiredBeds(t *testing.T) {
	service, _ := newService(t, serviceFixture(), nil)

	result, err := service.RequiredBeds(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, entities.BedRequirement{OccupiedBeds: 189, RequiredTotalBeds: 223, AdditionalBeds: 43}, result.RequiredBeds)
	assert.Equal(t, 36, result.RedirectCount)
}

func TestCapacityService_SummaryAndFacilities(t *testing.T) {
	service, _ := newService(t, serviceFixture(), nil)
	ctx := context.Background()

	summary, err := service.Summary(ctx, entities.FacilityFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalFacilities)
	assert.Equal(t, 2, summary.OverloadedFacilities)

	facilities, err := service.Facilities(ctx, entities.FacilityFilter{District: "bostandyk"})
	require.NoError(t, err)
	require.Len(t, facilities, 1)
	assert.Equal(t, int64(2), facilities[0].ID)
}
