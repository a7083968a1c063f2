package entities_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/healthcapacity/internal/domain/entities"
)

func ptr(v float64) *float64 { return &v }

func TestFacilityStatistic_HasCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		facility *entities.FacilityStatistic
		want     bool
	}{
		{name: "nil facility", facility: nil, want: false},
		{name: "missing latitude", facility: &entities.FacilityStatistic{Longitude: ptr(76.9)}, want: false},
		{name: "missing longitude", facility: &entities.FacilityStatistic{Latitude: ptr(43.2)}, want: false},
		{name: "out of range", facility: &entities.FacilityStatistic{Latitude: ptr(120), Longitude: ptr(76.9)}, want: false},
		{name: "nan", facility: &entities.FacilityStatistic{Latitude: ptr(math.NaN()), Longitude: ptr(76.9)}, want: false},
		{name: "valid", facility: &entities.FacilityStatistic{Latitude: ptr(43.2), Longitude: ptr(76.9)}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.facility.HasCoordinates())
		})
	}
}

func TestFacilityStatistic_CapacityHelpers(t *testing.T) {
	f := &entities.FacilityStatistic{ID: 3, BedsDeployed: 180, OccupancyRate: 1.05}
	assert.True(t, f.IsValid())
	assert.True(t, f.CanReceivePatients())
	assert.Equal(t, 189, f.OccupiedBeds())

	empty := &entities.FacilityStatistic{OccupancyRate: 0.5}
	assert.False(t, empty.IsValid())
	assert.False(t, empty.CanReceivePatients())
	assert.Equal(t, 0, empty.OccupiedBeds())
}

func TestOccupancyFromBedDays(t *testing.T) {
	assert.InDelta(t, 0.9, entities.OccupancyFromBedDays(32850, 100, 365), 1e-9)
	assert.Equal(t, 0.0, entities.OccupancyFromBedDays(32850, 0, 365))
	assert.Equal(t, 0.0, entities.OccupancyFromBedDays(32850, 100, 0))
	assert.Equal(t, 0.0, entities.OccupancyFromBedDays(0, 100, 365))
}

func TestHospitalizationStatistic_AverageLengthOfStay(t *testing.T) {
	h := &entities.HospitalizationStatistic{DischargedPatients: 40, TotalInpatientBedDays: 360}
	assert.Equal(t, 9.0, h.AverageLengthOfStay())

	none := &entities.HospitalizationStatistic{TotalInpatientBedDays: 360}
	assert.Equal(t, 0.0, none.AverageLengthOfStay())
}

func TestFacilityFilter(t *testing.T) {
	facilities := []*entities.FacilityStatistic{
		{ID: 1, MedicalOrganization: "City Hospital No. 4", District: "Almaly", FacilityType: "general hospital", BedProfile: "therapy"},
		{ID: 2, MedicalOrganization: "Children's Clinical Hospital", District: "Bostandyk", FacilityType: "children's hospital", BedProfile: "pediatrics"},
		{ID: 3, MedicalOrganization: "City Hospital No. 7", District: "almaly ", FacilityType: "general hospital", BedProfile: "surgery"},
	}

	assert.Len(t, entities.FacilityFilter{}.Apply(facilities), 3)

	byDistrict := entities.FacilityFilter{District: "ALMALY"}.Apply(facilities)
	assert.Equal(t, []int64{1, 3}, ids(byDistrict))

	bySearch := entities.FacilityFilter{Search: "hospital no."}.Apply(facilities)
	assert.Equal(t, []int64{1, 3}, ids(bySearch))

	combined := entities.FacilityFilter{District: "almaly", BedProfile: "surgery"}.Apply(facilities)
	assert.Equal(t, []int64{3}, ids(combined))

	assert.False(t, entities.FacilityFilter{}.Matches(nil))
}

func ids(facilities []*entities.FacilityStatistic) []int64 {
	out := make([]int64, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, f.ID)
	}
	return out
}
