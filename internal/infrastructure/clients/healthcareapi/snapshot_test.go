package healthcareapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

func TestDecodeFacilityStatistics(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantIDs []int64
		wantErr bool
	}{
		{
			name:    "bare array",
			data:    `[{"id": 1, "occupancy_rate_percent": 0.9, "beds_deployed_withdrawn_for_rep": 10}, {"id": null}]`,
			wantIDs: []int64{1},
		},
		{
			name:    "results page",
			data:    `{"results": [{"id": "7", "occupancy_rate_percent": "0,5"}], "next": null}`,
			wantIDs: []int64{7},
		},
		{
			name:    "empty",
			data:    `[]`,
			wantIDs: []int64{},
		},
		{
			name:    "malformed",
			data:    `[{"id": }]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facilities, err := DecodeFacilityStatistics([]byte(tt.data), 365)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]int64, 0, len(facilities))
			for _, f := range facilities {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFileSource_RoundTripsEntityJSON(t *testing.T) {
	lat, lon := 43.2389, 76.8897
	exported := []*entities.FacilityStatistic{{
		ID:                  3,
		MedicalOrganization: "City Hospital No. 7",
		District:            "Almaly",
		FacilityType:        "general hospital",
		BedProfile:          "therapy",
		OccupancyRate:       0.93,
		BedsDeployed:        120,
		Latitude:            &lat,
		Longitude:           &lon,
	}}
	data, err := json.Marshal(exported)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	facilities, err := NewFileSource(path, 365).ListFacilityStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, exported, facilities)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), 365).ListFacilityStatistics(context.Background())
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestDecodeFacilityStatistics_UnsetOptionalNumbers(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantSet bool
	}{
		{name: "empty string", value: `""`},
		{name: "blank string", value: `"  "`},
		{name: "nan string", value: `"NaN"`},
		{name: "infinite string", value: `"Inf"`},
		{name: "null", value: `null`},
		{name: "zero", value: `0`, wantSet: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fmt.Sprintf(`[{"id": 1, "facility_type": "general hospital",
				"occupancy_rate_percent": %[1]s,
				"beds_deployed_withdrawn_for_rep": 100, "total_inpatient_bed_days": 34675,
				"latitude": %[1]s, "longitude": %[1]s}]`, tt.value)

			facilities, err := DecodeFacilityStatistics([]byte(data), 365)
			require.NoError(t, err)
			require.Len(t, facilities, 1)

			f := facilities[0]
			assert.Equal(t, tt.wantSet, f.HasCoordinates())
			if tt.wantSet {
				assert.Equal(t, 0.0, f.OccupancyRate)
			} else {
				assert.Nil(t, f.Latitude)
				assert.Nil(t, f.Longitude)
				assert.InDelta(t, 0.95, f.OccupancyRate, 1e-9)
			}
		})
	}
}

func TestDecodeFacilityStatistics_OneUnsetCoordinateDropsBoth(t *testing.T) {
	facilities, err := DecodeFacilityStatistics([]byte(`[
		{"id": 1, "latitude": "", "longitude": 76.9},
		{"id": 2, "latitude": 43.2, "longitude": "NaN"}
	]`), 365)
	require.NoError(t, err)
	require.Len(t, facilities, 2)
	for _, f := range facilities {
		assert.False(t, f.HasCoordinates(), "facility %d", f.ID)
	}
}
