package healthcareapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/healthcapacity/pkg/config"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
	"github.com/zatekoja/healthcapacity/pkg/retry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.HealthcareAPIConfig{
		BaseURL:        server.URL + "/api/",
		TimeoutSeconds: 2,
		PageSize:       2,
		MaxPages:       10,
	}, 365)
	return client.WithRetryConfig(retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	})
}

func TestClient_GetFacilityStatistics_FollowsPagination(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/api/facility-statistics/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprint(w, `{
				"results": [
					{"id": 1, "medical_organization": " City Hospital No. 1 ", "district": "Almaly",
					 "facility_type": "general hospital", "bed_profile": "therapy",
					 "occupancy_rate_percent": 0.92, "beds_deployed_withdrawn_for_rep": 120,
					 "latitude": 43.25, "longitude": 76.91},
					{"medical_organization": "no id", "occupancy_rate_percent": 0.5}
				],
				"next": "/api/facility-statistics/?page=2&page_size=2"
			}`)
		case "2":
			fmt.Fprint(w, `{
				"results": [
					{"id": "2", "medical_organization": "Regional Perinatal Center",
					 "facility_type": "maternity hospital", "occupancy_rate_percent": "0,61",
					 "beds_deployed_withdrawn_for_rep": "80", "latitude": null, "longitude": 76.9},
					{"id": 3, "medical_organization": "District Hospital",
					 "beds_deployed_withdrawn_for_rep": 100, "beds_deployed_withdrawn_for_rep_avg_annual": 100,
					 "total_inpatient_bed_days": 32850, "occupancy_rate_percent": null}
				],
				"next": null
			}`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	facilities, err := client.GetFacilityStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	require.Len(t, facilities, 3)

	first := facilities[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "City Hospital No. 1", first.MedicalOrganization)
	assert.Equal(t, 0.92, first.OccupancyRate)
	assert.Equal(t, 120, first.BedsDeployed)
	assert.True(t, first.HasCoordinates())

	second := facilities[1]
	assert.Equal(t, int64(2), second.ID)
	assert.InDelta(t, 0.61, second.OccupancyRate, 1e-9)
	assert.Equal(t, 80, second.BedsDeployed)
	assert.False(t, second.HasCoordinates())

	third := facilities[2]
	assert.InDelta(t, 0.9, third.OccupancyRate, 1e-9)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"results": [{"id": 7, "beds": 40}]}`)
	})

	beds, err := client.GetCityOrganizationBeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	require.Len(t, beds, 1)
	assert.Equal(t, 40, beds[0].Beds)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.GetHospitalizationStatistics(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetFacilityStatistics(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [`)
	})

	_, err := client.GetFacilityStatistics(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestClient_StopsOnRepeatedNextLink(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprintf(w, `{"results": [{"id": %d}], "next": "?page_size=2"}`, atomic.LoadInt32(&requests))
	})

	facilities, err := client.GetFacilityStatistics(context.Background())
	require.NoError(t, err)
	assert.Len(t, facilities, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestClient_EmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	})

	facilities, err := client.GetFacilityStatistics(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, facilities)
	assert.Empty(t, facilities)
}

func TestHospitalizationRecordsDropMissingIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hospitalization-statistics/", r.URL.Path)
		fmt.Fprint(w, `{"results": [
			{"id": 4, "medical_organization": "City Hospital", "discharged_patients": 40, "total_inpatient_bed_days": 360},
			{"id": 0, "medical_organization": "broken"}
		]}`)
	})

	stats, err := client.ListHospitalizationStatistics(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 9.0, stats[0].AverageLengthOfStay())
}

func TestClient_GetFacilityStatistics_UnsetOptionalNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty string", value: `""`},
		{name: "nan string", value: `"NaN"`},
		{name: "null", value: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"results": [
					{"id": 1, "facility_type": "general hospital", "occupancy_rate_percent": %[1]s,
					 "beds_deployed_withdrawn_for_rep_avg_annual": 100, "total_inpatient_bed_days": 34675,
					 "latitude": %[1]s, "longitude": %[1]s},
					{"id": 2, "facility_type": "general hospital", "occupancy_rate_percent": 0.4,
					 "latitude": %[1]s, "longitude": %[1]s}
				], "next": null}`, tt.value)
			})

			facilities, err := client.GetFacilityStatistics(context.Background())
			require.NoError(t, err)
			require.Len(t, facilities, 2)

			assert.InDelta(t, 0.95, facilities[0].OccupancyRate, 1e-9)
			for _, f := range facilities {
				assert.False(t, f.HasCoordinates(), "facility %d", f.ID)
			}
		})
	}
}
