package entities

import (
	"math"

	"github.com/zatekoja/healthcapacity/pkg/geo"
)

// FacilityStatistic is one facility/bed-profile occupancy record as published
// by the healthcare statistics API.
type FacilityStatistic struct {
	ID                    int64    `json:"id" db:"id"`
	MedicalOrganization   string   `json:"medical_organization" db:"medical_organization"`
	District              string   `json:"district" db:"district"`
	FacilityType          string   `json:"facility_type" db:"facility_type"`
	BedProfile            string   `json:"bed_profile" db:"bed_profile"`
	OccupancyRate         float64  `json:"occupancy_rate_percent" db:"occupancy_rate_percent"`
	BedsDeployed          int      `json:"beds_deployed_withdrawn_for_rep" db:"beds_deployed_withdrawn_for_rep"`
	BedsDeployedAvgAnnual int      `json:"beds_deployed_withdrawn_for_rep_avg_annual" db:"beds_deployed_withdrawn_for_rep_avg_annual"`
	TotalInpatientBedDays int      `json:"total_inpatient_bed_days" db:"total_inpatient_bed_days"`
	Latitude              *float64 `json:"latitude" db:"latitude"`
	Longitude             *float64 `json:"longitude" db:"longitude"`
}

// IsValid reports whether the record carries an identifier
func (f *FacilityStatistic) IsValid() bool {
	return f != nil && f.ID > 0
}

// HasCoordinates reports whether the facility can take part in distance-based search
func (f *FacilityStatistic) HasCoordinates() bool {
	if f == nil || f.Latitude == nil || f.Longitude == nil {
		return false
	}
	return geo.ValidCoordinates(*f.Latitude, *f.Longitude)
}

// Coordinates returns latitude and longitude; ok is false when HasCoordinates is false
func (f *FacilityStatistic) Coordinates() (lat, lon float64, ok bool) {
	if !f.HasCoordinates() {
		return 0, 0, false
	}
	return *f.Latitude, *f.Longitude, true
}

// CanReceivePatients reports whether the facility has nominal beds to take redirected patients
func (f *FacilityStatistic) CanReceivePatients() bool {
	return f != nil && f.BedsDeployed > 0
}

// OccupiedBeds estimates occupied beds from the nominal count and occupancy rate
func (f *FacilityStatistic) OccupiedBeds() int {
	if f == nil || f.BedsDeployed <= 0 || !isFinite(f.OccupancyRate) || f.OccupancyRate <= 0 {
		return 0
	}
	return int(math.Round(float64(f.BedsDeployed) * f.OccupancyRate))
}

// OccupancyFromBedDays derives an occupancy ratio from cumulative bed-days.
// Any non-positive denominator yields 0.
func OccupancyFromBedDays(bedDays, beds, periodDays int) float64 {
	if bedDays <= 0 || beds <= 0 || periodDays <= 0 {
		return 0
	}
	return float64(bedDays) / (float64(beds) * float64(periodDays))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
