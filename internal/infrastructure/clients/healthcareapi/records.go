package healthcareapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
)

// optionalFloat decodes a JSON number, a numeric string or null. Decimal
// commas are accepted because several upstream exports use them. Empty
// strings, null and non-finite values leave it unset.
type optionalFloat struct {
	value float64
	set   bool
}

func (o *optionalFloat) UnmarshalJSON(data []byte) error {
	v, ok, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	o.value, o.set = v, ok
	return nil
}

// flexInt decodes like optionalFloat, rounded to the nearest integer.
// Unset values decode to zero.
type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	v, ok, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	if ok {
		*i = flexInt(math.Round(v))
	}
	return nil
}

func parseFlexNumber(data []byte) (float64, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false, err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return 0, false, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid number %q", s)
		}
		return v, !math.IsNaN(v) && !math.IsInf(v, 0), nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, false, err
	}
	return v, true, nil
}

type facilityStatisticRecord struct {
	ID                    *flexInt      `json:"id"`
	MedicalOrganization   string        `json:"medical_organization"`
	District              string        `json:"district"`
	FacilityType          string        `json:"facility_type"`
	BedProfile            string        `json:"bed_profile"`
	OccupancyRate         optionalFloat `json:"occupancy_rate_percent"`
	BedsDeployed          flexInt       `json:"beds_deployed_withdrawn_for_rep"`
	BedsDeployedAvgAnnual flexInt       `json:"beds_deployed_withdrawn_for_rep_avg_annual"`
	TotalInpatientBedDays flexInt       `json:"total_inpatient_bed_days"`
	Latitude              optionalFloat `json:"latitude"`
	Longitude             optionalFloat `json:"longitude"`
}

func (r facilityStatisticRecord) toEntity(periodDays int) (*entities.FacilityStatistic, bool) {
	if r.ID == nil || *r.ID <= 0 {
		return nil, false
	}

	f := &entities.FacilityStatistic{
		ID:                    int64(*r.ID),
		MedicalOrganization:   strings.TrimSpace(r.MedicalOrganization),
		District:              strings.TrimSpace(r.District),
		FacilityType:          strings.TrimSpace(r.FacilityType),
		BedProfile:            strings.TrimSpace(r.BedProfile),
		BedsDeployed:          int(r.BedsDeployed),
		BedsDeployedAvgAnnual: int(r.BedsDeployedAvgAnnual),
		TotalInpatientBedDays: int(r.TotalInpatientBedDays),
	}

	if r.OccupancyRate.set {
		f.OccupancyRate = r.OccupancyRate.value
	} else {
		beds := f.BedsDeployedAvgAnnual
		if beds <= 0 {
			beds = f.BedsDeployed
		}
		f.OccupancyRate = entities.OccupancyFromBedDays(f.TotalInpatientBedDays, beds, periodDays)
	}

	if r.Latitude.set && r.Longitude.set {
		lat, lon := r.Latitude.value, r.Longitude.value
		f.Latitude, f.Longitude = &lat, &lon
	}

	return f, true
}

type hospitalizationRecord struct {
	ID                    *flexInt `json:"id"`
	MedicalOrganization   string   `json:"medical_organization"`
	District              string   `json:"district"`
	BedProfile            string   `json:"bed_profile"`
	AdmittedPatients      flexInt  `json:"admitted_patients"`
	DischargedPatients    flexInt  `json:"discharged_patients"`
	DeceasedPatients      flexInt  `json:"deceased_patients"`
	TotalInpatientBedDays flexInt  `json:"total_inpatient_bed_days"`
}

type cityOrganizationBedsRecord struct {
	ID                  *flexInt `json:"id"`
	MedicalOrganization string   `json:"medical_organization"`
	District            string   `json:"district"`
	BedProfile          string   `json:"bed_profile"`
	Beds                flexInt  `json:"beds"`
}
