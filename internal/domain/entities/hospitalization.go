package entities

// HospitalizationStatistic is a per-organisation admissions record from the statistics API
type HospitalizationStatistic struct {
	ID                    int64  `json:"id"`
	MedicalOrganization   string `json:"medical_organization"`
	District              string `json:"district"`
	BedProfile            string `json:"bed_profile"`
	AdmittedPatients      int    `json:"admitted_patients"`
	DischargedPatients    int    `json:"discharged_patients"`
	DeceasedPatients      int    `json:"deceased_patients"`
	TotalInpatientBedDays int    `json:"total_inpatient_bed_days"`
}

// AverageLengthOfStay returns bed-days per discharged patient, 0 when nobody was discharged
func (h *HospitalizationStatistic) AverageLengthOfStay() float64 {
	if h == nil {
		return 0
	}
	return AverageLengthOfStay(h.TotalInpatientBedDays, h.DischargedPatients)
}

// AverageLengthOfStay divides bed-days by discharged patients, 0 on a non-positive operand
func AverageLengthOfStay(bedDays, discharged int) float64 {
	if bedDays <= 0 || discharged <= 0 {
		return 0
	}
	return float64(bedDays) / float64(discharged)
}

// CityOrganizationBeds is the nominal bed count of a city organisation
type CityOrganizationBeds struct {
	ID                  int64  `json:"id"`
	MedicalOrganization string `json:"medical_organization"`
	District            string `json:"district"`
	BedProfile          string `json:"bed_profile"`
	Beds                int    `json:"beds"`
}
