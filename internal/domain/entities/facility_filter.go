package entities

import "strings"

// FacilityFilter narrows a snapshot the way the dashboard filters do. Empty
// fields match everything; matching is case-insensitive.
type FacilityFilter struct {
	District     string `json:"district,omitempty"`
	FacilityType string `json:"facility_type,omitempty"`
	BedProfile   string `json:"bed_profile,omitempty"`
	// Search is a substring matched against the organisation name.
	Search string `json:"search,omitempty"`
}

// IsEmpty reports whether the filter matches every facility
func (f FacilityFilter) IsEmpty() bool {
	return strings.TrimSpace(f.District) == "" &&
		strings.TrimSpace(f.FacilityType) == "" &&
		strings.TrimSpace(f.BedProfile) == "" &&
		strings.TrimSpace(f.Search) == ""
}

// Matches reports whether facility passes every set criterion
func (f FacilityFilter) Matches(facility *FacilityStatistic) bool {
	if facility == nil {
		return false
	}
	if !equalFold(f.District, facility.District) {
		return false
	}
	if !equalFold(f.FacilityType, facility.FacilityType) {
		return false
	}
	if !equalFold(f.BedProfile, facility.BedProfile) {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(facility.MedicalOrganization), search) {
			return false
		}
	}
	return true
}

// Apply returns the facilities that match, preserving order
func (f FacilityFilter) Apply(facilities []*FacilityStatistic) []*FacilityStatistic {
	if f.IsEmpty() {
		return facilities
	}
	out := make([]*FacilityStatistic, 0, len(facilities))
	for _, facility := range facilities {
		if f.Matches(facility) {
			out = append(out, facility)
		}
	}
	return out
}

func equalFold(want, got string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	return strings.EqualFold(want, strings.TrimSpace(got))
}
