package entities

import "time"

// AlternativeStatus tells a consumer whether a redirection record found any target
type AlternativeStatus string

const (
	AlternativeStatusFound AlternativeStatus = "alternatives_found"
	// AlternativeStatusNone means no compatible facility with spare capacity lies within the search radius.
	AlternativeStatusNone AlternativeStatus = "no_alternatives"
)

// ReportStatus describes the overall state of a recommendation report
type ReportStatus string

const (
	// ReportStatusBalanced means no facility is above the overload threshold.
	ReportStatusBalanced   ReportStatus = "balanced"
	ReportStatusOverloaded ReportStatus = "overloaded"
)

// AlternativeFacility is a candidate target for patients redirected from an overloaded facility
type AlternativeFacility struct {
	Facility          *FacilityStatistic `json:"facility"`
	DistanceKm        float64            `json:"distance"`
	TravelTimeMinutes int                `json:"travel_time"`
	AvailableBeds     int                `json:"available_beds"`
	// Score combines normalised distance and occupancy; lower is better.
	Score             float64 `json:"score"`
	SuggestedPatients int     `json:"suggested_patients"`
}

// BedRequirement answers how many beds a facility would need to reach the target occupancy
type BedRequirement struct {
	OccupiedBeds      int `json:"occupied_beds"`
	RequiredTotalBeds int `json:"required_total_beds"`
	AdditionalBeds    int `json:"additional_beds"`
}

// RedirectionRecord bundles one overloaded source with its ranked alternatives
type RedirectionRecord struct {
	Source              *FacilityStatistic    `json:"source"`
	Alternatives        []AlternativeFacility `json:"alternatives"`
	RedirectCount       int                   `json:"redirect_count"`
	RequiredBeds        BedRequirement        `json:"required_beds"`
	UnallocatedPatients int                   `json:"unallocated_patients"`
	Status              AlternativeStatus     `json:"status"`
}

// SourceCandidate is an overloaded facility that could send patients to an under-loaded target
type SourceCandidate struct {
	Facility          *FacilityStatistic `json:"facility"`
	DistanceKm        float64            `json:"distance"`
	TravelTimeMinutes int                `json:"travel_time"`
	RedirectCount     int                `json:"redirect_count"`
}

// RecommendationReport is the result of one on-demand aggregation pass
type RecommendationReport struct {
	ID                  string              `json:"id"`
	GeneratedAt         time.Time           `json:"generated_at"`
	Status              ReportStatus        `json:"status"`
	FacilitiesEvaluated int                 `json:"facilities_evaluated"`
	Records             []RedirectionRecord `json:"records"`
}

// AlternativeSearchResult is the outcome of a single-source alternative search
type AlternativeSearchResult struct {
	Source       *FacilityStatistic    `json:"source"`
	Overloaded   bool                  `json:"overloaded"`
	Alternatives []AlternativeFacility `json:"alternatives"`
	Total        int                   `json:"total"`
	Status       AlternativeStatus     `json:"status"`
}

// ReverseSearchResult lists overloaded facilities that could redirect to a target
type ReverseSearchResult struct {
	Target     *FacilityStatistic `json:"target"`
	Eligible   bool               `json:"eligible"`
	Candidates []SourceCandidate  `json:"candidates"`
}

// BedSizingResult pairs a facility with its bed requirement and redirection estimate
type BedSizingResult struct {
	Facility      *FacilityStatistic `json:"facility"`
	RequiredBeds  BedRequirement     `json:"required_beds"`
	RedirectCount int                `json:"redirect_count"`
}
