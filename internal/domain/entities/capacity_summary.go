package entities

// LoadBand is a coarse occupancy classification used by overview views
type LoadBand string

const (
	LoadBandUnderloaded LoadBand = "underloaded"
	LoadBandNormal      LoadBand = "normal"
	LoadBandElevated    LoadBand = "elevated"
	LoadBandHigh        LoadBand = "high"
	LoadBandSevere      LoadBand = "severe"
	LoadBandCritical    LoadBand = "critical"
)

// LoadBands lists bands from least to most loaded
var LoadBands = []LoadBand{
	LoadBandUnderloaded,
	LoadBandNormal,
	LoadBandElevated,
	LoadBandHigh,
	LoadBandSevere,
	LoadBandCritical,
}

// DistrictSummary aggregates capacity figures for one district
type DistrictSummary struct {
	District         string  `json:"district"`
	Facilities       int     `json:"facilities"`
	Beds             int     `json:"beds"`
	OccupiedBeds     int     `json:"occupied_beds"`
	AverageOccupancy float64 `json:"average_occupancy"`
	Overloaded       int     `json:"overloaded"`
}

// CapacitySummary is an overview of the whole snapshot
type CapacitySummary struct {
	TotalFacilities       int               `json:"total_facilities"`
	OverloadedFacilities  int               `json:"overloaded_facilities"`
	UnderloadedFacilities int               `json:"underloaded_facilities"`
	TotalBeds             int               `json:"total_beds"`
	OccupiedBeds          int               `json:"occupied_beds"`
	AverageOccupancy      float64           `json:"average_occupancy"`
	Bands                 map[LoadBand]int  `json:"bands"`
	Districts             []DistrictSummary `json:"districts"`
}
