package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/pkg/config"
	"github.com/zatekoja/healthcapacity/pkg/geo"
)

// RedirectionEngine computes redirection recommendations over an in-memory
// facility snapshot. It holds no snapshot state; every call is a pure
// function of its arguments and the configured thresholds.
type RedirectionEngine struct {
	cfg   config.RedirectionConfig
	table *CompatibilityTable
	now   func() time.Time
}

// NewRedirectionEngine creates an engine. A nil table selects the default grouping.
func NewRedirectionEngine(cfg config.RedirectionConfig, table *CompatibilityTable) *RedirectionEngine {
	if table == nil {
		table = DefaultCompatibilityTable()
	}
	return &RedirectionEngine{
		cfg:   cfg,
		table: table,
		now:   time.Now,
	}
}

// Config returns the thresholds the engine was built with
func (e *RedirectionEngine) Config() config.RedirectionConfig {
	return e.cfg
}

// IsCompatibleFacilityType reports whether patients can move between the two types
func (e *RedirectionEngine) IsCompatibleFacilityType(typeA, typeB string) bool {
	return e.table.IsCompatibleFacilityType(typeA, typeB)
}

// IsOverloaded reports whether occupancy is strictly above the overload threshold.
// A facility sitting exactly on the threshold is not overloaded.
func (e *RedirectionEngine) IsOverloaded(f *entities.FacilityStatistic) bool {
	return f.IsValid() && finite(f.OccupancyRate) && f.OccupancyRate > e.cfg.OverloadThreshold
}

// HasSpareCapacity reports whether occupancy is strictly below the spare capacity threshold
func (e *RedirectionEngine) HasSpareCapacity(f *entities.FacilityStatistic) bool {
	return f != nil && finite(f.OccupancyRate) && f.OccupancyRate < e.cfg.SpareCapacityThreshold
}

// evaluate applies the candidate pipeline to a single source/candidate pair.
// Both the forward and the reverse search go through here. sourceCap, when
// set, must be built around source with the configured radius.
func (e *RedirectionEngine) evaluate(source, candidate *entities.FacilityStatistic, sourceCap *geo.RadiusCap) (entities.AlternativeFacility, bool) {
	if !source.IsValid() || !candidate.IsValid() || candidate.ID == source.ID {
		return entities.AlternativeFacility{}, false
	}

	srcLat, srcLon, ok := source.Coordinates()
	if !ok {
		return entities.AlternativeFacility{}, false
	}
	lat, lon, ok := candidate.Coordinates()
	if !ok {
		return entities.AlternativeFacility{}, false
	}

	if !e.IsCompatibleFacilityType(candidate.FacilityType, source.FacilityType) {
		return entities.AlternativeFacility{}, false
	}
	if !e.HasSpareCapacity(candidate) || !candidate.CanReceivePatients() {
		return entities.AlternativeFacility{}, false
	}

	if sourceCap != nil && !sourceCap.MayContain(lat, lon) {
		return entities.AlternativeFacility{}, false
	}
	distance := geo.HaversineDistance(srcLat, srcLon, lat, lon)
	if distance > e.cfg.SearchRadiusKm {
		return entities.AlternativeFacility{}, false
	}

	return entities.AlternativeFacility{
		Facility:          candidate,
		DistanceKm:        distance,
		TravelTimeMinutes: geo.EstimateTravelTime(distance, e.cfg.AssumedSpeedKmh),
		AvailableBeds:     availableBeds(candidate),
		Score:             e.score(distance, candidate.OccupancyRate),
	}, true
}

// FindNearbyAlternatives returns every compatible facility with spare capacity
// inside the search radius, closest first. The result is never nil.
func (e *RedirectionEngine) FindNearbyAlternatives(source *entities.FacilityStatistic, facilities []*entities.FacilityStatistic) []entities.AlternativeFacility {
	alternatives := make([]entities.AlternativeFacility, 0)

	lat, lon, ok := source.Coordinates()
	if !ok || !source.IsValid() {
		return alternatives
	}
	sourceCap := geo.NewRadiusCap(lat, lon, e.cfg.SearchRadiusKm)

	for _, candidate := range facilities {
		if alt, ok := e.evaluate(source, candidate, &sourceCap); ok {
			alternatives = append(alternatives, alt)
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		a, b := alternatives[i], alternatives[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Facility.OccupancyRate != b.Facility.OccupancyRate {
			return a.Facility.OccupancyRate < b.Facility.OccupancyRate
		}
		if a.AvailableBeds != b.AvailableBeds {
			return a.AvailableBeds > b.AvailableBeds
		}
		return a.Facility.ID < b.Facility.ID
	})

	return alternatives
}

// BuildRedirectionRecommendations returns one record per overloaded facility,
// most loaded first. An empty, non-nil result means the system is balanced.
func (e *RedirectionEngine) BuildRedirectionRecommendations(facilities []*entities.FacilityStatistic) []entities.RedirectionRecord {
	return e.BuildRedirectionRecommendationsWithin(facilities, facilities)
}

// BuildRedirectionRecommendationsWithin builds records for the overloaded
// facilities in sources while drawing alternatives from pool. Callers use it
// to show a filtered subset of sources without hiding targets outside the filter.
func (e *RedirectionEngine) BuildRedirectionRecommendationsWithin(sources, pool []*entities.FacilityStatistic) []entities.RedirectionRecord {
	overloaded := make([]*entities.FacilityStatistic, 0)
	for _, f := range sources {
		if e.IsOverloaded(f) {
			overloaded = append(overloaded, f)
		}
	}

	sort.SliceStable(overloaded, func(i, j int) bool {
		if overloaded[i].OccupancyRate != overloaded[j].OccupancyRate {
			return overloaded[i].OccupancyRate > overloaded[j].OccupancyRate
		}
		return overloaded[i].ID < overloaded[j].ID
	})

	records := make([]entities.RedirectionRecord, 0, len(overloaded))
	for _, source := range overloaded {
		records = append(records, e.buildRecord(source, pool))
	}
	return records
}

func (e *RedirectionEngine) buildRecord(source *entities.FacilityStatistic, pool []*entities.FacilityStatistic) entities.RedirectionRecord {
	redirectCount := e.CalculateRedirectionCount(source)
	alternatives, unallocated := AllocateRedirections(redirectCount, e.FindNearbyAlternatives(source, pool))

	status := entities.AlternativeStatusFound
	if len(alternatives) == 0 {
		status = entities.AlternativeStatusNone
	}

	return entities.RedirectionRecord{
		Source:              source,
		Alternatives:        alternatives,
		RedirectCount:       redirectCount,
		RequiredBeds:        e.CalculateRequiredBeds(source),
		UnallocatedPatients: unallocated,
		Status:              status,
	}
}

// FindPotentialSources runs the search in reverse: starting from an
// under-loaded target it lists the overloaded facilities whose forward search
// would include the target. Closest first, then most loaded.
func (e *RedirectionEngine) FindPotentialSources(target *entities.FacilityStatistic, facilities []*entities.FacilityStatistic) *entities.ReverseSearchResult {
	result := &entities.ReverseSearchResult{
		Target:     target,
		Eligible:   e.CanAcceptRedirections(target),
		Candidates: make([]entities.SourceCandidate, 0),
	}
	if !result.Eligible {
		return result
	}

	for _, source := range facilities {
		if !e.IsOverloaded(source) {
			continue
		}
		alt, ok := e.evaluate(source, target, nil)
		if !ok {
			continue
		}
		result.Candidates = append(result.Candidates, entities.SourceCandidate{
			Facility:          source,
			DistanceKm:        alt.DistanceKm,
			TravelTimeMinutes: alt.TravelTimeMinutes,
			RedirectCount:     e.CalculateRedirectionCount(source),
		})
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Facility.OccupancyRate != b.Facility.OccupancyRate {
			return a.Facility.OccupancyRate > b.Facility.OccupancyRate
		}
		return a.Facility.ID < b.Facility.ID
	})

	return result
}

// CanAcceptRedirections reports whether target is an under-loaded facility
// that could appear in some forward search.
func (e *RedirectionEngine) CanAcceptRedirections(target *entities.FacilityStatistic) bool {
	return target.IsValid() && target.HasCoordinates() && target.CanReceivePatients() && e.HasSpareCapacity(target)
}

// SearchAlternatives wraps FindNearbyAlternatives for a single source and
// trims the list to the configured top N. Total keeps the untrimmed count.
func (e *RedirectionEngine) SearchAlternatives(source *entities.FacilityStatistic, facilities []*entities.FacilityStatistic, limit int) *entities.AlternativeSearchResult {
	all := e.FindNearbyAlternatives(source, facilities)
	if limit <= 0 {
		limit = e.cfg.TopAlternatives
	}

	shown := all
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	status := entities.AlternativeStatusFound
	if len(all) == 0 {
		status = entities.AlternativeStatusNone
	}

	return &entities.AlternativeSearchResult{
		Source:       source,
		Overloaded:   e.IsOverloaded(source),
		Alternatives: shown,
		Total:        len(all),
		Status:       status,
	}
}

// BuildReport runs the aggregator on the sources matching filter, with
// alternatives drawn from the whole snapshot.
func (e *RedirectionEngine) BuildReport(facilities []*entities.FacilityStatistic, filter entities.FacilityFilter) *entities.RecommendationReport {
	sources := filter.Apply(facilities)
	records := e.BuildRedirectionRecommendationsWithin(sources, facilities)

	status := entities.ReportStatusBalanced
	if len(records) > 0 {
		status = entities.ReportStatusOverloaded
	}

	return &entities.RecommendationReport{
		ID:                  uuid.New().String(),
		GeneratedAt:         e.now().UTC(),
		Status:              status,
		FacilitiesEvaluated: len(sources),
		Records:             records,
	}
}

// ClassifyLoad maps an occupancy ratio onto a load band
func (e *RedirectionEngine) ClassifyLoad(occupancy float64) entities.LoadBand {
	switch {
	case !finite(occupancy) || occupancy < e.cfg.SpareCapacityThreshold:
		return entities.LoadBandUnderloaded
	case occupancy < e.cfg.WarningThreshold:
		return entities.LoadBandNormal
	case occupancy <= e.cfg.OverloadThreshold:
		return entities.LoadBandElevated
	case occupancy <= e.cfg.HighThreshold:
		return entities.LoadBandHigh
	case occupancy <= e.cfg.SevereThreshold:
		return entities.LoadBandSevere
	default:
		return entities.LoadBandCritical
	}
}

// Summarize aggregates the snapshot into overview figures. Average occupancy
// is bed-weighted; facilities without beds count towards totals only.
func (e *RedirectionEngine) Summarize(facilities []*entities.FacilityStatistic) *entities.CapacitySummary {
	summary := &entities.CapacitySummary{
		Bands:     make(map[entities.LoadBand]int, len(entities.LoadBands)),
		Districts: make([]entities.DistrictSummary, 0),
	}
	for _, band := range entities.LoadBands {
		summary.Bands[band] = 0
	}

	districts := make(map[string]*entities.DistrictSummary)
	for _, f := range facilities {
		if !f.IsValid() {
			continue
		}

		summary.TotalFacilities++
		summary.Bands[e.ClassifyLoad(f.OccupancyRate)]++
		if e.IsOverloaded(f) {
			summary.OverloadedFacilities++
		}
		if e.HasSpareCapacity(f) {
			summary.UnderloadedFacilities++
		}

		beds := f.BedsDeployed
		if beds < 0 {
			beds = 0
		}
		occupied := f.OccupiedBeds()
		summary.TotalBeds += beds
		summary.OccupiedBeds += occupied

		name := strings.TrimSpace(f.District)
		d, ok := districts[name]
		if !ok {
			d = &entities.DistrictSummary{District: name}
			districts[name] = d
		}
		d.Facilities++
		d.Beds += beds
		d.OccupiedBeds += occupied
		if e.IsOverloaded(f) {
			d.Overloaded++
		}
	}

	summary.AverageOccupancy = ratio(summary.OccupiedBeds, summary.TotalBeds)
	for _, d := range districts {
		d.AverageOccupancy = ratio(d.OccupiedBeds, d.Beds)
		summary.Districts = append(summary.Districts, *d)
	}
	sort.Slice(summary.Districts, func(i, j int) bool {
		return summary.Districts[i].District < summary.Districts[j].District
	})

	return summary
}

func (e *RedirectionEngine) score(distanceKm, occupancy float64) float64 {
	w := e.cfg.DistanceWeight
	distanceTerm := 0.0
	if e.cfg.SearchRadiusKm > 0 {
		distanceTerm = distanceKm / e.cfg.SearchRadiusKm
	}
	return w*distanceTerm + (1-w)*occupancy
}

func availableBeds(f *entities.FacilityStatistic) int {
	if f.BedsDeployed <= 0 || !finite(f.OccupancyRate) {
		return 0
	}
	beds := int(math.Round(float64(f.BedsDeployed) * (1 - f.OccupancyRate)))
	if beds < 0 {
		return 0
	}
	return beds
}

func ratio(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
