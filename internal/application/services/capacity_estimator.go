package services

import (
	"math"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
)

// floorEpsilon absorbs float noise such as 180*0.85 = 152.99999999999997.
const floorEpsilon = 1e-9

// CalculateRequiredBeds sizes the bed count the source needs to run at the
// target occupancy without moving anyone.
func (e *RedirectionEngine) CalculateRequiredBeds(source *entities.FacilityStatistic) entities.BedRequirement {
	target := e.cfg.TargetOccupancy
	if source == nil || source.BedsDeployed <= 0 || target <= 0 {
		return entities.BedRequirement{}
	}

	occupied := source.OccupiedBeds()
	required := int(math.Ceil(float64(occupied)/target - floorEpsilon))
	additional := required - source.BedsDeployed
	if additional < 0 {
		additional = 0
	}

	return entities.BedRequirement{
		OccupiedBeds:      occupied,
		RequiredTotalBeds: required,
		AdditionalBeds:    additional,
	}
}

// CalculateRedirectionCount estimates how many patients must leave the source
// for it to reach the target occupancy on its current beds.
func (e *RedirectionEngine) CalculateRedirectionCount(source *entities.FacilityStatistic) int {
	if source == nil || source.BedsDeployed <= 0 || e.cfg.TargetOccupancy <= 0 {
		return 0
	}

	capacityAtTarget := int(math.Floor(float64(source.BedsDeployed)*e.cfg.TargetOccupancy + floorEpsilon))
	count := source.OccupiedBeds() - capacityAtTarget
	if count < 0 {
		return 0
	}
	return count
}

// AllocateRedirections spreads count patients over the ranked alternatives,
// filling each up to its available beds. It sets SuggestedPatients on the
// returned copy and reports the patients nobody could take.
func AllocateRedirections(count int, alternatives []entities.AlternativeFacility) ([]entities.AlternativeFacility, int) {
	allocated := make([]entities.AlternativeFacility, len(alternatives))
	copy(allocated, alternatives)

	remaining := count
	if remaining < 0 {
		remaining = 0
	}

	for i := range allocated {
		allocated[i].SuggestedPatients = 0
		if remaining == 0 {
			continue
		}
		take := allocated[i].AvailableBeds
		if take > remaining {
			take = remaining
		}
		if take < 0 {
			take = 0
		}
		allocated[i].SuggestedPatients = take
		remaining -= take
	}

	return allocated, remaining
}
