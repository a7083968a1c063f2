package repositories

import (
	"context"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
)

// FacilityStatisticsSource loads the current facility occupancy snapshot.
// Implementations return records with a positive ID only.
type FacilityStatisticsSource interface {
	ListFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error)
}

// HospitalizationStatisticsSource loads admissions statistics
type HospitalizationStatisticsSource interface {
	ListHospitalizationStatistics(ctx context.Context) ([]*entities.HospitalizationStatistic, error)
}

// CityOrganizationBedsSource loads nominal bed counts of city organisations
type CityOrganizationBedsSource interface {
	ListCityOrganizationBeds(ctx context.Context) ([]*entities.CityOrganizationBeds, error)
}
