package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

const facilityStatisticsTable = "facility_statistics"

// FacilityStatisticAdapter reads facility statistics from a SQL mirror of the
// upstream API. It never writes.
type FacilityStatisticAdapter struct {
	db         *sql.DB
	builder    *goqu.Database
	periodDays int
	metrics    *observability.Metrics
}

// NewFacilityStatisticAdapter creates a read-only statistics source over db
func NewFacilityStatisticAdapter(db *sql.DB, reportingPeriodDays int, metrics *observability.Metrics) *FacilityStatisticAdapter {
	return &FacilityStatisticAdapter{
		db:         db,
		builder:    goqu.New("postgres", db),
		periodDays: reportingPeriodDays,
		metrics:    metrics,
	}
}

// ListFacilityStatistics returns every row with a positive id, ordered by id
func (a *FacilityStatisticAdapter) ListFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	start := time.Now()

	query, args, err := a.builder.Select(
		"id", "medical_organization", "district", "facility_type", "bed_profile",
		"occupancy_rate_percent", "beds_deployed_withdrawn_for_rep",
		"beds_deployed_withdrawn_for_rep_avg_annual", "total_inpatient_bed_days",
		"latitude", "longitude",
	).From(facilityStatisticsTable).
		Where(goqu.C("id").Gt(0)).
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		observability.RecordSourceFetch(ctx, a.metrics, "database", time.Since(start), err)
		return nil, apperrors.NewExternalError("failed to query facility statistics", err)
	}
	defer rows.Close()

	facilities := make([]*entities.FacilityStatistic, 0)
	for rows.Next() {
		f, err := a.scan(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility statistic", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read facility statistics", err)
	}

	observability.RecordSourceFetch(ctx, a.metrics, "database", time.Since(start), nil)
	return facilities, nil
}

func (a *FacilityStatisticAdapter) scan(rows *sql.Rows) (*entities.FacilityStatistic, error) {
	var (
		f                               entities.FacilityStatistic
		district, facilityType, profile sql.NullString
		occupancy, latitude, longitude  sql.NullFloat64
		beds, bedsAvgAnnual, bedDays    sql.NullInt64
	)

	err := rows.Scan(
		&f.ID,
		&f.MedicalOrganization,
		&district,
		&facilityType,
		&profile,
		&occupancy,
		&beds,
		&bedsAvgAnnual,
		&bedDays,
		&latitude,
		&longitude,
	)
	if err != nil {
		return nil, err
	}

	f.District = district.String
	f.FacilityType = facilityType.String
	f.BedProfile = profile.String
	f.BedsDeployed = int(beds.Int64)
	f.BedsDeployedAvgAnnual = int(bedsAvgAnnual.Int64)
	f.TotalInpatientBedDays = int(bedDays.Int64)

	if occupancy.Valid {
		f.OccupancyRate = occupancy.Float64
	} else {
		denominator := f.BedsDeployedAvgAnnual
		if denominator <= 0 {
			denominator = f.BedsDeployed
		}
		f.OccupancyRate = entities.OccupancyFromBedDays(f.TotalInpatientBedDays, denominator, a.periodDays)
	}

	if latitude.Valid && longitude.Valid {
		lat, lon := latitude.Float64, longitude.Float64
		f.Latitude, f.Longitude = &lat, &lon
	}

	return &f, nil
}
