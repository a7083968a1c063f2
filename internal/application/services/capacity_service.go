package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/internal/domain/repositories"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

// CapacityService loads a fresh snapshot per call and runs the redirection
// engine on it. Filters narrow the facilities shown, never the pool of targets.
type CapacityService struct {
	source  repositories.FacilityStatisticsSource
	engine  *RedirectionEngine
	metrics *observability.Metrics
}

// NewCapacityService creates a capacity service. metrics may be nil.
func NewCapacityService(source repositories.FacilityStatisticsSource, engine *RedirectionEngine, metrics *observability.Metrics) *CapacityService {
	return &CapacityService{
		source:  source,
		engine:  engine,
		metrics: metrics,
	}
}

// Engine returns the engine the service runs
func (s *CapacityService) Engine() *RedirectionEngine {
	return s.engine
}

func (s *CapacityService) snapshot(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	facilities, err := s.source.ListFacilityStatistics(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Failed to load facility statistics")
		return nil, err
	}

	valid := make([]*entities.FacilityStatistic, 0, len(facilities))
	for _, f := range facilities {
		if f.IsValid() {
			valid = append(valid, f)
		}
	}
	return valid, nil
}

func findFacility(facilities []*entities.FacilityStatistic, id int64) (*entities.FacilityStatistic, error) {
	for _, f := range facilities {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %d not found", id))
}

// Facilities returns the snapshot records matching filter
func (s *CapacityService) Facilities(ctx context.Context, filter entities.FacilityFilter) ([]*entities.FacilityStatistic, error) {
	ctx, span := observability.StartSpan(ctx, "CapacityService.Facilities")
	defer span.End()

	facilities, err := s.snapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return filter.Apply(facilities), nil
}

// Recommendations builds a report for the overloaded facilities matching filter
func (s *CapacityService) Recommendations(ctx context.Context, filter entities.FacilityFilter) (*entities.RecommendationReport, error) {
	ctx, span := observability.StartSpan(ctx, "CapacityService.Recommendations")
	defer span.End()

	facilities, err := s.snapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	report := s.engine.BuildReport(facilities, filter)

	unallocated := 0
	for _, r := range report.Records {
		unallocated += r.UnallocatedPatients
	}
	observability.RecordReport(ctx, s.metrics, len(report.Records), unallocated)
	observability.SetSpanAttributes(span,
		attribute.String("report.id", report.ID),
		attribute.Int("report.overloaded", len(report.Records)),
		attribute.Int("report.evaluated", report.FacilitiesEvaluated),
	)

	observability.LoggerFromContext(ctx).Info().
		Str("report_id", report.ID).
		Str("status", string(report.Status)).
		Int("evaluated", report.FacilitiesEvaluated).
		Int("overloaded", len(report.Records)).
		Int("unallocated_patients", unallocated).
		Msg("Built redirection recommendations")

	return report, nil
}

// Alternatives searches targets for one facility. limit <= 0 uses the configured top N.
func (s *CapacityService) Alternatives(ctx context.Context, id int64, limit int) (*entities.AlternativeSearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "CapacityService.Alternatives")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.Int64("facility.id", id))

	facilities, err := s.snapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	source, err := findFacility(facilities, id)
	if err != nil {
		return nil, err
	}
	return s.engine.SearchAlternatives(source, facilities, limit), nil
}

// PotentialSources lists overloaded facilities that could send patients to id
func (s *CapacityService) PotentialSources(ctx context.Context, id int64) (*entities.ReverseSearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "CapacityService.PotentialSources")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.Int64("facility.id", id))

	facilities, err := s.snapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	target, err := findFacility(facilities, id)
	if err != nil {
		return nil, err
	}
	return s.engine.FindPotentialSources(target, facilities), nil
}

// RequiredBeds sizes the beds facility id needs at the target occupancy
func (s *CapacityService) RequiredBeds(ctx context.Context, id int64) (*entities.BedSizingResult, error) {
	ctx, span := observability.StartSpan(ctx, "CapacityService.RequiredBeds")
	defer span.End()

	facilities, err := s.snapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	facility, err := findFacility(facilities, id)
	if err != nil {
		return nil, err
	}
	return &entities.BedSizingResult{
		Facility:      facility,
		RequiredBeds:  s.engine.CalculateRequiredBeds(facility),
		RedirectCount: s.engine.CalculateRedirectionCount(facility),
	}, nil
}

// Summary aggregates the facilities matching filter
func (s *CapacityService) Summary(ctx context.Context, filter entities.FacilityFilter) (*entities.CapacitySummary, error) {
	ctx, span := observability.StartSpan(ctx, "CapacityService.Summary")
	defer span.End()

	facilities, err := s.snapshot(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return s.engine.Summarize(filter.Apply(facilities)), nil
}
