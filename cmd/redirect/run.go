package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zatekoja/healthcapacity/internal/application/services"
	"github.com/zatekoja/healthcapacity/internal/domain/repositories"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/clients/healthcareapi"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
	"github.com/zatekoja/healthcapacity/pkg/config"
)

const (
	datasetFacilities       = "facilities"
	datasetHospitalizations = "hospitalizations"
	datasetCityBeds         = "city-beds"
)

func initLogging(out io.Writer, verbose bool) {
	observability.InitLoggerWithWriter("redirect", "development", out)
	if !verbose && os.Getenv("LOG_LEVEL") == "" {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("facility id must be a positive integer, got %q", raw)
	}
	return id, nil
}

// loadConfig reads the environment configuration and applies flag overrides
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if opts.apiURL != "" {
		cfg.HealthcareAPI.BaseURL = opts.apiURL
	}
	if opts.tablePath != "" {
		cfg.Redirection.CompatibilityTablePath = opts.tablePath
	}
	if opts.radiusKm > 0 {
		cfg.Redirection.SearchRadiusKm = opts.radiusKm
	}
	return cfg, nil
}

func newService(opts *options) (*services.CapacityService, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	var table *services.CompatibilityTable
	if path := cfg.Redirection.CompatibilityTablePath; path != "" {
		if table, err = services.LoadCompatibilityTable(path); err != nil {
			return nil, fmt.Errorf("loading compatibility table: %w", err)
		}
	}

	var source repositories.FacilityStatisticsSource
	if opts.file != "" {
		source = healthcareapi.NewFileSource(opts.file, cfg.Snapshot.ReportingPeriodDays)
	} else {
		source = healthcareapi.NewClient(cfg.HealthcareAPI, cfg.Snapshot.ReportingPeriodDays)
	}

	return services.NewCapacityService(source, services.NewRedirectionEngine(cfg.Redirection, table), nil), nil
}

func runRecommend(ctx context.Context, out io.Writer, opts *options) error {
	svc, err := newService(opts)
	if err != nil {
		return err
	}
	report, err := svc.Recommendations(ctx, opts.filter)
	if err != nil {
		return err
	}

	if opts.limit > 0 {
		for i := range report.Records {
			if len(report.Records[i].Alternatives) > opts.limit {
				report.Records[i].Alternatives = report.Records[i].Alternatives[:opts.limit]
			}
		}
	}

	if opts.jsonOut {
		return writeJSON(out, report)
	}
	printReport(out, report)
	return nil
}

func runAlternatives(ctx context.Context, out io.Writer, opts *options, id int64) error {
	svc, err := newService(opts)
	if err != nil {
		return err
	}
	result, err := svc.Alternatives(ctx, id, opts.limit)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(out, result)
	}
	printAlternatives(out, result)
	return nil
}

func runSources(ctx context.Context, out io.Writer, opts *options, id int64) error {
	svc, err := newService(opts)
	if err != nil {
		return err
	}
	result, err := svc.PotentialSources(ctx, id)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(out, result)
	}
	printSources(out, result)
	return nil
}

func runBeds(ctx context.Context, out io.Writer, opts *options, id int64) error {
	svc, err := newService(opts)
	if err != nil {
		return err
	}
	result, err := svc.RequiredBeds(ctx, id)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(out, result)
	}
	printBeds(out, result, svc.Engine().Config().TargetOccupancy)
	return nil
}

func runSummary(ctx context.Context, out io.Writer, opts *options) error {
	svc, err := newService(opts)
	if err != nil {
		return err
	}
	summary, err := svc.Summary(ctx, opts.filter)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(out, summary)
	}
	printSummary(out, summary)
	return nil
}

func runFetch(ctx context.Context, out io.Writer, opts *options, dataset string) error {
	if opts.file != "" {
		return fmt.Errorf("fetch reads from the API and cannot be combined with --file")
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	client := healthcareapi.NewClient(cfg.HealthcareAPI, cfg.Snapshot.ReportingPeriodDays)
	return fetchDataset(ctx, out, opts, dataset, fetchSources{
		facilities:       client,
		hospitalizations: client,
		cityBeds:         client,
	})
}

// fetchSources are the upstream datasets the fetch command can dump
type fetchSources struct {
	facilities       repositories.FacilityStatisticsSource
	hospitalizations repositories.HospitalizationStatisticsSource
	cityBeds         repositories.CityOrganizationBedsSource
}

func fetchDataset(ctx context.Context, out io.Writer, opts *options, dataset string, src fetchSources) error {
	switch dataset {
	case datasetFacilities:
		facilities, err := src.facilities.ListFacilityStatistics(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, opts.filter.Apply(facilities))
	case datasetHospitalizations:
		stats, err := src.hospitalizations.ListHospitalizationStatistics(ctx)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			return writeJSON(out, stats)
		}
		printHospitalizations(out, stats)
		return nil
	case datasetCityBeds:
		beds, err := src.cityBeds.ListCityOrganizationBeds(ctx)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			return writeJSON(out, beds)
		}
		printCityBeds(out, beds)
		return nil
	default:
		return fmt.Errorf("unknown dataset %q: want %s, %s or %s",
			dataset, datasetFacilities, datasetHospitalizations, datasetCityBeds)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
