package healthcareapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
	"github.com/zatekoja/healthcapacity/pkg/config"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
	"github.com/zatekoja/healthcapacity/pkg/retry"
)

const (
	facilityStatisticsPath        = "/facility-statistics/"
	hospitalizationStatisticsPath = "/hospitalization-statistics/"
	cityOrganizationBedsPath      = "/city-organization-beds/"

	maxErrorBody = 512
)

// Client reads the healthcare statistics REST API. Every list endpoint
// returns {"results": [...], "next": "..."} and is followed to the last page.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
	maxPages   int
	retry      retry.Config
	periodDays int
}

// NewClient creates a statistics API client
func NewClient(cfg config.HealthcareAPIConfig, reportingPeriodDays int) *Client {
	retryCfg := retry.DefaultConfig()
	if cfg.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.RetryAttempts
	}
	retryCfg.OnRetry = func(attempt int, err error, nextDelay time.Duration) {
		observability.GetLogger().Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Msg("Statistics API request failed, retrying")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		pageSize:   cfg.PageSize,
		maxPages:   cfg.MaxPages,
		retry:      retryCfg,
		periodDays: reportingPeriodDays,
	}
}

// WithRetryConfig replaces the backoff policy, keeping the retry logger
func (c *Client) WithRetryConfig(cfg retry.Config) *Client {
	if cfg.OnRetry == nil {
		cfg.OnRetry = c.retry.OnRetry
	}
	c.retry = cfg
	return c
}

// GetFacilityStatistics returns every facility occupancy record. Records
// without an id are dropped; a missing occupancy is derived from bed-days.
func (c *Client) GetFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	records, err := fetchAll[facilityStatisticRecord](ctx, c, facilityStatisticsPath)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.FacilityStatistic, 0, len(records))
	for _, r := range records {
		if f, ok := r.toEntity(c.periodDays); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// ListFacilityStatistics implements repositories.FacilityStatisticsSource
func (c *Client) ListFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	return c.GetFacilityStatistics(ctx)
}

// GetHospitalizationStatistics returns admissions statistics per organisation
func (c *Client) GetHospitalizationStatistics(ctx context.Context) ([]*entities.HospitalizationStatistic, error) {
	records, err := fetchAll[hospitalizationRecord](ctx, c, hospitalizationStatisticsPath)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.HospitalizationStatistic, 0, len(records))
	for _, r := range records {
		if r.ID == nil || *r.ID <= 0 {
			continue
		}
		out = append(out, &entities.HospitalizationStatistic{
			ID:                    int64(*r.ID),
			MedicalOrganization:   strings.TrimSpace(r.MedicalOrganization),
			District:              strings.TrimSpace(r.District),
			BedProfile:            strings.TrimSpace(r.BedProfile),
			AdmittedPatients:      int(r.AdmittedPatients),
			DischargedPatients:    int(r.DischargedPatients),
			DeceasedPatients:      int(r.DeceasedPatients),
			TotalInpatientBedDays: int(r.TotalInpatientBedDays),
		})
	}
	return out, nil
}

// ListHospitalizationStatistics implements repositories.HospitalizationStatisticsSource
func (c *Client) ListHospitalizationStatistics(ctx context.Context) ([]*entities.HospitalizationStatistic, error) {
	return c.GetHospitalizationStatistics(ctx)
}

// GetCityOrganizationBeds returns nominal bed counts of city organisations
func (c *Client) GetCityOrganizationBeds(ctx context.Context) ([]*entities.CityOrganizationBeds, error) {
	records, err := fetchAll[cityOrganizationBedsRecord](ctx, c, cityOrganizationBedsPath)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.CityOrganizationBeds, 0, len(records))
	for _, r := range records {
		if r.ID == nil || *r.ID <= 0 {
			continue
		}
		out = append(out, &entities.CityOrganizationBeds{
			ID:                  int64(*r.ID),
			MedicalOrganization: strings.TrimSpace(r.MedicalOrganization),
			District:            strings.TrimSpace(r.District),
			BedProfile:          strings.TrimSpace(r.BedProfile),
			Beds:                int(r.Beds),
		})
	}
	return out, nil
}

// ListCityOrganizationBeds implements repositories.CityOrganizationBedsSource
func (c *Client) ListCityOrganizationBeds(ctx context.Context) ([]*entities.CityOrganizationBeds, error) {
	return c.GetCityOrganizationBeds(ctx)
}

type page[T any] struct {
	Results []T     `json:"results"`
	Next    *string `json:"next"`
}

func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	endpoint, err := c.firstPageURL(path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid statistics API url: %v", err))
	}

	var all []T
	seen := make(map[string]bool)
	for pages := 0; endpoint != ""; pages++ {
		if c.maxPages > 0 && pages >= c.maxPages {
			observability.LoggerFromContext(ctx).Warn().
				Str("path", path).
				Int("max_pages", c.maxPages).
				Msg("Statistics API pagination truncated")
			break
		}
		if seen[endpoint] {
			break
		}
		seen[endpoint] = true

		var p page[T]
		err := retry.Do(ctx, c.retry, "statistics api", func(ctx context.Context) error {
			p = page[T]{}
			return c.doJSON(ctx, endpoint, &p)
		})
		if err != nil {
			return nil, apperrors.NewExternalError(fmt.Sprintf("failed to fetch %s", path), err)
		}
		all = append(all, p.Results...)

		endpoint, err = c.nextPageURL(endpoint, p.Next)
		if err != nil {
			return nil, apperrors.NewExternalError("invalid pagination link", err)
		}
	}

	if all == nil {
		all = make([]T, 0)
	}
	return all, nil
}

func (c *Client) firstPageURL(path string) (string, error) {
	parsed, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	if c.pageSize > 0 {
		query := parsed.Query()
		query.Set("page_size", strconv.Itoa(c.pageSize))
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

// nextPageURL resolves a possibly relative next link against the current page
func (c *Client) nextPageURL(current string, next *string) (string, error) {
	if next == nil || strings.TrimSpace(*next) == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(*next))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) doJSON(ctx context.Context, endpoint string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := fmt.Errorf("statistics api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return statusErr
		}
		return retry.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("decoding statistics api response: %w", err))
	}

	return nil
}
