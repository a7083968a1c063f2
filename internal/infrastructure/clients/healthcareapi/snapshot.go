package healthcareapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

// FileSource serves facility statistics from a JSON export of the API.
// The file holds either a bare array of records or a single results page.
type FileSource struct {
	path       string
	periodDays int
}

// NewFileSource creates a snapshot source backed by path
func NewFileSource(path string, reportingPeriodDays int) *FileSource {
	return &FileSource{path: path, periodDays: reportingPeriodDays}
}

// ListFacilityStatistics implements repositories.FacilityStatisticsSource.
// The file is re-read on every call.
func (s *FileSource) ListFacilityStatistics(ctx context.Context) ([]*entities.FacilityStatistic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to read snapshot %s", s.path), err)
	}
	facilities, err := DecodeFacilityStatistics(data, s.periodDays)
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to decode snapshot %s", s.path), err)
	}
	return facilities, nil
}

// DecodeFacilityStatistics parses records in the API wire format with the
// same leniency as the client.
func DecodeFacilityStatistics(data []byte, periodDays int) ([]*entities.FacilityStatistic, error) {
	var records []facilityStatisticRecord

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p page[facilityStatisticRecord]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, err
		}
		records = p.Results
	} else if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}

	out := make([]*entities.FacilityStatistic, 0, len(records))
	for _, r := range records {
		if f, ok := r.toEntity(periodDays); ok {
			out = append(out, f)
		}
	}
	return out, nil
}
