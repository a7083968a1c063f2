package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

// CapacityService is what the capacity handler needs from the application layer
type CapacityService interface {
	Facilities(ctx context.Context, filter entities.FacilityFilter) ([]*entities.FacilityStatistic, error)
	Recommendations(ctx context.Context, filter entities.FacilityFilter) (*entities.RecommendationReport, error)
	Alternatives(ctx context.Context, id int64, limit int) (*entities.AlternativeSearchResult, error)
	PotentialSources(ctx context.Context, id int64) (*entities.ReverseSearchResult, error)
	RequiredBeds(ctx context.Context, id int64) (*entities.BedSizingResult, error)
	Summary(ctx context.Context, filter entities.FacilityFilter) (*entities.CapacitySummary, error)
}

// CapacityHandler serves occupancy and redirection data
type CapacityHandler struct {
	service CapacityService
}

// NewCapacityHandler creates a new capacity handler
func NewCapacityHandler(service CapacityService) *CapacityHandler {
	return &CapacityHandler{service: service}
}

// FacilityListResponse is the body of GET /api/facilities
type FacilityListResponse struct {
	Facilities []*entities.FacilityStatistic `json:"facilities"`
	Count      int                           `json:"count"`
	Total      int                           `json:"total"`
}

// ListFacilities handles GET /api/facilities
func (h *CapacityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	facilities, err := h.service.Facilities(r.Context(), filterFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	total := len(facilities)
	if limit > 0 && len(facilities) > limit {
		facilities = facilities[:limit]
	}

	respondWithJSON(w, http.StatusOK, FacilityListResponse{
		Facilities: facilities,
		Count:      len(facilities),
		Total:      total,
	})
}

// GetAlternatives handles GET /api/facilities/{id}/alternatives
func (h *CapacityHandler) GetAlternatives(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFacilityID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	result, err := h.service.Alternatives(r.Context(), id, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetPotentialSources handles GET /api/facilities/{id}/potential-sources
func (h *CapacityHandler) GetPotentialSources(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFacilityID(w, r)
	if !ok {
		return
	}

	result, err := h.service.PotentialSources(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetRequiredBeds handles GET /api/facilities/{id}/required-beds
func (h *CapacityHandler) GetRequiredBeds(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFacilityID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RequiredBeds(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetRedirections handles GET /api/redirections. The optional limit trims
// the alternatives shown per record.
func (h *CapacityHandler) GetRedirections(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	report, err := h.service.Recommendations(r.Context(), filterFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if limit > 0 {
		for i := range report.Records {
			if len(report.Records[i].Alternatives) > limit {
				report.Records[i].Alternatives = report.Records[i].Alternatives[:limit]
			}
		}
	}
	respondWithJSON(w, http.StatusOK, report)
}

// GetSummary handles GET /api/capacity/summary
func (h *CapacityHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), filterFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func filterFromQuery(r *http.Request) entities.FacilityFilter {
	q := r.URL.Query()
	return entities.FacilityFilter{
		District:     q.Get("district"),
		FacilityType: q.Get("type"),
		BedProfile:   q.Get("profile"),
		Search:       q.Get("search"),
	}
}

func parseFacilityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "facility id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		status, message = http.StatusNotFound, appErrorMessage(err)
	case apperrors.ErrorTypeValidation:
		status, message = http.StatusBadRequest, appErrorMessage(err)
	case apperrors.ErrorTypeExternal:
		status, message = http.StatusBadGateway, "facility statistics are unavailable"
	}

	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}
	respondWithError(w, status, message)
}

func appErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
