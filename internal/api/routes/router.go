package routes

import (
	"net/http"

	"github.com/zatekoja/healthcapacity/internal/api/handlers"
	"github.com/zatekoja/healthcapacity/internal/api/middleware"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	capacity       *handlers.CapacityHandler
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. metrics may be nil.
func NewRouter(capacity *handlers.CapacityHandler, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		capacity:       capacity,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.capacity.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}/alternatives", r.capacity.GetAlternatives)
	r.mux.HandleFunc("GET /api/facilities/{id}/potential-sources", r.capacity.GetPotentialSources)
	r.mux.HandleFunc("GET /api/facilities/{id}/required-beds", r.capacity.GetRequiredBeds)

	// Redirection endpoints
	r.mux.HandleFunc("GET /api/redirections", r.capacity.GetRedirections)
	r.mux.HandleFunc("GET /api/capacity/summary", r.capacity.GetSummary)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
