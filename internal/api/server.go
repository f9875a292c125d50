// Package api exposes aircraft profiles, calculations and weather over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"flight_wb/internal/database"
	"flight_wb/internal/massbalance"
	"flight_wb/internal/models"
	"flight_wb/internal/observability"
	"flight_wb/internal/performance"

	"github.com/go-chi/chi/v5"
)

// WeatherClient fetches decoded METAR and TAF reports
type WeatherClient interface {
	GetMETAR(ctx context.Context, icao string) (*models.Metar, error)
	GetTAF(ctx context.Context, icao string) (*models.Taf, error)
}

// Options wires the router to its collaborators. Chart may be nil to disable
// CG chart rendering; Metrics may be nil to disable instrumentation.
type Options struct {
	Aircraft    database.AircraftRepository
	Weather     WeatherClient
	Metrics     *observability.Collector
	Chart       massbalance.ChartRenderer
	Baseline    performance.Baseline
	CORSOrigins []string
}

type Server struct {
	aircraft database.AircraftRepository
	weather  WeatherClient
	metrics  *observability.Collector
	chart    massbalance.ChartRenderer
	baseline performance.Baseline
	origins  []string
}

// New constructs the HTTP router
func New(opts Options) http.Handler {
	s := &Server{
		aircraft: opts.Aircraft,
		weather:  opts.Weather,
		metrics:  opts.Metrics,
		chart:    opts.Chart,
		baseline: opts.Baseline,
		origins:  opts.CORSOrigins,
	}

	r := chi.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.metrics.Middleware)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/aircraft", func(r chi.Router) {
			r.Get("/", s.handleListAircraft)
			r.Post("/", s.handleCreateAircraft)
			r.Get("/{id}", s.handleGetAircraft)
			r.Put("/{id}", s.handleUpdateAircraft)
			r.Delete("/{id}", s.handleDeleteAircraft)
		})

		r.Post("/calculations/mass-balance", s.handleMassBalance)
		r.Post("/calculations/performance", s.handlePerformance)

		r.Get("/weather/metar/{icao}", s.handleMetar)
		r.Get("/weather/taf/{icao}", s.handleTaf)
		r.Get("/weather/runway-wind/{icao}", s.handleRunwayWind)
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "flight_wb",
		"status":  "running",
		"health":  "/health",
		"api":     "/api/v1",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decodeJSON reads the request body into v, rejecting trailing garbage
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeInternalError logs err and hides it from the client
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusInternalServerError, "")
}

// corsMiddleware allows the configured origins. A "*" entry allows any origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	return slices.ContainsFunc(s.origins, func(o string) bool {
		return o == "*" || strings.EqualFold(o, origin)
	})
}
