package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"flight_wb/internal/units"
	"flight_wb/internal/weather"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleMetar(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")
	m, err := s.weather.GetMETAR(r.Context(), icao)
	s.recordWeather("metar", err)
	if err != nil {
		writeWeatherError(w, icao, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleTaf(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")
	t, err := s.weather.GetTAF(r.Context(), icao)
	s.recordWeather("taf", err)
	if err != nil {
		writeWeatherError(w, icao, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleRunwayWind resolves the current METAR wind onto a runway heading.
// elevation_ft is optional and adds the pressure altitude.
func (s *Server) handleRunwayWind(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")

	// strconv keeps leading-zero headings such as 090 in base 10
	heading, err := strconv.Atoi(r.URL.Query().Get("heading"))
	if err != nil || heading < 1 || heading > 360 {
		writeJSONError(w, http.StatusBadRequest, "heading must be an integer between 1 and 360")
		return
	}

	var elevation *float64
	if raw := r.URL.Query().Get("elevation_ft"); raw != "" {
		ft, err := units.New[units.Feet](raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "elevation_ft must be a number")
			return
		}
		v := ft.Float()
		elevation = &v
	}

	m, err := s.weather.GetMETAR(r.Context(), icao)
	s.recordWeather("metar", err)
	if err != nil {
		writeWeatherError(w, icao, err)
		return
	}
	writeJSON(w, http.StatusOK, weather.RunwayWind(m, heading, elevation))
}

func (s *Server) recordWeather(kind string, err error) {
	switch {
	case err == nil:
		s.metrics.RecordWeather(kind, "ok")
	case errors.Is(err, weather.ErrStationNotFound):
		s.metrics.RecordWeather(kind, "not_found")
	default:
		s.metrics.RecordWeather(kind, "error")
	}
}

func writeWeatherError(w http.ResponseWriter, icao string, err error) {
	if errors.Is(err, weather.ErrStationNotFound) {
		writeJSONError(w, http.StatusNotFound, "station "+icao+" not found")
		return
	}
	slog.Warn("Weather lookup failed", "station", icao, "error", err)
	writeJSONError(w, http.StatusServiceUnavailable, "weather service unavailable")
}
