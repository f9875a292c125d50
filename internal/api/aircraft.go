package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"flight_wb/internal/database"
	"flight_wb/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

func (s *Server) handleListAircraft(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil || skip < 0 {
		writeJSONError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit <= 0 || limit > maxListLimit {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
		return
	}

	list, err := s.aircraft.List(skip, limit)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Aircraft{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAircraft(w http.ResponseWriter, r *http.Request) {
	var ac models.Aircraft
	if err := decodeJSON(r, &ac); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := s.aircraft.Create(&ac)
	if err != nil {
		s.writeAircraftError(w, r, err)
		return
	}
	s.refreshAircraftGauge()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAircraft(w http.ResponseWriter, r *http.Request) {
	id, ok := aircraftID(w, r)
	if !ok {
		return
	}
	ac, err := s.aircraft.GetByID(id)
	if err != nil {
		s.writeAircraftError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac)
}

func (s *Server) handleUpdateAircraft(w http.ResponseWriter, r *http.Request) {
	id, ok := aircraftID(w, r)
	if !ok {
		return
	}
	var upd models.AircraftUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ac, err := s.aircraft.Update(id, upd)
	if err != nil {
		s.writeAircraftError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac)
}

func (s *Server) handleDeleteAircraft(w http.ResponseWriter, r *http.Request) {
	id, ok := aircraftID(w, r)
	if !ok {
		return
	}
	if err := s.aircraft.Delete(id); err != nil {
		s.writeAircraftError(w, r, err)
		return
	}
	s.refreshAircraftGauge()
	w.WriteHeader(http.StatusNoContent)
}

// writeAircraftError maps repository errors onto HTTP statuses
func (s *Server) writeAircraftError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "aircraft not found")
	case errors.Is(err, database.ErrDuplicateRegistration), errors.Is(err, database.ErrInvalidAircraft):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeInternalError(w, r, err)
	}
}

func (s *Server) refreshAircraftGauge() {
	if s.metrics == nil {
		return
	}
	if n, err := s.aircraft.Count(); err == nil {
		s.metrics.SetAircraftProfiles(n)
	}
}

func aircraftID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid aircraft id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return cast.ToIntE(raw)
}
