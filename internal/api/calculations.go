package api

import (
	"net/http"

	"flight_wb/internal/massbalance"
	"flight_wb/internal/models"
	"flight_wb/internal/performance"
)

func (s *Server) handleMassBalance(w http.ResponseWriter, r *http.Request) {
	var req models.MassBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ac, err := s.aircraft.GetByID(req.AircraftID)
	if err != nil {
		s.writeAircraftError(w, r, err)
		return
	}

	resp := massbalance.NewService(ac, s.chart).Calculate(req)
	s.metrics.RecordMassBalance(resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	var req models.PerformanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ac, err := s.aircraft.GetByID(req.AircraftID)
	if err != nil {
		s.writeAircraftError(w, r, err)
		return
	}

	resp := performance.NewService(ac, s.baseline).Calculate(req)
	s.metrics.RecordPerformance(resp)
	writeJSON(w, http.StatusOK, resp)
}
