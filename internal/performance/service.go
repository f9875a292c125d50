package performance

import (
	"fmt"
	"log/slog"

	"flight_wb/internal/models"
	"flight_wb/internal/units"
)

// Service computes takeoff and landing performance for one aircraft.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	aircraft *models.Aircraft
	core     *Core
	profiles map[models.ProfileType]*models.PerformanceProfile
}

// NewService creates a Service using the given Mode B reference values
func NewService(ac *models.Aircraft, baseline Baseline) *Service {
	return &Service{
		aircraft: ac,
		core:     NewCore(ac, baseline),
		profiles: ac.Profiles(),
	}
}

type phaseResult struct {
	Distances
	source models.CalculationSource
}

// Calculate runs both phases. Missing or unusable table data falls back to
// Mode B with a warning; nothing in the calculation returns an error.
func (s *Service) Calculate(req models.PerformanceRequest) models.PerformanceResponse {
	var warnings []string

	da := DensityAltitude(req.PressureAltitude, req.Temperature)

	to := s.phase(models.ProfileTakeoff, req, da, &warnings)
	ldg := s.phase(models.ProfileLanding, req, da, &warnings)

	if to.source != ldg.source {
		warnings = append(warnings, fmt.Sprintf("Takeoff uses %s data but landing uses %s; the phases are not computed from the same source.", to.source, ldg.source))
	}

	warnings = append(warnings, GlobalWarnings(req.WindComponent)...)

	resp := models.PerformanceResponse{
		DensityAltitude:        da,
		TakeoffGroundRoll:      to.GroundRoll,
		TakeoffDistance50ft:    to.Total50ft,
		TakeoffGroundRollRaw:   to.GroundRollRaw,
		TakeoffDistance50ftRaw: to.Total50ftRaw,
		LandingGroundRoll:      ldg.GroundRoll,
		LandingDistance50ft:    ldg.Total50ft,
		LandingGroundRollRaw:   ldg.GroundRollRaw,
		LandingDistance50ftRaw: ldg.Total50ftRaw,
		RateOfClimb:            s.rateOfClimb(req, &warnings),
		CorrectionsApplied:     dedupe(append(to.Corrections, ldg.Corrections...)),
		CalculationSource:      to.source,
		Warnings:               dedupe(warnings),
	}

	slog.Debug("Performance computed",
		"registration", s.aircraft.Registration,
		"density_altitude_ft", da,
		"source", resp.CalculationSource,
		"takeoff_roll_m", resp.TakeoffGroundRoll,
		"landing_roll_m", resp.LandingGroundRoll,
	)

	return resp
}

func (s *Service) phase(phase models.ProfileType, req models.PerformanceRequest, da units.Feet, warnings *[]string) phaseResult {
	source := models.SourceModeB
	var roll, total float64

	if p := s.profiles[phase]; p != nil && p.DataTables != nil {
		r, t, err := s.core.ModeA(p.DataTables, req.Weight, req.PressureAltitude, req.Temperature)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("Mode A data incomplete for %s (%v), falling back to Mode B (FSM 3/75).", phase, err))
		} else {
			roll, total = r, t
			source = models.SourceModeA
		}
	}

	if source == models.SourceModeB {
		roll, total = s.core.ModeB(req.Weight, phase)
	}

	d := ApplyCorrections(roll, total, Conditions{
		Phase:           phase,
		Wind:            req.WindComponent,
		Surface:         req.RunwayCondition,
		SlopePercent:    req.RunwaySlopePercent,
		DensityAltitude: da,
	}, source == models.SourceModeB)

	return phaseResult{Distances: d, source: source}
}

func (s *Service) rateOfClimb(req models.PerformanceRequest, warnings *[]string) *float64 {
	p := s.profiles[models.ProfileClimb]
	if p == nil || p.DataTables == nil || len(p.DataTables.RateOfClimb) == 0 {
		return nil
	}
	roc, err := s.core.RateOfClimb(p.DataTables, req.Weight, req.PressureAltitude, req.Temperature)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("Climb data unavailable (%v).", err))
		return nil
	}
	return &roc
}

// dedupe drops repeated strings, keeping first occurrences in order.
func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
