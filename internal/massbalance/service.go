package massbalance

import (
	"log/slog"

	"flight_wb/internal/models"
)

// Service runs a complete mass & balance calculation for one aircraft.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	aircraft *models.Aircraft
	core     *Core
	logic    *Logic
}

// NewService creates a Service. renderer may be nil.
func NewService(ac *models.Aircraft, renderer ChartRenderer) *Service {
	return &Service{
		aircraft: ac,
		core:     NewCore(ac),
		logic:    NewLogic(ac, renderer),
	}
}

// Calculate computes all phases, validates them and assembles the response.
// Out-of-limits conditions are reported through the limit flags and warnings.
func (s *Service) Calculate(req models.MassBalanceRequest) models.MassBalanceResponse {
	phases := s.core.ComputePhases(req.WeightInputs, req.FuelTanks, req.FuelLiters, req.TripFuelLiters)
	v := s.core.ValidatePhases(phases)

	points := []models.CGPoint{
		cgPoint(models.LabelZeroFuel, phases.ZeroFuel, v.ZeroFuel),
		cgPoint(models.LabelTakeoff, phases.Takeoff, v.Takeoff),
		cgPoint(models.LabelLanding, phases.Landing, v.Landing),
	}

	slog.Debug("Mass and balance computed",
		"registration", s.aircraft.Registration,
		"zero_fuel_kg", phases.ZeroFuel.Weight,
		"takeoff_kg", phases.Takeoff.Weight,
		"takeoff_arm_m", phases.Takeoff.Arm,
		"landing_kg", phases.Landing.Weight,
		"landing_arm_m", phases.Landing.Arm,
	)

	return models.MassBalanceResponse{
		EmptyWeight:        s.aircraft.EmptyWeight,
		Payload:            phases.Payload,
		FuelWeight:         phases.FuelWeight,
		TakeoffWeight:      phases.Takeoff.Weight,
		LandingWeight:      phases.Landing.Weight,
		ZeroFuelWeight:     phases.ZeroFuel.Weight,
		CGPoints:           points,
		WithinWeightLimits: s.withinWeightLimits(phases),
		WithinCGLimits:     v.Takeoff.WithinLimits && v.Landing.WithinLimits,
		Warnings:           s.logic.Warnings(v, phases, req.WeightInputs),
		ChartImageBase64:   s.logic.Chart(points, v.Envelope),
	}
}

// withinWeightLimits checks takeoff against MTOW and, when set, landing
// against MLW.
func (s *Service) withinWeightLimits(p Phases) bool {
	if p.Takeoff.Weight > s.aircraft.MTOW {
		return false
	}
	mlw := s.aircraft.MaxLandingWeight
	return mlw == nil || p.Landing.Weight <= *mlw
}

func cgPoint(label string, st PhaseState, res models.ValidationResult) models.CGPoint {
	return models.CGPoint{
		Label:        label,
		Weight:       st.Weight,
		Arm:          st.Arm,
		Moment:       st.Moment,
		WithinLimits: res.WithinLimits,
	}
}
