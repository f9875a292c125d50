package models

import (
	"fmt"

	"flight_wb/internal/units"
)

// ProfileType identifies the flight phase a performance profile describes
type ProfileType string

const (
	ProfileTakeoff ProfileType = "takeoff"
	ProfileLanding ProfileType = "landing"
	ProfileClimb   ProfileType = "climb"
	ProfileCruise  ProfileType = "cruise"
)

// Valid reports whether p is a known profile type
func (p ProfileType) Valid() bool {
	switch p {
	case ProfileTakeoff, ProfileLanding, ProfileClimb, ProfileCruise:
		return true
	}
	return false
}

// PerformanceProfile holds POH performance data for one phase
type PerformanceProfile struct {
	ID          int64              `json:"id,omitempty"`
	ProfileType ProfileType        `json:"profile_type"`
	Source      string             `json:"source"` // fsm375, poh, custom
	DataTables  *PerformanceTables `json:"data_tables,omitempty"`
	Formulas    map[string]any     `json:"formulas,omitempty"`
	Notes       string             `json:"notes,omitempty"`
}

// PerformanceTables is a regular grid over weight, pressure altitude and
// temperature. Value slices are flattened with weight varying slowest and
// temperature fastest, so their length is the product of the axis lengths.
type PerformanceTables struct {
	Weights           []float64 `json:"weight_kg"`
	PressureAltitudes []float64 `json:"pressure_altitude_ft"`
	Temperatures      []float64 `json:"temperature_c"`
	GroundRoll        []float64 `json:"ground_roll_m,omitempty"`
	TotalDistance50ft []float64 `json:"total_dist_50ft_m,omitempty"`
	RateOfClimb       []float64 `json:"rate_of_climb_fpm,omitempty"`
}

// Axes returns the grid axes in value order
func (t *PerformanceTables) Axes() [][]float64 {
	return [][]float64{t.Weights, t.PressureAltitudes, t.Temperatures}
}

// RunwayCondition is the runway surface state
type RunwayCondition string

const (
	RunwayDry   RunwayCondition = "dry"
	RunwayWet   RunwayCondition = "wet"
	RunwayGrass RunwayCondition = "grass"
)

// CalculationSource names the strategy that produced a baseline distance
type CalculationSource string

const (
	SourceModeA CalculationSource = "mode_a_poh"
	SourceModeB CalculationSource = "mode_b_fsm375"
)

// MaxRunwaySlopePercent bounds the accepted runway slope in both directions
const MaxRunwaySlopePercent = 3.0

// PerformanceRequest is a takeoff/landing scenario
type PerformanceRequest struct {
	AircraftID         int64           `json:"aircraft_id"`
	Weight             units.Kilogram  `json:"weight_kg"`
	PressureAltitude   units.Feet      `json:"pressure_altitude_ft"`
	Temperature        units.Celsius   `json:"temperature_c"`
	WindComponent      units.Knot      `json:"wind_component_kt"` // negative = headwind
	RunwayCondition    RunwayCondition `json:"runway_condition"`
	RunwaySlopePercent float64         `json:"runway_slope_percent"`
}

// Validate rejects malformed scenarios and fills defaults
func (r *PerformanceRequest) Validate() error {
	if r.Weight <= 0 {
		return fmt.Errorf("weight_kg must be greater than 0")
	}
	switch r.RunwayCondition {
	case "":
		r.RunwayCondition = RunwayDry
	case RunwayDry, RunwayWet, RunwayGrass:
	default:
		return fmt.Errorf("invalid runway_condition: %s (must be dry, wet, or grass)", r.RunwayCondition)
	}
	if r.RunwaySlopePercent < -MaxRunwaySlopePercent || r.RunwaySlopePercent > MaxRunwaySlopePercent {
		return fmt.Errorf("runway_slope_percent must be between -%.0f and %.0f", MaxRunwaySlopePercent, MaxRunwaySlopePercent)
	}
	return nil
}

// PerformanceResponse carries final (safety-factored) and raw distances
type PerformanceResponse struct {
	DensityAltitude units.Feet `json:"density_altitude_ft"`

	TakeoffGroundRoll      units.Meter `json:"takeoff_ground_roll_m"`
	TakeoffDistance50ft    units.Meter `json:"takeoff_distance_50ft_m"`
	TakeoffGroundRollRaw   units.Meter `json:"takeoff_ground_roll_raw_m"`
	TakeoffDistance50ftRaw units.Meter `json:"takeoff_distance_50ft_raw_m"`

	LandingGroundRoll      units.Meter `json:"landing_ground_roll_m"`
	LandingDistance50ft    units.Meter `json:"landing_distance_50ft_m"`
	LandingGroundRollRaw   units.Meter `json:"landing_ground_roll_raw_m"`
	LandingDistance50ftRaw units.Meter `json:"landing_distance_50ft_raw_m"`

	RateOfClimb *float64 `json:"rate_of_climb_fpm,omitempty"`

	CorrectionsApplied []string          `json:"corrections_applied"`
	CalculationSource  CalculationSource `json:"calculation_source"`
	Warnings           []string          `json:"warnings"`
}
