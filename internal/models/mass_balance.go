package models

import (
	"fmt"

	"flight_wb/internal/units"
)

// WeightInput is the load placed at a named station
type WeightInput struct {
	StationName string         `json:"station_name"`
	Weight      units.Kilogram `json:"weight_kg"`
}

// FuelInput is the fuel loaded into a named tank
type FuelInput struct {
	TankName string      `json:"tank_name"`
	Fuel     units.Liter `json:"fuel_l"`
}

// CGPoint is one flight phase plotted on the CG diagram
type CGPoint struct {
	Label        string              `json:"label"`
	Weight       units.Kilogram      `json:"weight_kg"`
	Arm          units.Meter         `json:"arm_m"`
	Moment       units.KilogramMeter `json:"moment_kg_m"`
	WithinLimits bool                `json:"within_limits"`
}

// ValidationResult is the outcome of checking a point against an envelope
type ValidationResult struct {
	WithinLimits bool     `json:"within_limits"`
	Warnings     []string `json:"warnings"`
}

// Phase labels, in the order they are reported
const (
	LabelZeroFuel = "Zero Fuel"
	LabelTakeoff  = "Takeoff"
	LabelLanding  = "Landing"
)

// MassBalanceRequest is a loading scenario. FuelTanks takes precedence over
// the legacy single FuelLiters value.
type MassBalanceRequest struct {
	AircraftID     int64         `json:"aircraft_id"`
	WeightInputs   []WeightInput `json:"weight_inputs"`
	FuelTanks      []FuelInput   `json:"fuel_tanks,omitempty"`
	FuelLiters     *units.Liter  `json:"fuel_liters,omitempty"`
	TripFuelLiters units.Liter   `json:"trip_fuel_liters"`
}

// Validate rejects structurally invalid scenarios before calculation
func (r *MassBalanceRequest) Validate() error {
	if len(r.WeightInputs) == 0 {
		return fmt.Errorf("weight_inputs must contain at least one entry")
	}
	for _, w := range r.WeightInputs {
		if w.Weight < 0 {
			return fmt.Errorf("weight for station %q must not be negative", w.StationName)
		}
	}
	for _, f := range r.FuelTanks {
		if f.Fuel < 0 {
			return fmt.Errorf("fuel for tank %q must not be negative", f.TankName)
		}
	}
	if r.FuelLiters != nil && *r.FuelLiters < 0 {
		return fmt.Errorf("fuel_liters must not be negative")
	}
	if r.TripFuelLiters < 0 {
		return fmt.Errorf("trip_fuel_liters must not be negative")
	}
	return nil
}

// MassBalanceResponse summarises weights and CG for all phases
type MassBalanceResponse struct {
	EmptyWeight    units.Kilogram `json:"empty_weight_kg"`
	Payload        units.Kilogram `json:"payload_kg"`
	FuelWeight     units.Kilogram `json:"fuel_weight_kg"`
	TakeoffWeight  units.Kilogram `json:"takeoff_weight_kg"`
	LandingWeight  units.Kilogram `json:"landing_weight_kg"`
	ZeroFuelWeight units.Kilogram `json:"zero_fuel_weight_kg"`

	CGPoints []CGPoint `json:"cg_points"`

	WithinWeightLimits bool     `json:"within_weight_limits"`
	WithinCGLimits     bool     `json:"within_cg_limits"`
	Warnings           []string `json:"warnings"`

	ChartImageBase64 string `json:"chart_image_base64,omitempty"`
}
