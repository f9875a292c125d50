// Package performance computes takeoff and landing distances from POH tables
// (Mode A) or a weight-scaled parametric baseline (Mode B), then applies
// environmental corrections and safety factors.
package performance

import (
	"fmt"
	"math"

	"flight_wb/internal/models"
	"flight_wb/internal/units"
)

// ISA approximation constants
const (
	ISASeaLevelTempC       = 15.0
	ISALapseRatePer1000Ft  = 1.983
	DensityAltFtPerDegreeC = 118.8
)

// DensityAltitude corrects pressure altitude for non-standard temperature.
func DensityAltitude(pressureAlt units.Feet, temp units.Celsius) units.Feet {
	isaTemp := ISASeaLevelTempC - pressureAlt.Float()/1000*ISALapseRatePer1000Ft
	deviation := temp.Float() - isaTemp
	return units.Feet(pressureAlt.Float() + deviation*DensityAltFtPerDegreeC)
}

// Baseline holds the Mode B reference values for a generic light single.
// Ground roll = Base * (weight/MTOW)^Exponent; total distance = ground roll *
// TotalFactor.
type Baseline struct {
	TakeoffBase        float64
	TakeoffExponent    float64
	TakeoffTotalFactor float64
	LandingBase        float64
	LandingExponent    float64
	LandingTotalFactor float64
}

// DefaultBaseline returns the FSM 3/75 style reference values
func DefaultBaseline() Baseline {
	return Baseline{
		TakeoffBase:        300,
		TakeoffExponent:    2,
		TakeoffTotalFactor: 1.5,
		LandingBase:        250,
		LandingExponent:    1.5,
		LandingTotalFactor: 1.6,
	}
}

// Core computes baseline distances for one aircraft
type Core struct {
	aircraft *models.Aircraft
	baseline Baseline
}

// NewCore creates a Core using the given Mode B reference values
func NewCore(ac *models.Aircraft, baseline Baseline) *Core {
	return &Core{aircraft: ac, baseline: baseline}
}

// ModeB returns the parametric ground roll and 50ft distance in meters.
func (c *Core) ModeB(weight units.Kilogram, phase models.ProfileType) (roll, total float64) {
	ratio := weight.Float() / c.aircraft.MTOW.Float()
	b := c.baseline
	if phase == models.ProfileTakeoff {
		roll = b.TakeoffBase * math.Pow(ratio, b.TakeoffExponent)
		return roll, roll * b.TakeoffTotalFactor
	}
	roll = b.LandingBase * math.Pow(ratio, b.LandingExponent)
	return roll, roll * b.LandingTotalFactor
}

// ModeA interpolates ground roll and 50ft distance from POH tables. Any
// missing axis, malformed table or out-of-range input is an error.
func (c *Core) ModeA(tables *models.PerformanceTables, weight units.Kilogram, pressureAlt units.Feet, temp units.Celsius) (roll, total float64, err error) {
	if tables == nil {
		return 0, 0, fmt.Errorf("%w: no data tables", ErrAxisMissing)
	}
	if len(tables.GroundRoll) == 0 {
		return 0, 0, fmt.Errorf("%w: ground_roll_m", ErrAxisMissing)
	}
	if len(tables.TotalDistance50ft) == 0 {
		return 0, 0, fmt.Errorf("%w: total_dist_50ft_m", ErrAxisMissing)
	}

	roll, err = lookup(tables, tables.GroundRoll, weight, pressureAlt, temp)
	if err != nil {
		return 0, 0, fmt.Errorf("ground roll: %w", err)
	}
	total, err = lookup(tables, tables.TotalDistance50ft, weight, pressureAlt, temp)
	if err != nil {
		return 0, 0, fmt.Errorf("50ft distance: %w", err)
	}
	return roll, total, nil
}

// RateOfClimb interpolates rate of climb in ft/min from a climb table
func (c *Core) RateOfClimb(tables *models.PerformanceTables, weight units.Kilogram, pressureAlt units.Feet, temp units.Celsius) (float64, error) {
	if tables == nil || len(tables.RateOfClimb) == 0 {
		return 0, fmt.Errorf("%w: rate_of_climb_fpm", ErrAxisMissing)
	}
	return lookup(tables, tables.RateOfClimb, weight, pressureAlt, temp)
}

func lookup(tables *models.PerformanceTables, values []float64, weight units.Kilogram, pressureAlt units.Feet, temp units.Celsius) (float64, error) {
	g, err := NewGrid([]Axis{
		{Name: "weight_kg", Values: tables.Weights},
		{Name: "pressure_altitude_ft", Values: tables.PressureAltitudes},
		{Name: "temperature_c", Values: tables.Temperatures},
	}, values)
	if err != nil {
		return 0, err
	}
	return g.Interpolate(weight.Float(), pressureAlt.Float(), temp.Float())
}
