package models

import (
	"fmt"
	"strings"
	"time"

	"flight_wb/internal/units"
)

// FuelType identifies the fuel carried in a tank
type FuelType string

const (
	FuelMogas      FuelType = "MoGas"
	FuelAvgas100LL FuelType = "AvGas 100LL"
	FuelAvgasUL91  FuelType = "AvGas UL91"
	FuelJetA1      FuelType = "Jet A-1"
	FuelDiesel     FuelType = "Diesel"
)

// DefaultFuelType is assumed for tanks without an explicit fuel type
const DefaultFuelType = FuelAvgas100LL

var fuelDensities = map[FuelType]units.KilogramPerLiter{
	FuelMogas:      0.72,
	FuelAvgas100LL: 0.72,
	FuelAvgasUL91:  0.71,
	FuelJetA1:      0.84,
	FuelDiesel:     0.84,
}

// Density returns the standard density for the fuel type. Unknown types use
// the AvGas 100LL density.
func (f FuelType) Density() units.KilogramPerLiter {
	if d, ok := fuelDensities[f]; ok {
		return d
	}
	return fuelDensities[DefaultFuelType]
}

// Valid reports whether f is one of the supported fuel types
func (f FuelType) Valid() bool {
	_, ok := fuelDensities[f]
	return ok
}

// Aircraft is the configuration snapshot the calculation engines read.
// Owned collections keep their order: FuelTanks order drives fuel burn
// sequencing, WeightStations are ordered by SortOrder.
type Aircraft struct {
	ID                  int64                `json:"id"`
	Registration        string               `json:"registration"`  // e.g. D-EABC, unique
	AircraftType        string               `json:"aircraft_type"` // e.g. DA40
	Manufacturer        string               `json:"manufacturer"`
	EmptyWeight         units.Kilogram       `json:"empty_weight_kg"`
	EmptyArm            units.Meter          `json:"empty_arm_m"`
	MTOW                units.Kilogram       `json:"mtow_kg"`
	MaxLandingWeight    *units.Kilogram      `json:"max_landing_weight_kg,omitempty"`
	PerformanceSource   string               `json:"performance_source"` // fsm375, manufacturer, custom
	FuelTanks           []FuelTank           `json:"fuel_tanks"`
	WeightStations      []WeightStation      `json:"weight_stations"`
	CGEnvelopes         []CGEnvelope         `json:"cg_envelopes"`
	PerformanceProfiles []PerformanceProfile `json:"performance_profiles"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// FuelTank is a fuel tank definition
type FuelTank struct {
	ID              int64       `json:"id,omitempty"`
	Name            string      `json:"name"`
	Capacity        units.Liter `json:"capacity_l"`
	Arm             units.Meter `json:"arm_m"`
	UnusableFuel    units.Liter `json:"unusable_fuel_l"`
	FuelType        FuelType    `json:"fuel_type"`
	DefaultQuantity units.Liter `json:"default_quantity_l"`
}

// WeightStation is a loading point (seat row, baggage compartment)
type WeightStation struct {
	ID            int64           `json:"id,omitempty"`
	Name          string          `json:"name"`
	Arm           units.Meter     `json:"arm_m"`
	MaxWeight     *units.Kilogram `json:"max_weight_kg,omitempty"` // structural limit of the station
	DefaultWeight *units.Kilogram `json:"default_weight_kg,omitempty"`
	SortOrder     int             `json:"sort_order"`
}

// EnvelopePoint is one polygon vertex of a CG envelope
type EnvelopePoint struct {
	Weight units.Kilogram `json:"weight_kg"`
	Arm    units.Meter    `json:"arm_m"`
}

// CGEnvelope is a closed polygon in the (arm, weight) plane. The last point
// implicitly connects back to the first.
type CGEnvelope struct {
	ID       int64           `json:"id,omitempty"`
	Category string          `json:"category"` // normal, utility, acrobatic
	Points   []EnvelopePoint `json:"polygon_points"`
}

// CategoryNormal is the envelope consulted by mass & balance
const CategoryNormal = "normal"

// Envelope returns the envelope of the given category, or nil.
func (a *Aircraft) Envelope(category string) *CGEnvelope {
	for i := range a.CGEnvelopes {
		if a.CGEnvelopes[i].Category == category {
			return &a.CGEnvelopes[i]
		}
	}
	return nil
}

// StationArms maps station names to their arm
func (a *Aircraft) StationArms() map[string]units.Meter {
	arms := make(map[string]units.Meter, len(a.WeightStations))
	for _, s := range a.WeightStations {
		arms[s.Name] = s.Arm
	}
	return arms
}

// Profiles returns the performance profiles keyed by type. When several
// profiles share a type the first one wins.
func (a *Aircraft) Profiles() map[ProfileType]*PerformanceProfile {
	profiles := make(map[ProfileType]*PerformanceProfile, len(a.PerformanceProfiles))
	for i := range a.PerformanceProfiles {
		p := &a.PerformanceProfiles[i]
		if _, ok := profiles[p.ProfileType]; !ok {
			profiles[p.ProfileType] = p
		}
	}
	return profiles
}

// Validate checks the aircraft-level invariants. Envelope geometry is checked
// separately by the envelope package.
func (a *Aircraft) Validate() error {
	if strings.TrimSpace(a.Registration) == "" {
		return fmt.Errorf("registration is required")
	}
	if a.EmptyWeight <= 0 {
		return fmt.Errorf("empty_weight_kg must be greater than 0")
	}
	if a.EmptyArm <= 0 {
		return fmt.Errorf("empty_arm_m must be greater than 0")
	}
	if a.MTOW <= a.EmptyWeight {
		return fmt.Errorf("mtow_kg (%.1f) must exceed empty_weight_kg (%.1f)", a.MTOW, a.EmptyWeight)
	}
	if a.MaxLandingWeight != nil && *a.MaxLandingWeight <= 0 {
		return fmt.Errorf("max_landing_weight_kg must be greater than 0")
	}

	tanks := make(map[string]bool, len(a.FuelTanks))
	for _, t := range a.FuelTanks {
		if t.Name == "" {
			return fmt.Errorf("fuel tank name is required")
		}
		if tanks[t.Name] {
			return fmt.Errorf("duplicate fuel tank %q", t.Name)
		}
		tanks[t.Name] = true
		if t.Capacity <= 0 || t.Arm <= 0 {
			return fmt.Errorf("fuel tank %q: capacity and arm must be greater than 0", t.Name)
		}
		if t.FuelType != "" && !t.FuelType.Valid() {
			return fmt.Errorf("fuel tank %q: unknown fuel type %q", t.Name, t.FuelType)
		}
	}

	stations := make(map[string]bool, len(a.WeightStations))
	for _, s := range a.WeightStations {
		if s.Name == "" {
			return fmt.Errorf("weight station name is required")
		}
		if stations[s.Name] {
			return fmt.Errorf("duplicate weight station %q", s.Name)
		}
		stations[s.Name] = true
		if s.Arm <= 0 {
			return fmt.Errorf("weight station %q: arm must be greater than 0", s.Name)
		}
		if s.MaxWeight != nil && *s.MaxWeight <= 0 {
			return fmt.Errorf("weight station %q: max_weight_kg must be greater than 0", s.Name)
		}
	}

	for _, p := range a.PerformanceProfiles {
		if !p.ProfileType.Valid() {
			return fmt.Errorf("unknown performance profile type %q", p.ProfileType)
		}
	}

	return nil
}

// AircraftUpdate carries the top-level fields an update may change. Nil
// fields are left untouched; owned collections are replaced only through
// re-creation.
type AircraftUpdate struct {
	AircraftType      *string         `json:"aircraft_type,omitempty"`
	Manufacturer      *string         `json:"manufacturer,omitempty"`
	EmptyWeight       *units.Kilogram `json:"empty_weight_kg,omitempty"`
	EmptyArm          *units.Meter    `json:"empty_arm_m,omitempty"`
	MTOW              *units.Kilogram `json:"mtow_kg,omitempty"`
	MaxLandingWeight  *units.Kilogram `json:"max_landing_weight_kg,omitempty"`
	PerformanceSource *string         `json:"performance_source,omitempty"`
}

// Apply copies the set fields onto a
func (u AircraftUpdate) Apply(a *Aircraft) {
	if u.AircraftType != nil {
		a.AircraftType = *u.AircraftType
	}
	if u.Manufacturer != nil {
		a.Manufacturer = *u.Manufacturer
	}
	if u.EmptyWeight != nil {
		a.EmptyWeight = *u.EmptyWeight
	}
	if u.EmptyArm != nil {
		a.EmptyArm = *u.EmptyArm
	}
	if u.MTOW != nil {
		a.MTOW = *u.MTOW
	}
	if u.MaxLandingWeight != nil {
		a.MaxLandingWeight = u.MaxLandingWeight
	}
	if u.PerformanceSource != nil {
		a.PerformanceSource = *u.PerformanceSource
	}
}
