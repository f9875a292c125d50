package performance

import (
	"fmt"
	"math"

	"flight_wb/internal/models"
	"flight_wb/internal/units"
)

// Safety factors applied after all physical corrections
const (
	TakeoffSafetyFactor = 1.25
	LandingSafetyFactor = 1.33
)

// Conditions are the environmental inputs to ApplyCorrections
type Conditions struct {
	Phase           models.ProfileType
	Wind            units.Knot // negative = headwind
	Surface         models.RunwayCondition
	SlopePercent    float64
	DensityAltitude units.Feet
}

// Distances is a corrected phase result. Raw values include every physical
// correction but not the safety factor.
type Distances struct {
	GroundRoll    units.Meter
	Total50ft     units.Meter
	GroundRollRaw units.Meter
	Total50ftRaw  units.Meter
	SafetyFactor  float64
	Corrections   []string
}

// ApplyCorrections scales baseline distances for density altitude (Mode B
// only), wind, surface and slope, then applies the phase safety factor.
func ApplyCorrections(rawRoll, rawTotal float64, c Conditions, modeB bool) Distances {
	var corrections []string
	factor := 1.0

	// Mode A tables already encode altitude and temperature
	if modeB {
		alt := 1.0 + math.Max(0, c.DensityAltitude.Float())/1000*0.10
		rawRoll *= alt
		rawTotal *= alt
		corrections = append(corrections, fmt.Sprintf("Mode B Density Alt Corr: %.2fx", alt))
	}

	wind := c.Wind.Float()
	if wind < 0 {
		f := 1.0 - math.Abs(wind)/2*0.015
		factor *= f
		corrections = append(corrections, fmt.Sprintf("Wind (-): %.2fx", f))
	} else {
		f := 1.0 + wind/2*0.10
		factor *= f
		corrections = append(corrections, fmt.Sprintf("Wind (+): %.2fx", f))
	}

	switch c.Surface {
	case models.RunwayGrass:
		factor *= 1.20
		corrections = append(corrections, "Grass Surface: 1.20x")
	case models.RunwayWet:
		factor *= 1.15
		corrections = append(corrections, "Wet Surface: 1.15x")
	}

	if c.SlopePercent != 0 {
		// upslope lengthens takeoff and shortens landing
		dir := 1.0
		if c.Phase != models.ProfileTakeoff {
			dir = -1.0
		}
		f := 1.0 + c.SlopePercent*0.05*dir
		factor *= f
		corrections = append(corrections, fmt.Sprintf("Slope %.1f%%: %.2fx", c.SlopePercent, f))
	}

	safety := TakeoffSafetyFactor
	if c.Phase == models.ProfileLanding {
		safety = LandingSafetyFactor
	}
	corrections = append(corrections, fmt.Sprintf("Safety Factor (%s): %.2fx", c.Phase, safety))

	roll := rawRoll * factor
	total := rawTotal * factor

	return Distances{
		GroundRoll:    units.Meter(roll * safety),
		Total50ft:     units.Meter(total * safety),
		GroundRollRaw: units.Meter(roll),
		Total50ftRaw:  units.Meter(total),
		SafetyFactor:  safety,
		Corrections:   corrections,
	}
}

// GlobalWarnings returns advisories that do not depend on the phase
func GlobalWarnings(wind units.Knot) []string {
	var warnings []string
	if wind > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Tailwind of %.1fkt increases takeoff/landing distances significantly; consider the opposite runway direction.", wind))
	}
	return warnings
}
