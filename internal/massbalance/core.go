// Package massbalance computes zero-fuel, takeoff and landing weight and CG
// states for an aircraft loading scenario.
package massbalance

import (
	"flight_wb/internal/envelope"
	"flight_wb/internal/models"
	"flight_wb/internal/units"
)

// PhaseState is the weight, arm and moment of one flight phase
type PhaseState struct {
	Weight units.Kilogram
	Arm    units.Meter
	Moment units.KilogramMeter
}

// Phases is the result of ComputePhases
type Phases struct {
	ZeroFuel PhaseState
	Takeoff  PhaseState
	Landing  PhaseState

	Payload    units.Kilogram
	FuelWeight units.Kilogram // total fuel mass at takeoff

	// Per-tank quantities actually used, in tank order
	TakeoffFuel []units.Liter
	LandingFuel []units.Liter

	// Inputs that did not match the aircraft configuration
	UnknownStations []string
	UnknownTanks    []string
	UnburnedTrip    units.Liter // trip fuel exceeding the fuel on board
}

// PhaseValidation holds envelope results for each phase
type PhaseValidation struct {
	ZeroFuel models.ValidationResult
	Takeoff  models.ValidationResult
	Landing  models.ValidationResult
	Envelope *models.CGEnvelope
}

// Core is the stateless weight and moment engine for one aircraft
type Core struct {
	aircraft *models.Aircraft
}

// NewCore creates a Core reading from ac. ac is never modified.
func NewCore(ac *models.Aircraft) *Core {
	return &Core{aircraft: ac}
}

// ComputePhases computes the three flight phases.
//
// Fuel comes from fuelInputs keyed by tank name when given. Otherwise a
// legacy total is assigned entirely to the first tank. Trip fuel burns from
// the last tank forward, emptying each tank before the previous one.
func (c *Core) ComputePhases(weightInputs []models.WeightInput, fuelInputs []models.FuelInput, legacyFuel *units.Liter, tripFuel units.Liter) Phases {
	ac := c.aircraft
	var out Phases

	// Zero fuel
	arms := ac.StationArms()
	var payload, payloadMoment float64
	for _, w := range weightInputs {
		arm, ok := arms[w.StationName]
		if !ok {
			out.UnknownStations = appendUnique(out.UnknownStations, w.StationName)
		}
		payload += w.Weight.Float()
		payloadMoment += w.Weight.Float() * arm.Float()
	}
	out.Payload = units.Kilogram(payload)

	zfWeight := ac.EmptyWeight.Float() + payload
	zfMoment := ac.EmptyWeight.Float()*ac.EmptyArm.Float() + payloadMoment
	out.ZeroFuel = makeState(zfWeight, zfMoment)

	// Fuel on board at takeoff, in tank order
	loaded := c.resolveFuel(fuelInputs, legacyFuel, &out)
	out.TakeoffFuel = loaded

	toMass, toMoment := c.fuelMassMoment(loaded)
	out.FuelWeight = units.Kilogram(toMass)
	out.Takeoff = makeState(zfWeight+toMass, zfMoment+toMoment)

	// Landing: sequential burn, last tank first
	remaining := make([]units.Liter, len(loaded))
	copy(remaining, loaded)
	toBurn := tripFuel.Float()
	for i := len(ac.FuelTanks) - 1; i >= 0 && toBurn > 0; i-- {
		burn := min(remaining[i].Float(), toBurn)
		remaining[i] = units.Liter(remaining[i].Float() - burn)
		toBurn -= burn
	}
	out.LandingFuel = remaining
	out.UnburnedTrip = units.Liter(toBurn)

	ldgMass, ldgMoment := c.fuelMassMoment(remaining)
	out.Landing = makeState(zfWeight+ldgMass, zfMoment+ldgMoment)

	return out
}

// ValidatePhases checks each phase against the normal category envelope
func (c *Core) ValidatePhases(p Phases) PhaseValidation {
	env := c.aircraft.Envelope(models.CategoryNormal)
	return PhaseValidation{
		ZeroFuel: envelope.Validate(p.ZeroFuel.Weight, p.ZeroFuel.Arm, env),
		Takeoff:  envelope.Validate(p.Takeoff.Weight, p.Takeoff.Arm, env),
		Landing:  envelope.Validate(p.Landing.Weight, p.Landing.Arm, env),
		Envelope: env,
	}
}

// resolveFuel returns the loaded quantity per tank, aligned with FuelTanks.
func (c *Core) resolveFuel(fuelInputs []models.FuelInput, legacyFuel *units.Liter, out *Phases) []units.Liter {
	tanks := c.aircraft.FuelTanks
	loaded := make([]units.Liter, len(tanks))

	switch {
	case len(fuelInputs) > 0:
		index := make(map[string]int, len(tanks))
		for i, t := range tanks {
			index[t.Name] = i
		}
		for _, f := range fuelInputs {
			i, ok := index[f.TankName]
			if !ok {
				out.UnknownTanks = appendUnique(out.UnknownTanks, f.TankName)
				continue
			}
			loaded[i] = f.Fuel
		}
	case legacyFuel != nil && len(tanks) > 0:
		loaded[0] = *legacyFuel
	}

	return loaded
}

func (c *Core) fuelMassMoment(quantities []units.Liter) (mass, moment float64) {
	for i, t := range c.aircraft.FuelTanks {
		m := quantities[i].Float() * t.FuelType.Density().Float()
		mass += m
		moment += m * t.Arm.Float()
	}
	return mass, moment
}

func makeState(weight, moment float64) PhaseState {
	var arm float64
	if weight > 0 {
		arm = moment / weight
	}
	return PhaseState{
		Weight: units.Kilogram(weight),
		Arm:    units.Meter(arm),
		Moment: units.KilogramMeter(moment),
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
