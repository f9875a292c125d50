package massbalance

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"flight_wb/internal/envelope"
	"flight_wb/internal/models"
)

// MigrationWarning is raised when takeoff CG is inside the envelope but
// landing CG is not.
const MigrationWarning = "CRITICAL: CG shifts OUT OF LIMITS during flight (Landing state unsafe)."

// ChartRenderer draws CG points over an envelope. A nil envelope means none
// is defined.
type ChartRenderer interface {
	Render(ac *models.Aircraft, points []models.CGPoint, env *models.CGEnvelope) ([]byte, error)
}

// Logic turns phase results into pilot-facing warnings and charts
type Logic struct {
	aircraft *models.Aircraft
	renderer ChartRenderer
}

// NewLogic creates a Logic. renderer may be nil to disable charts.
func NewLogic(ac *models.Aircraft, renderer ChartRenderer) *Logic {
	return &Logic{aircraft: ac, renderer: renderer}
}

// Warnings assembles envelope, migration and weight-limit warnings in a fixed
// order: missing envelope, takeoff, landing and zero fuel diagnostics,
// migration, MTOW, MLW, then input advisories.
func (l *Logic) Warnings(v PhaseValidation, p Phases, weightInputs []models.WeightInput) []string {
	ac := l.aircraft
	warnings := []string{}

	if v.Envelope == nil || len(v.Envelope.Points) == 0 {
		warnings = append(warnings, envelope.NoEnvelopeWarning)
	}

	if !v.Takeoff.WithinLimits {
		warnings = append(warnings, v.Takeoff.Warnings...)
	}
	if !v.Landing.WithinLimits {
		warnings = append(warnings, v.Landing.Warnings...)
	}
	if !v.ZeroFuel.WithinLimits {
		warnings = append(warnings, v.ZeroFuel.Warnings...)
	}

	if v.Takeoff.WithinLimits && !v.Landing.WithinLimits {
		warnings = append(warnings, MigrationWarning)
	}

	if p.Takeoff.Weight > ac.MTOW {
		warnings = append(warnings, fmt.Sprintf("Takeoff weight %.1fkg exceeds MTOW %.1fkg", p.Takeoff.Weight, ac.MTOW))
	}
	if ac.MaxLandingWeight != nil && p.Landing.Weight > *ac.MaxLandingWeight {
		warnings = append(warnings, fmt.Sprintf("Landing weight %.1fkg exceeds maximum landing weight %.1fkg", p.Landing.Weight, *ac.MaxLandingWeight))
	}

	return append(warnings, l.inputAdvisories(p, weightInputs)...)
}

func (l *Logic) inputAdvisories(p Phases, weightInputs []models.WeightInput) []string {
	var warnings []string

	for _, name := range p.UnknownStations {
		warnings = append(warnings, fmt.Sprintf("Unknown weight station %q: weight counted with zero arm", name))
	}
	for _, name := range p.UnknownTanks {
		warnings = append(warnings, fmt.Sprintf("Unknown fuel tank %q: fuel ignored", name))
	}

	loads := make(map[string]float64)
	for _, w := range weightInputs {
		loads[w.StationName] += w.Weight.Float()
	}
	for _, s := range l.aircraft.WeightStations {
		if s.MaxWeight == nil {
			continue
		}
		if load, ok := loads[s.Name]; ok && load > s.MaxWeight.Float() {
			warnings = append(warnings, fmt.Sprintf("Station %s load %.1fkg exceeds limit %.1fkg", s.Name, load, *s.MaxWeight))
		}
	}

	for i, t := range l.aircraft.FuelTanks {
		if i < len(p.TakeoffFuel) && p.TakeoffFuel[i] > t.Capacity {
			warnings = append(warnings, fmt.Sprintf("Tank %s fuel %.1fL exceeds capacity %.1fL", t.Name, p.TakeoffFuel[i], t.Capacity))
		}
	}

	if p.UnburnedTrip > 0 {
		warnings = append(warnings, fmt.Sprintf("Trip fuel exceeds fuel on board by %.1fL", p.UnburnedTrip))
	}

	return warnings
}

// Chart renders the CG chart as base64 PNG. Any rendering failure yields an
// empty string.
func (l *Logic) Chart(points []models.CGPoint, env *models.CGEnvelope) (encoded string) {
	if l.renderer == nil {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Chart rendering panicked", "registration", l.aircraft.Registration, "panic", r)
			encoded = ""
		}
	}()

	img, err := l.renderer.Render(l.aircraft, points, env)
	if err != nil {
		slog.Warn("Chart rendering failed", "registration", l.aircraft.Registration, "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(img)
}
