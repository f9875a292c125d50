package weather

import (
	"math"

	"flight_wb/internal/models"
)

// StandardPressureHPa is the ISA sea level pressure
const StandardPressureHPa = 1013.25

// FeetPerHPa is the pressure lapse near sea level
const FeetPerHPa = 30.0

// WindComponents resolves a wind onto a runway heading. The along-runway
// component is negative for a headwind; crosswind is positive from the right.
func WindComponents(runwayHeading, windDirection, windSpeed float64) (along, cross float64) {
	angle := (windDirection - runwayHeading) * math.Pi / 180
	along = -windSpeed * math.Cos(angle)
	cross = windSpeed * math.Sin(angle)
	return roundTenth(along), roundTenth(cross)
}

// PressureAltitude derives pressure altitude in feet from field elevation
// and QNH.
func PressureAltitude(elevationFt, qnhHPa float64) float64 {
	return elevationFt + (StandardPressureHPa-qnhHPa)*FeetPerHPa
}

// RunwayWind applies the METAR wind to a runway. Variable or calm wind is
// treated as a direct tailwind of the reported speed so the result never
// understates the distance.
func RunwayWind(m *models.Metar, runwayHeading int, elevationFt *float64) models.RunwayWind {
	rw := models.RunwayWind{
		Station:       m.Station,
		RunwayHeading: runwayHeading,
		WindDirection: m.WindDirection,
		WindSpeed:     m.WindSpeed,
	}

	speed := float64(m.WindSpeed)
	if m.WindDirection == nil {
		rw.WindComponent = speed
	} else {
		rw.WindComponent, rw.CrosswindComponent = WindComponents(float64(runwayHeading), float64(*m.WindDirection), speed)
	}

	if elevationFt != nil {
		pa := PressureAltitude(*elevationFt, float64(m.QNH))
		rw.PressureAltitude = &pa
	}
	return rw
}

func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
