// Package envelope checks center-of-gravity points against CG envelope
// polygons in the (arm, weight) plane.
package envelope

import (
	"fmt"
	"math"

	"flight_wb/internal/models"
	"flight_wb/internal/units"
)

// NoEnvelopeWarning is reported when a point is checked without an envelope
const NoEnvelopeWarning = "No CG envelope defined for validation."

// DefaultEpsilon is the distance within which a point counts as lying on an
// envelope edge.
const DefaultEpsilon = 1e-7

type point struct {
	x, y float64 // arm, weight
}

// Validate checks a (weight, arm) point against env using DefaultEpsilon.
func Validate(weight units.Kilogram, arm units.Meter, env *models.CGEnvelope) models.ValidationResult {
	return ValidateWithEpsilon(weight, arm, env, DefaultEpsilon)
}

// ValidateWithEpsilon checks a (weight, arm) point against env.
//
// A missing or empty envelope passes with an advisory warning. Points within
// epsilon of any edge are inside. Outside points carry warnings describing
// which limit was exceeded.
func ValidateWithEpsilon(weight units.Kilogram, arm units.Meter, env *models.CGEnvelope, epsilon float64) models.ValidationResult {
	if env == nil || len(env.Points) == 0 {
		return models.ValidationResult{
			WithinLimits: true,
			Warnings:     []string{NoEnvelopeWarning},
		}
	}

	poly := toPolygon(env.Points)
	p := point{x: arm.Float(), y: weight.Float()}

	// Boundary first: float rounding can put an on-edge point on either side
	// of the crossing test.
	if onBoundary(p, poly, epsilon) {
		return models.ValidationResult{WithinLimits: true, Warnings: []string{}}
	}

	if contains(p, poly) {
		return models.ValidationResult{WithinLimits: true, Warnings: []string{}}
	}

	return models.ValidationResult{
		WithinLimits: false,
		Warnings:     diagnose(p, poly, env.Category, epsilon),
	}
}

func toPolygon(points []models.EnvelopePoint) []point {
	poly := make([]point, len(points))
	for i, pt := range points {
		poly[i] = point{x: pt.Arm.Float(), y: pt.Weight.Float()}
	}
	return poly
}

func onBoundary(p point, poly []point, epsilon float64) bool {
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if distToSegment(p, a, b) <= epsilon {
			return true
		}
	}
	return false
}

// contains is the even-odd ray casting test along a horizontal ray.
func contains(p point, poly []point) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.y > p.y) != (pj.y > p.y) &&
			p.x < (pj.x-pi.x)*(p.y-pi.y)/(pj.y-pi.y)+pi.x {
			inside = !inside
		}
		j = i
	}
	return inside
}

func diagnose(p point, poly []point, category string, epsilon float64) []string {
	minArm, maxArm := math.Inf(1), math.Inf(-1)
	minWeight, maxWeight := math.Inf(1), math.Inf(-1)
	for _, v := range poly {
		minArm = math.Min(minArm, v.x)
		maxArm = math.Max(maxArm, v.x)
		minWeight = math.Min(minWeight, v.y)
		maxWeight = math.Max(maxWeight, v.y)
	}

	var warnings []string
	if p.x < minArm-epsilon {
		warnings = append(warnings, fmt.Sprintf("CG too far FORE (%.3fm < %.3fm limit)", p.x, minArm))
	} else if p.x > maxArm+epsilon {
		warnings = append(warnings, fmt.Sprintf("CG too far AFT (%.3fm > %.3fm limit)", p.x, maxArm))
	}

	if p.y > maxWeight+epsilon {
		warnings = append(warnings, fmt.Sprintf("Weight exceeds Envelope Maximum (%.1fkg > %.1fkg)", p.y, maxWeight))
	} else if p.y < minWeight-epsilon {
		warnings = append(warnings, fmt.Sprintf("Weight below Envelope Minimum (%.1fkg < %.1fkg)", p.y, minWeight))
	}

	if len(warnings) == 0 {
		warnings = append(warnings, fmt.Sprintf("Point (%.1fkg @ %.3fm) outside %s envelope limits.", p.y, p.x, category))
	}
	return warnings
}

// distToSegment is the distance from p to the closed segment ab.
func distToSegment(p, a, b point) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.x-(a.x+t*dx), p.y-(a.y+t*dy))
}
