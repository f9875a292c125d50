package envelope

import (
	"errors"
	"fmt"
	"math"

	"flight_wb/internal/models"
)

var (
	ErrTooFewPoints     = errors.New("envelope needs at least 3 points")
	ErrDegenerate       = errors.New("envelope polygon is degenerate")
	ErrSelfIntersecting = errors.New("envelope polygon is self-intersecting")
)

// CheckPolygon validates envelope geometry at data-entry time. The point test
// in Validate assumes a simple polygon and does not repeat these checks.
func CheckPolygon(points []models.EnvelopePoint) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}

	for i, pt := range points {
		if pt.Weight <= 0 || pt.Arm <= 0 {
			return fmt.Errorf("point %d: weight_kg and arm_m must be greater than 0", i)
		}
	}

	poly := toPolygon(points)
	n := len(poly)

	for i := range poly {
		if poly[i] == poly[(i+1)%n] {
			return fmt.Errorf("%w: repeated vertex at index %d", ErrDegenerate, i)
		}
	}

	if math.Abs(signedArea(poly)) < 1e-9 {
		return fmt.Errorf("%w: zero area", ErrDegenerate)
	}

	for i := 0; i < n; i++ {
		a1, a2 := poly[i], poly[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// adjacent edges share a vertex
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b1, b2 := poly[j], poly[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return fmt.Errorf("%w: edges %d and %d cross", ErrSelfIntersecting, i, j)
			}
		}
	}

	return nil
}

func signedArea(poly []point) float64 {
	var sum float64
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		sum += a.x*b.y - b.x*a.y
	}
	return sum / 2
}

func orientation(a, b, c point) int {
	v := (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether c, known to be collinear with ab, lies on ab.
func onSegment(a, b, c point) bool {
	return math.Min(a.x, b.x) <= c.x && c.x <= math.Max(a.x, b.x) &&
		math.Min(a.y, b.y) <= c.y && c.y <= math.Max(a.y, b.y)
}

func segmentsIntersect(p1, p2, q1, q2 point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	return (o1 == 0 && onSegment(p1, p2, q1)) ||
		(o2 == 0 && onSegment(p1, p2, q2)) ||
		(o3 == 0 && onSegment(q1, q2, p1)) ||
		(o4 == 0 && onSegment(q1, q2, p2))
}
