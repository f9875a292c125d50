package performance

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrAxisMissing = errors.New("table axis missing")
	ErrOutOfRange  = errors.New("value outside table range")
	ErrTableShape  = errors.New("malformed table")
)

// Axis is one dimension of a Grid. Values must be strictly increasing.
type Axis struct {
	Name   string
	Values []float64
}

// Grid is a regular N-dimensional table with values stored in row-major
// order (first axis varies slowest).
type Grid struct {
	axes    []Axis
	values  []float64
	strides []int
}

// NewGrid validates the axes and value count.
func NewGrid(axes []Axis, values []float64) (*Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes", ErrTableShape)
	}

	strides := make([]int, len(axes))
	size := 1
	for i := len(axes) - 1; i >= 0; i-- {
		a := axes[i]
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrAxisMissing, a.Name)
		}
		for j := 1; j < len(a.Values); j++ {
			if !(a.Values[j] > a.Values[j-1]) {
				return nil, fmt.Errorf("%w: %s axis not strictly increasing", ErrTableShape, a.Name)
			}
		}
		strides[i] = size
		size *= len(a.Values)
	}

	if len(values) != size {
		return nil, fmt.Errorf("%w: %d values for a grid of %d", ErrTableShape, len(values), size)
	}

	return &Grid{axes: axes, values: values, strides: strides}, nil
}

// Interpolate returns the multilinear interpolation at x. Points outside the
// grid are rejected rather than extrapolated.
func (g *Grid) Interpolate(x ...float64) (float64, error) {
	if len(x) != len(g.axes) {
		return 0, fmt.Errorf("%w: got %d coordinates for %d axes", ErrTableShape, len(x), len(g.axes))
	}

	n := len(g.axes)
	lo := make([]int, n)
	frac := make([]float64, n)
	for d, a := range g.axes {
		i, t, err := locate(a, x[d])
		if err != nil {
			return 0, err
		}
		lo[d], frac[d] = i, t
	}

	// Sum over the 2^n corners of the enclosing cell.
	var result float64
	for corner := 0; corner < 1<<n; corner++ {
		w := 1.0
		idx := 0
		for d := 0; d < n; d++ {
			i := lo[d]
			if corner&(1<<d) != 0 {
				if frac[d] == 0 {
					w = 0
					break
				}
				w *= frac[d]
				i++
			} else {
				w *= 1 - frac[d]
			}
			idx += i * g.strides[d]
		}
		if w == 0 {
			continue
		}
		result += w * g.values[idx]
	}

	return result, nil
}

// locate finds the cell index and fractional position of v on axis a.
func locate(a Axis, v float64) (int, float64, error) {
	vals := a.Values
	if math.IsNaN(v) || v < vals[0] || v > vals[len(vals)-1] {
		return 0, 0, fmt.Errorf("%w: %s %g not in [%g, %g]", ErrOutOfRange, a.Name, v, vals[0], vals[len(vals)-1])
	}
	if len(vals) == 1 {
		return 0, 0, nil
	}
	for i := 0; i < len(vals)-1; i++ {
		if v <= vals[i+1] {
			return i, (v - vals[i]) / (vals[i+1] - vals[i]), nil
		}
	}
	return len(vals) - 2, 1, nil
}
