package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Interpolate(t *testing.T) {
	// f(x, y) = 10 + 2x + 3y sampled on a 3x2 grid
	g, err := NewGrid([]Axis{
		{Name: "x", Values: []float64{0, 1, 3}},
		{Name: "y", Values: []float64{0, 10}},
	}, []float64{
		10, 40,
		12, 42,
		16, 46,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{name: "corner", x: 0, y: 0, want: 10},
		{name: "far corner", x: 3, y: 10, want: 46},
		{name: "grid node", x: 1, y: 10, want: 42},
		{name: "midpoint", x: 0.5, y: 5, want: 26},
		{name: "second cell", x: 2, y: 2.5, want: 21.5},
		{name: "edge", x: 3, y: 5, want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Interpolate(tt.x, tt.y)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestGrid_OutOfRange(t *testing.T) {
	g, err := NewGrid([]Axis{{Name: "weight_kg", Values: []float64{900, 1150}}}, []float64{200, 300})
	require.NoError(t, err)

	_, err = g.Interpolate(1151)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "weight_kg")

	_, err = g.Interpolate(899.9)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestGrid_SinglePointAxis(t *testing.T) {
	g, err := NewGrid([]Axis{
		{Name: "x", Values: []float64{0, 2}},
		{Name: "y", Values: []float64{15}},
	}, []float64{100, 200})
	require.NoError(t, err)

	got, err := g.Interpolate(1, 15)
	require.NoError(t, err)
	assert.InDelta(t, 150, got, 1e-9)

	_, err = g.Interpolate(1, 16)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNewGrid_Errors(t *testing.T) {
	tests := []struct {
		name    string
		axes    []Axis
		values  []float64
		wantErr error
	}{
		{name: "no axes", wantErr: ErrTableShape},
		{name: "empty axis", axes: []Axis{{Name: "temperature_c"}}, wantErr: ErrAxisMissing},
		{
			name:    "not increasing",
			axes:    []Axis{{Name: "x", Values: []float64{0, 0}}},
			values:  []float64{1, 2},
			wantErr: ErrTableShape,
		},
		{
			name:    "value count",
			axes:    []Axis{{Name: "x", Values: []float64{0, 1}}, {Name: "y", Values: []float64{0, 1}}},
			values:  []float64{1, 2, 3},
			wantErr: ErrTableShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.axes, tt.values)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGrid_WrongArity(t *testing.T) {
	g, err := NewGrid([]Axis{{Name: "x", Values: []float64{0, 1}}}, []float64{0, 1})
	require.NoError(t, err)
	_, err = g.Interpolate(0.5, 1)
	assert.ErrorIs(t, err, ErrTableShape)
}
