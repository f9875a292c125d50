package chart

import (
	"bytes"
	"image/png"
	"testing"

	"flight_wb/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAircraft() *models.Aircraft {
	return &models.Aircraft{Registration: "D-EFGH", EmptyWeight: 750, EmptyArm: 2.35, MTOW: 1100}
}

func TestRender(t *testing.T) {
	env := &models.CGEnvelope{
		Category: models.CategoryNormal,
		Points: []models.EnvelopePoint{
			{Weight: 700, Arm: 2.2}, {Weight: 700, Arm: 2.5},
			{Weight: 1100, Arm: 2.5}, {Weight: 1100, Arm: 2.3},
		},
	}
	points := []models.CGPoint{
		{Label: models.LabelZeroFuel, Weight: 850, Arm: 2.31, WithinLimits: true},
		{Label: models.LabelTakeoff, Weight: 980, Arm: 2.34, WithinLimits: true},
		{Label: models.LabelLanding, Weight: 920, Arm: 2.15, WithinLimits: false},
	}

	r := &Renderer{Width: 300, Height: 240}
	data, err := r.Render(testAircraft(), points, env)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
	assert.Greater(t, cfg.Height, 0)
}

func TestRender_NoEnvelope(t *testing.T) {
	r := &Renderer{Width: 200, Height: 160}

	data, err := r.Render(testAircraft(), []models.CGPoint{{Label: models.LabelTakeoff, Weight: 900, Arm: 2.3}}, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	data, err = r.Render(testAircraft(), nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
