// Package chart renders mass & balance diagrams as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"flight_wb/internal/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	envelopeFill = color.RGBA{R: 0, G: 128, B: 0, A: 76}
	envelopeLine = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	pointOK      = color.RGBA{R: 0, G: 160, B: 0, A: 255}
	pointBad     = color.RGBA{R: 220, G: 0, B: 0, A: 255}
	pathColor    = color.RGBA{R: 0, G: 0, B: 255, A: 128}
	mtowColor    = color.RGBA{R: 220, G: 0, B: 0, A: 128}
)

// Renderer draws CG points over an aircraft envelope
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer creates a Renderer with a 10x8 inch canvas
func NewRenderer() *Renderer {
	return &Renderer{Width: 10 * vg.Inch, Height: 8 * vg.Inch}
}

// Render draws the envelope (when present), each CG point, the path between
// them and an MTOW reference line, and returns the PNG bytes.
func (r *Renderer) Render(ac *models.Aircraft, points []models.CGPoint, env *models.CGEnvelope) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Mass & Balance - %s", ac.Registration)
	p.X.Label.Text = "CG Position (m)"
	p.Y.Label.Text = "Weight (kg)"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	minArm, maxArm := math.Inf(1), math.Inf(-1)
	extend := func(arm float64) {
		minArm = math.Min(minArm, arm)
		maxArm = math.Max(maxArm, arm)
	}

	if env != nil && len(env.Points) > 0 {
		xys := make(plotter.XYs, len(env.Points))
		for i, pt := range env.Points {
			xys[i] = plotter.XY{X: pt.Arm.Float(), Y: pt.Weight.Float()}
			extend(pt.Arm.Float())
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("envelope polygon: %w", err)
		}
		poly.Color = envelopeFill
		poly.LineStyle.Color = envelopeLine
		poly.LineStyle.Width = vg.Points(2)
		p.Add(poly)
		p.Legend.Add("CG Envelope", poly)
	}

	path := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		xy := plotter.XY{X: pt.Arm.Float(), Y: pt.Weight.Float()}
		path = append(path, xy)
		extend(xy.X)

		s, err := plotter.NewScatter(plotter.XYs{xy})
		if err != nil {
			return nil, fmt.Errorf("cg point %s: %w", pt.Label, err)
		}
		s.GlyphStyle.Radius = vg.Points(6)
		if pt.WithinLimits {
			s.GlyphStyle.Color = pointOK
			s.GlyphStyle.Shape = draw.CircleGlyph{}
		} else {
			s.GlyphStyle.Color = pointBad
			s.GlyphStyle.Shape = draw.CrossGlyph{}
		}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("%s: %.0f kg @ %.3f m", pt.Label, pt.Weight, pt.Arm), s)
	}

	if len(path) >= 2 {
		l, err := plotter.NewLine(path)
		if err != nil {
			return nil, fmt.Errorf("cg path: %w", err)
		}
		l.LineStyle.Color = pathColor
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(l)
	}

	if !math.IsInf(minArm, 0) {
		mtow := ac.MTOW.Float()
		l, err := plotter.NewLine(plotter.XYs{{X: minArm, Y: mtow}, {X: maxArm, Y: mtow}})
		if err != nil {
			return nil, fmt.Errorf("mtow line: %w", err)
		}
		l.LineStyle.Color = mtowColor
		l.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("MTOW: %.0f kg", mtow), l)
	}

	w, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
