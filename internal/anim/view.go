package anim

import (
	"math"

	"github.com/san-kum/dragonbg/internal/curve"
)

// Style holds the cosmetic parameters of a frame.
type Style struct {
	Padding        float64 // CSS pixels kept free around the curve
	RotationSpeed  float64 // radians per second
	PulseAmplitude float64 // relative scale oscillation
	PulseHz        float64
	LineWidth      float64 // CSS pixels at order 0
	MinLineWidth   float64
	LineThinning   float64 // subtracted per order
	ColorDrift     float64 // gradient cycles per second
	MaxPixelRatio  float64
}

func DefaultStyle() Style {
	return Style{
		Padding:        24,
		RotationSpeed:  0.05,
		PulseAmplitude: 0.03,
		PulseHz:        0.12,
		LineWidth:      2.0,
		MinLineWidth:   0.7,
		LineThinning:   0.08,
		ColorDrift:     0.02,
		MaxPixelRatio:  2,
	}
}

// LineWidthFor thins the stroke as the curve gets more complex.
func (s Style) LineWidthFor(order int) float64 {
	return math.Max(s.MinLineWidth, s.LineWidth-float64(order)*s.LineThinning)
}

// Pulse returns the scale multiplier at t seconds.
func (s Style) Pulse(t float64) float64 {
	return 1 + s.PulseAmplitude*math.Sin(2*math.Pi*s.PulseHz*t)
}

// PixelRatio clamps a device pixel ratio to [1, MaxPixelRatio].
func (s Style) PixelRatio(r float64) float64 {
	hi := math.Max(1, s.MaxPixelRatio)
	if math.IsNaN(r) || r < 1 {
		return 1
	}
	return math.Min(r, hi)
}

// ViewState is how the curve is placed on screen for one frame.
type ViewState struct {
	OriginX, OriginY float64 // CSS pixels
	Step             float64 // CSS pixels per grid unit, pulse included
	Rotation         float64
	Pulse            float64
}

// FitStep returns the uniform scale that fits b into a w×h area minus
// padding on every side. Degenerate extents count as one grid unit, so the
// result is always finite and positive.
func FitStep(b curve.Bounds, w, h, padding float64) float64 {
	availW := math.Max(w-2*padding, 1)
	availH := math.Max(h-2*padding, 1)
	bw := math.Max(float64(b.Width()), 1)
	bh := math.Max(float64(b.Height()), 1)
	return math.Min(availW/bw, availH/bh)
}

// Coarse adapts s to a low resolution surface such as a terminal, where a
// device pixel is a braille dot and the usual padding would eat the view.
func (s Style) Coarse() Style {
	s.Padding = math.Min(s.Padding, 2)
	return s
}
