package anim

import "image/color"

type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Surface is the 2D drawing API the driver renders through. Coordinates are
// transformed by the current translate/rotate/scale state, which Save and
// Restore push and pop. Line width is in user units and scales with the
// transform.
type Surface interface {
	// Size returns the drawable area in device pixels.
	Size() (w, h float64)
	Clear()
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	SetLineCap(c LineCap)
	SetLineJoin(j LineJoin)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(rad float64)
	Scale(x, y float64)
}

// Resizer is implemented by surfaces whose backing store must be
// reallocated when the viewport changes.
type Resizer interface {
	Resize(w, h int)
}

// Viewport is the host's view size in CSS pixels and its device pixel ratio.
type Viewport struct {
	Width, Height float64
	PixelRatio    float64
}
