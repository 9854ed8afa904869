package surface

import (
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"

	"github.com/san-kum/dragonbg/internal/anim"
)

// Raster draws into a gogpu/gg software context.
type Raster struct {
	dc         *gg.Context
	background color.Color
	err        error
}

// NewRaster creates a w×h raster. A nil background clears to transparent.
func NewRaster(w, h int, background color.Color) *Raster {
	return &Raster{
		dc:         gg.NewContext(max(w, 1), max(h, 1)),
		background: background,
	}
}

func (r *Raster) Size() (float64, float64) {
	return float64(r.dc.Width()), float64(r.dc.Height())
}

func (r *Raster) Resize(w, h int) {
	if err := r.dc.Resize(max(w, 1), max(h, 1)); err != nil {
		r.err = err
	}
}

func (r *Raster) Clear() {
	if r.background == nil {
		r.dc.Clear()
		return
	}
	r.dc.ClearWithColor(gg.FromColor(r.background))
}

func (r *Raster) SetStrokeColor(c color.Color) { r.dc.SetColor(c) }
func (r *Raster) SetLineWidth(w float64)       { r.dc.SetLineWidth(w) }

func (r *Raster) SetLineCap(c anim.LineCap) {
	switch c {
	case anim.LineCapRound:
		r.dc.SetLineCap(gg.LineCapRound)
	case anim.LineCapSquare:
		r.dc.SetLineCap(gg.LineCapSquare)
	default:
		r.dc.SetLineCap(gg.LineCapButt)
	}
}

func (r *Raster) SetLineJoin(j anim.LineJoin) {
	switch j {
	case anim.LineJoinRound:
		r.dc.SetLineJoin(gg.LineJoinRound)
	case anim.LineJoinBevel:
		r.dc.SetLineJoin(gg.LineJoinBevel)
	default:
		r.dc.SetLineJoin(gg.LineJoinMiter)
	}
}

func (r *Raster) BeginPath()          { r.dc.ClearPath() }
func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }

func (r *Raster) Stroke() {
	if err := r.dc.Stroke(); err != nil {
		r.err = err
	}
}

func (r *Raster) Save()                  { r.dc.Push() }
func (r *Raster) Restore()               { r.dc.Pop() }
func (r *Raster) Translate(x, y float64) { r.dc.Translate(x, y) }
func (r *Raster) Rotate(rad float64)     { r.dc.Rotate(rad) }
func (r *Raster) Scale(x, y float64)     { r.dc.Scale(x, y) }

// Err returns the last rasterisation error, if any.
func (r *Raster) Err() error { return r.err }

func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) Close() error { return r.dc.Close() }
