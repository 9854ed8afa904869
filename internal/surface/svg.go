package surface

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/dragonbg/internal/anim"
)

var capNames = map[anim.LineCap]string{
	anim.LineCapButt:   "butt",
	anim.LineCapRound:  "round",
	anim.LineCapSquare: "square",
}

var joinNames = map[anim.LineJoin]string{
	anim.LineJoinMiter: "miter",
	anim.LineJoinRound: "round",
	anim.LineJoinBevel: "bevel",
}

// SVG records strokes as path elements in device coordinates.
type SVG struct {
	W, H       int
	Background string // empty for transparent

	transform
	body   strings.Builder
	stroke string
	width  float64
	cap    anim.LineCap
	join   anim.LineJoin
}

func NewSVG(w, h int, background string) *SVG {
	return &SVG{W: w, H: h, Background: background, transform: newTransform(), stroke: "#000000", width: 1}
}

func (s *SVG) Size() (float64, float64) { return float64(s.W), float64(s.H) }

func (s *SVG) Resize(w, h int) { s.W, s.H = w, h }

func (s *SVG) Clear() {
	s.body.Reset()
	s.transform.reset()
}

func (s *SVG) SetStrokeColor(c color.Color) {
	r, g, b, _ := c.RGBA()
	s.stroke = fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func (s *SVG) SetLineWidth(w float64)      { s.width = w }
func (s *SVG) SetLineCap(c anim.LineCap)   { s.cap = c }
func (s *SVG) SetLineJoin(j anim.LineJoin) { s.join = j }

func (s *SVG) Stroke() {
	if len(s.subpaths) == 0 {
		return
	}
	var d strings.Builder
	for _, sp := range s.subpaths {
		for i, p := range sp {
			if i == 0 {
				d.WriteString(fmt.Sprintf("M%.2f,%.2f", p.X, p.Y))
			} else {
				d.WriteString(fmt.Sprintf(" L%.2f,%.2f", p.X, p.Y))
			}
		}
	}
	s.body.WriteString(fmt.Sprintf(`<path d="%s" stroke="%s" stroke-width="%.3f" stroke-linecap="%s" stroke-linejoin="%s"/>
`, d.String(), s.stroke, s.width*s.scaleFactor(), capNames[s.cap], joinNames[s.join]))
	s.subpaths = s.subpaths[:0]
}

// String returns the complete document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.W, s.H, s.W, s.H))
	if s.Background != "" {
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, s.Background))
	}
	sb.WriteString(`<g fill="none">
`)
	sb.WriteString(s.body.String())
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
