package gui

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/dragonbg/internal/anim"
)

// canvas maps drawing commands onto raylib's immediate mode. Transforms go
// through the rlgl matrix stack, so line thickness scales with them.
type canvas struct {
	bg     rl.Color
	stroke rl.Color
	width  float32
	cap    anim.LineCap
	join   anim.LineJoin
	path   [][]rl.Vector2
}

func newCanvas(bg rl.Color) *canvas {
	return &canvas{bg: bg, stroke: rl.White, width: 1}
}

func toRL(c color.Color) rl.Color {
	if c == nil {
		return ColBg
	}
	r, g, b, a := c.RGBA()
	return rl.NewColor(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

func (c *canvas) Size() (float64, float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

func (c *canvas) Clear() {
	rl.ClearBackground(c.bg)
	c.path = c.path[:0]
}

func (c *canvas) SetStrokeColor(col color.Color) { c.stroke = toRL(col) }
func (c *canvas) SetLineWidth(w float64)         { c.width = float32(w) }
func (c *canvas) SetLineCap(lc anim.LineCap)     { c.cap = lc }
func (c *canvas) SetLineJoin(lj anim.LineJoin)   { c.join = lj }
func (c *canvas) BeginPath()                     { c.path = c.path[:0] }

func (c *canvas) MoveTo(x, y float64) {
	c.path = append(c.path, []rl.Vector2{rl.NewVector2(float32(x), float32(y))})
}

func (c *canvas) LineTo(x, y float64) {
	if len(c.path) == 0 {
		c.MoveTo(x, y)
		return
	}
	last := len(c.path) - 1
	c.path[last] = append(c.path[last], rl.NewVector2(float32(x), float32(y)))
}

func (c *canvas) Stroke() {
	r := c.width / 2
	for _, sp := range c.path {
		for i := 1; i < len(sp); i++ {
			rl.DrawLineEx(sp[i-1], sp[i], c.width, c.stroke)
		}
		if c.cap == anim.LineCapRound || c.join == anim.LineJoinRound {
			for _, p := range sp {
				rl.DrawCircleV(p, r, c.stroke)
			}
		}
	}
	c.path = c.path[:0]
}

func (c *canvas) Save()                  { rl.PushMatrix() }
func (c *canvas) Restore()               { rl.PopMatrix() }
func (c *canvas) Translate(x, y float64) { rl.Translatef(float32(x), float32(y), 0) }
func (c *canvas) Rotate(rad float64)     { rl.Rotatef(float32(rad*180/math.Pi), 0, 0, 1) }
func (c *canvas) Scale(x, y float64)     { rl.Scalef(float32(x), float32(y), 1) }
