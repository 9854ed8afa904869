//go:build js && wasm

package main

import (
	"fmt"
	"image/color"
	"syscall/js"

	"github.com/san-kum/dragonbg/internal/anim"
)

var capNames = [...]string{anim.LineCapButt: "butt", anim.LineCapRound: "round", anim.LineCapSquare: "square"}
var joinNames = [...]string{anim.LineJoinMiter: "miter", anim.LineJoinRound: "round", anim.LineJoinBevel: "bevel"}

// canvas2D forwards drawing commands to a CanvasRenderingContext2D.
type canvas2D struct {
	el  js.Value
	ctx js.Value
}

func newCanvas2D(el js.Value) (*canvas2D, bool) {
	ctx := el.Call("getContext", "2d")
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, false
	}
	return &canvas2D{el: el, ctx: ctx}, true
}

func (c *canvas2D) Size() (float64, float64) {
	return c.el.Get("width").Float(), c.el.Get("height").Float()
}

func (c *canvas2D) Resize(w, h int) {
	c.el.Set("width", w)
	c.el.Set("height", h)
}

func (c *canvas2D) Clear() {
	c.ctx.Call("setTransform", 1, 0, 0, 1, 0, 0)
	w, h := c.Size()
	c.ctx.Call("clearRect", 0, 0, w, h)
}

func (c *canvas2D) SetStrokeColor(col color.Color) {
	r, g, b, a := col.RGBA()
	c.ctx.Set("strokeStyle", fmt.Sprintf("rgba(%d,%d,%d,%.3f)", r>>8, g>>8, b>>8, float64(a)/0xffff))
}

func (c *canvas2D) SetLineWidth(w float64)       { c.ctx.Set("lineWidth", w) }
func (c *canvas2D) SetLineCap(lc anim.LineCap)   { c.ctx.Set("lineCap", capNames[lc]) }
func (c *canvas2D) SetLineJoin(lj anim.LineJoin) { c.ctx.Set("lineJoin", joinNames[lj]) }
func (c *canvas2D) BeginPath()                   { c.ctx.Call("beginPath") }
func (c *canvas2D) MoveTo(x, y float64)          { c.ctx.Call("moveTo", x, y) }
func (c *canvas2D) LineTo(x, y float64)          { c.ctx.Call("lineTo", x, y) }
func (c *canvas2D) Stroke()                      { c.ctx.Call("stroke") }
func (c *canvas2D) Save()                        { c.ctx.Call("save") }
func (c *canvas2D) Restore()                     { c.ctx.Call("restore") }
func (c *canvas2D) Translate(x, y float64)       { c.ctx.Call("translate", x, y) }
func (c *canvas2D) Rotate(rad float64)           { c.ctx.Call("rotate", rad) }
func (c *canvas2D) Scale(x, y float64)           { c.ctx.Call("scale", x, y) }
