package surface

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/dragonbg/internal/anim"
)

type Op string

const (
	OpClear     Op = "clear"
	OpResize    Op = "resize"
	OpColor     Op = "color"
	OpLineWidth Op = "width"
	OpLineCap   Op = "cap"
	OpLineJoin  Op = "join"
	OpBegin     Op = "begin"
	OpMove      Op = "move"
	OpLine      Op = "line"
	OpStroke    Op = "stroke"
	OpSave      Op = "save"
	OpRestore   Op = "restore"
	OpTranslate Op = "translate"
	OpRotate    Op = "rotate"
	OpScale     Op = "scale"
)

type Command struct {
	Op    Op
	Args  []float64
	Color color.RGBA
}

func (c Command) String() string {
	if c.Op == OpColor {
		return fmt.Sprintf("%s #%02x%02x%02x", c.Op, c.Color.R, c.Color.G, c.Color.B)
	}
	if len(c.Args) == 0 {
		return string(c.Op)
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprintf("%.4g", a)
	}
	return string(c.Op) + " " + strings.Join(parts, " ")
}

// Recorder keeps every command issued against it. It panics on nothing and
// draws nothing.
type Recorder struct {
	W, H     float64
	Commands []Command
}

func NewRecorder(w, h float64) *Recorder { return &Recorder{W: w, H: h} }

func (r *Recorder) add(op Op, args ...float64) {
	r.Commands = append(r.Commands, Command{Op: op, Args: args})
}

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

func (r *Recorder) Resize(w, h int) {
	r.W, r.H = float64(w), float64(h)
	r.add(OpResize, r.W, r.H)
}

func (r *Recorder) Clear() { r.add(OpClear) }

func (r *Recorder) SetStrokeColor(c color.Color) {
	cr, cg, cb, ca := c.RGBA()
	r.Commands = append(r.Commands, Command{
		Op:    OpColor,
		Color: color.RGBA{R: uint8(cr >> 8), G: uint8(cg >> 8), B: uint8(cb >> 8), A: uint8(ca >> 8)},
	})
}

func (r *Recorder) SetLineWidth(w float64)      { r.add(OpLineWidth, w) }
func (r *Recorder) SetLineCap(c anim.LineCap)   { r.add(OpLineCap, float64(c)) }
func (r *Recorder) SetLineJoin(j anim.LineJoin) { r.add(OpLineJoin, float64(j)) }
func (r *Recorder) BeginPath()                  { r.add(OpBegin) }
func (r *Recorder) MoveTo(x, y float64)         { r.add(OpMove, x, y) }
func (r *Recorder) LineTo(x, y float64)         { r.add(OpLine, x, y) }
func (r *Recorder) Stroke()                     { r.add(OpStroke) }
func (r *Recorder) Save()                       { r.add(OpSave) }
func (r *Recorder) Restore()                    { r.add(OpRestore) }
func (r *Recorder) Translate(x, y float64)      { r.add(OpTranslate, x, y) }
func (r *Recorder) Rotate(rad float64)          { r.add(OpRotate, rad) }
func (r *Recorder) Scale(x, y float64)          { r.add(OpScale, x, y) }

// Count returns how many commands with op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Since returns the commands recorded after the last occurrence of op.
func (r *Recorder) Since(op Op) []Command {
	for i := len(r.Commands) - 1; i >= 0; i-- {
		if r.Commands[i].Op == op {
			return r.Commands[i+1:]
		}
	}
	return r.Commands
}

func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }
