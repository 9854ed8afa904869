package surface

import (
	"math"

	"github.com/gogpu/gg"
)

// transform is a save/restore stack of affine matrices plus the path being
// built, both in device space.
type transform struct {
	m     gg.Matrix
	stack []gg.Matrix

	subpaths [][]gg.Point
}

func newTransform() transform {
	return transform{m: gg.Identity(), stack: make([]gg.Matrix, 0, 8)}
}

func (t *transform) Save() { t.stack = append(t.stack, t.m) }

func (t *transform) Restore() {
	if len(t.stack) == 0 {
		return
	}
	t.m = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *transform) Translate(x, y float64) { t.m = t.m.Multiply(gg.Translate(x, y)) }
func (t *transform) Rotate(rad float64)     { t.m = t.m.Multiply(gg.Rotate(rad)) }
func (t *transform) Scale(x, y float64)     { t.m = t.m.Multiply(gg.Scale(x, y)) }

func (t *transform) reset() {
	t.m = gg.Identity()
	t.stack = t.stack[:0]
	t.subpaths = t.subpaths[:0]
}

// scaleFactor is the mean linear scale of the current matrix.
func (t *transform) scaleFactor() float64 {
	return math.Sqrt(math.Abs(t.m.A*t.m.E - t.m.B*t.m.D))
}

func (t *transform) BeginPath() { t.subpaths = t.subpaths[:0] }

func (t *transform) MoveTo(x, y float64) {
	t.subpaths = append(t.subpaths, []gg.Point{t.m.TransformPoint(gg.Pt(x, y))})
}

func (t *transform) LineTo(x, y float64) {
	if len(t.subpaths) == 0 {
		t.MoveTo(x, y)
		return
	}
	last := len(t.subpaths) - 1
	t.subpaths[last] = append(t.subpaths[last], t.m.TransformPoint(gg.Pt(x, y)))
}
