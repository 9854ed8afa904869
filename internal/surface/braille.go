package surface

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/gg"

	"github.com/san-kum/dragonbg/internal/anim"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Braille is a terminal surface. Each character cell holds 2x4 dots, so a
// cols×rows canvas has (2*cols)×(4*rows) device pixels. A cell takes the
// colour of the last stroke that touched it.
type Braille struct {
	Width, Height int // in cells
	Grid          [][]rune
	Colors        [][]color.RGBA

	transform
	stroke color.RGBA
}

func NewBraille(cols, rows int) *Braille {
	b := &Braille{transform: newTransform()}
	b.alloc(cols, rows)
	return b
}

func (b *Braille) alloc(cols, rows int) {
	b.Width, b.Height = max(cols, 0), max(rows, 0)
	b.Grid = make([][]rune, b.Height)
	b.Colors = make([][]color.RGBA, b.Height)
	for i := range b.Grid {
		b.Grid[i] = make([]rune, b.Width)
		b.Colors[i] = make([]color.RGBA, b.Width)
		for j := range b.Grid[i] {
			b.Grid[i][j] = blank
		}
	}
}

func (b *Braille) Size() (float64, float64) {
	return float64(b.Width * 2), float64(b.Height * 4)
}

// Resize takes device pixels and rounds up to whole cells.
func (b *Braille) Resize(w, h int) {
	b.alloc((w+1)/2, (h+3)/4)
}

// Set lights the dot at (x, y) in dot coordinates.
func (b *Braille) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= b.Width || row >= b.Height {
		return
	}
	b.Grid[row][col] |= pixelMap[y%4][x%2]
	b.Colors[row][col] = c
}

func (b *Braille) Clear() {
	for i := range b.Grid {
		for j := range b.Grid[i] {
			b.Grid[i][j] = blank
			b.Colors[i][j] = color.RGBA{}
		}
	}
	b.transform.reset()
}

func (b *Braille) SetStrokeColor(c color.Color) {
	r, g, bl, a := c.RGBA()
	b.stroke = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8)}
}

// Dots are a fixed size, so width, caps and joins have no effect.
func (b *Braille) SetLineWidth(float64)       {}
func (b *Braille) SetLineCap(anim.LineCap)   {}
func (b *Braille) SetLineJoin(anim.LineJoin) {}

func (b *Braille) Stroke() {
	for _, sp := range b.subpaths {
		if len(sp) == 1 {
			b.Set(round(sp[0].X), round(sp[0].Y), b.stroke)
		}
		for i := 1; i < len(sp); i++ {
			b.DrawLine(sp[i-1], sp[i])
		}
	}
	b.subpaths = b.subpaths[:0]
}

// DrawLine draws a line using Bresenham's algorithm
func (b *Braille) DrawLine(p0, p1 gg.Point) {
	x0, y0 := round(p0.X), round(p0.Y)
	x1, y1 := round(p1.X), round(p1.Y)
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		b.Set(x0, y0, b.stroke)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String returns the uncoloured canvas.
func (b *Braille) String() string {
	var sb strings.Builder
	for _, row := range b.Grid {
		sb.WriteString(string(row) + "\n")
	}
	return sb.String()
}

// Render returns the canvas with every run of equally coloured cells
// wrapped in a lipgloss foreground style.
func (b *Braille) Render() string {
	var sb strings.Builder
	for r, row := range b.Grid {
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && b.Colors[r][c] == b.Colors[r][start] {
				continue
			}
			sb.WriteString(colorize(string(row[start:c]), b.Colors[r][start]))
			start = c
		}
		if r < len(b.Grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func colorize(s string, c color.RGBA) string {
	if c.A == 0 {
		return s
	}
	hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}

func round(v float64) int { return int(math.Round(v)) }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
