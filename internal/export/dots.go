package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/surface"
)

// Braille dot-to-bit mapping
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// BrailleToSVG converts a Braille canvas to SVG, one circle per lit dot in
// the cell's colour. scale is the distance between dots.
func BrailleToSVG(canvas *surface.Braille, scale float64, background string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, width, height, width, height)
	if background != "" {
		fmt.Fprintf(&sb, "<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", background)
	}

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := canvas.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}
			c := canvas.Colors[row][col]
			fmt.Fprintf(&sb, "<g fill=\"#%02x%02x%02x\">", c.R, c.G, c.B)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`, cx, cy, dotRadius)
				}
			}
			sb.WriteString("</g>\n")
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// Dots renders the terminal rendition of the frame at at as an SVG of
// braille dots, cols×rows cells.
func Dots(w io.Writer, cfg anim.Config, cols, rows int, scale float64, background string, at time.Duration) error {
	if cols <= 0 || rows <= 0 {
		return ErrSize
	}
	b := surface.NewBraille(cols, rows)
	cfg.Style = cfg.Style.Coarse()
	d := anim.New(b, cfg)
	dw, dh := b.Size()
	d.Resize(anim.Viewport{Width: dw, Height: dh, PixelRatio: 1})

	Advance(d, at)
	if err := d.TickAt(at); err != nil {
		return err
	}
	_, err := io.WriteString(w, BrailleToSVG(b, scale, background))
	return err
}
