// Package palette holds the stroke colours and the gradient used to colour
// curve segments.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Named entries in gradient order.
var Names = []string{"red", "orange", "gold", "green", "blue", "purple"}

var defaultHex = map[string]string{
	"red":    "#f82553",
	"orange": "#fb6640",
	"gold":   "#f8c421",
	"green":  "#49cc5c",
	"blue":   "#2c7ce5",
	"purple": "#6434e9",
}

// ThemePrefix is prepended to colour names when reading theme variables,
// e.g. "--dragon-gold".
const ThemePrefix = "--dragon-"

type Palette struct {
	colors []colorful.Color
}

func Default() Palette {
	p, _ := FromHex(DefaultHex()...)
	return p
}

// DefaultHex returns the built-in colours in gradient order.
func DefaultHex() []string {
	out := make([]string, len(Names))
	for i, n := range Names {
		out[i] = defaultHex[n]
	}
	return out
}

func Parse(hex string) (colorful.Color, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("palette: bad colour %q: %w", hex, err)
	}
	return c, nil
}

// FromHex parses every entry; the first malformed one is reported.
func FromHex(hexes ...string) (Palette, error) {
	p := Palette{colors: make([]colorful.Color, 0, len(hexes))}
	for _, h := range hexes {
		c, err := Parse(h)
		if err != nil {
			return Palette{}, err
		}
		p.colors = append(p.colors, c)
	}
	return p, nil
}

// FromTheme reads one variable per named colour through lookup. Missing,
// empty or malformed values are skipped. An empty result falls back to
// Default.
func FromTheme(lookup func(name string) string) Palette {
	if lookup == nil {
		return Default()
	}
	p := Palette{colors: make([]colorful.Color, 0, len(Names))}
	for _, n := range Names {
		v := strings.TrimSpace(lookup(ThemePrefix + n))
		if v == "" {
			continue
		}
		c, err := Parse(v)
		if err != nil {
			continue
		}
		p.colors = append(p.colors, c)
	}
	if len(p.colors) == 0 {
		return Default()
	}
	return p
}

// FromMap is FromTheme over a plain map keyed by variable name.
func FromMap(vars map[string]string) Palette {
	return FromTheme(func(name string) string { return vars[name] })
}

func (p Palette) Len() int { return len(p.colors) }

func (p Palette) Hex() []string {
	out := make([]string, len(p.colors))
	for i, c := range p.colors {
		out[i] = c.Hex()
	}
	return out
}

// At returns the gradient colour at position t. t wraps into [0, 1); the
// result blends the two nearest entries linearly in RGB.
func (p Palette) At(t float64) color.RGBA {
	n := len(p.colors)
	if n == 0 {
		return color.RGBA{A: 0xff}
	}
	t = math.Mod(t, 1)
	if t < 0 {
		t++
	}
	if math.IsNaN(t) {
		t = 0
	}
	scaled := t * float64(n)
	i := int(math.Floor(scaled))
	frac := scaled - float64(i)
	a := p.colors[i%n]
	b := p.colors[(i+1)%n]
	return toRGBA(a.BlendRgb(b, frac))
}

func toRGBA(c colorful.Color) color.RGBA {
	return color.RGBA{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: 0xff,
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
