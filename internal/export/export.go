// Package export renders frames of the animation to files. Every exporter
// drives a real anim.Driver on a virtual clock, so an exported frame at
// elapsed time t matches what a live host shows at t.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/san-kum/dragonbg/internal/anim"
	dpalette "github.com/san-kum/dragonbg/internal/palette"
	"github.com/san-kum/dragonbg/internal/surface"
)

// WarmupFPS is the rate at which the virtual clock is advanced up to the
// first exported frame. Rebuild timing depends on it the same way it
// depends on a live host's frame rate.
const WarmupFPS = 60

var ErrSize = errors.New("export: width and height must be positive")

type Options struct {
	Width, Height int
	PixelRatio    float64
	Background    string // hex, empty for transparent
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return ErrSize
	}
	return nil
}

func (o Options) background() (color.Color, error) {
	if o.Background == "" {
		return nil, nil
	}
	c, err := dpalette.Parse(o.Background)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (o Options) viewport() anim.Viewport {
	return anim.Viewport{Width: float64(o.Width), Height: float64(o.Height), PixelRatio: o.PixelRatio}
}

// Advance steps d's state from zero up to (but excluding) at without
// drawing.
func Advance(d *anim.Driver, at time.Duration) {
	step := time.Second / WarmupFPS
	for t := time.Duration(0); t < at; t += step {
		d.Update(t)
	}
}

func newRaster(cfg anim.Config, opt Options) (*surface.Raster, *anim.Driver, error) {
	if err := opt.validate(); err != nil {
		return nil, nil, err
	}
	bg, err := opt.background()
	if err != nil {
		return nil, nil, err
	}
	r := surface.NewRaster(opt.Width, opt.Height, bg)
	d := anim.New(r, cfg)
	d.Resize(opt.viewport())
	return r, d, nil
}

// Frame renders a single frame at elapsed time at.
func Frame(cfg anim.Config, opt Options, at time.Duration) (image.Image, anim.AnimationState, error) {
	r, d, err := newRaster(cfg, opt)
	if err != nil {
		return nil, anim.AnimationState{}, err
	}
	defer r.Close()

	Advance(d, at)
	if err := d.TickAt(at); err != nil {
		return nil, d.State(), err
	}
	if err := r.Err(); err != nil {
		return nil, d.State(), fmt.Errorf("export: rasterise: %w", err)
	}
	// The context's pixels are released on Close.
	img := image.NewRGBA(r.Image().Bounds())
	draw.Draw(img, img.Bounds(), r.Image(), image.Point{}, draw.Src)
	return img, d.State(), nil
}

func PNG(w io.Writer, cfg anim.Config, opt Options, at time.Duration) error {
	r, d, err := newRaster(cfg, opt)
	if err != nil {
		return err
	}
	defer r.Close()

	Advance(d, at)
	if err := d.TickAt(at); err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("export: rasterise: %w", err)
	}
	return r.EncodePNG(w)
}

// FrameFunc receives one rendered frame. img is only valid during the call.
type FrameFunc func(i int, at time.Duration, img image.Image, st anim.AnimationState) error

// Sequence renders frames frames at fps from start on one driver, in
// order, and hands each to fn.
func Sequence(cfg anim.Config, opt Options, start time.Duration, frames, fps int, fn FrameFunc) error {
	if frames <= 0 {
		return fmt.Errorf("export: frame count must be positive, got %d", frames)
	}
	if fps <= 0 {
		return fmt.Errorf("export: frame rate must be positive, got %d", fps)
	}
	r, d, err := newRaster(cfg, opt)
	if err != nil {
		return err
	}
	defer r.Close()

	Advance(d, start)
	frameDur := time.Second / time.Duration(fps)
	for i := 0; i < frames; i++ {
		at := start + time.Duration(i)*frameDur
		if err := d.TickAt(at); err != nil {
			return err
		}
		if err := r.Err(); err != nil {
			return fmt.Errorf("export: rasterise frame %d: %w", i, err)
		}
		if err := fn(i, at, r.Image(), d.State()); err != nil {
			return err
		}
	}
	return nil
}

// GIF writes frames frames at fps starting at start. The frames are reduced
// to the Plan 9 palette with Floyd-Steinberg dithering in parallel.
func GIF(w io.Writer, cfg anim.Config, opt Options, start time.Duration, frames, fps int) error {
	if fps <= 0 {
		fps = 12
	}
	captured := make([]*image.RGBA, 0, max(frames, 0))
	err := Sequence(cfg, opt, start, frames, fps, func(_ int, _ time.Duration, src image.Image, _ anim.AnimationState) error {
		dst := image.NewRGBA(src.Bounds())
		draw.Draw(dst, src.Bounds(), src, image.Point{}, draw.Src)
		captured = append(captured, dst)
		return nil
	})
	if err != nil {
		return err
	}

	delay := max(1, 100/fps)
	out := gif.GIF{LoopCount: 0, Image: quantize(captured), Delay: make([]int, len(captured))}
	for i := range out.Delay {
		out.Delay[i] = delay
	}
	return gif.EncodeAll(w, &out)
}

func quantize(frames []*image.RGBA) []*image.Paletted {
	out := make([]*image.Paletted, len(frames))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	var wg sync.WaitGroup
	for i, src := range frames {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, src *image.RGBA) {
			defer wg.Done()
			defer func() { <-sem }()

			pal := image.NewPaletted(src.Bounds(), palette.Plan9)
			draw.FloydSteinberg.Draw(pal, src.Bounds(), src, image.Point{})
			out[idx] = pal
		}(i, src)
	}
	wg.Wait()
	return out
}

func SVG(w io.Writer, cfg anim.Config, opt Options, at time.Duration) error {
	if err := opt.validate(); err != nil {
		return err
	}
	s := surface.NewSVG(opt.Width, opt.Height, opt.Background)
	d := anim.New(s, cfg)
	d.Resize(anim.Viewport{Width: float64(opt.Width), Height: float64(opt.Height), PixelRatio: 1})

	Advance(d, at)
	if err := d.TickAt(at); err != nil {
		return err
	}
	_, err := io.WriteString(w, s.String())
	return err
}
