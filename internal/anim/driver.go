package anim

import (
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/dragonbg/internal/curve"
	"github.com/san-kum/dragonbg/internal/palette"
)

// Config is everything a Driver needs besides its surface.
type Config struct {
	Schedule Schedule
	Reveal   Reveal
	Style    Style
	Palette  palette.Palette
}

func DefaultConfig() Config {
	return Config{
		Schedule: Schedule{
			MinOrder: 0,
			MaxOrder: 14,
			Ramp:     36 * time.Second,
			Hold:     10 * time.Second,
			Debounce: 250 * time.Millisecond,
		},
		Reveal:  Reveal{Duration: 2600 * time.Millisecond},
		Style:   DefaultStyle(),
		Palette: palette.Default(),
	}
}

// AnimationState is the mutable per-frame state owned by a Driver.
type AnimationState struct {
	Order     int
	Segments  int
	Reveal    float64
	Elapsed   time.Duration
	LastBuild time.Duration
	Builds    int
}

type Driver struct {
	cfg     Config
	surface Surface

	// CSS size and clamped pixel ratio; zero until the first Resize.
	width, height float64
	ratio         float64

	start   time.Time
	started bool

	curve    curve.Curve
	built    bool
	state    AnimationState
	view     ViewState
	disabled bool
}

func New(s Surface, cfg Config) *Driver {
	if cfg.Palette.Len() == 0 {
		cfg.Palette = palette.Default()
	}
	return &Driver{cfg: cfg, surface: s, ratio: 1}
}

func (d *Driver) State() AnimationState { return d.state }
func (d *Driver) View() ViewState       { return d.view }
func (d *Driver) Curve() curve.Curve    { return d.curve }
func (d *Driver) Config() Config        { return d.cfg }
func (d *Driver) Disabled() bool        { return d.disabled }

// SetPalette swaps the gradient from the next frame on. An empty palette is
// ignored.
func (d *Driver) SetPalette(p palette.Palette) {
	if p.Len() > 0 {
		d.cfg.Palette = p
	}
}

// Resize applies a new viewport. The backing store is reallocated at the
// device pixel size and the view is recentred; the current curve is kept and
// simply drawn at the new scale on the next frame.
func (d *Driver) Resize(vp Viewport) {
	d.ratio = d.cfg.Style.PixelRatio(vp.PixelRatio)
	d.width = math.Max(0, math.Floor(vp.Width))
	d.height = math.Max(0, math.Floor(vp.Height))
	if r, ok := d.surface.(Resizer); ok {
		r.Resize(int(d.width*d.ratio), int(d.height*d.ratio))
	}
	d.view.OriginX = math.Round(d.width / 2)
	d.view.OriginY = math.Round(d.height / 2)
	Logger().Debug("viewport resized",
		slog.Float64("width", d.width),
		slog.Float64("height", d.height),
		slog.Float64("ratio", d.ratio))
}

// Tick runs one frame at wall-clock time now. The first call fixes the
// animation start.
func (d *Driver) Tick(now time.Time) error {
	if !d.started {
		d.start = now
		d.started = true
	}
	return d.TickAt(now.Sub(d.start))
}

// TickAt runs one frame at a virtual elapsed time. A panic raised by the
// surface is recovered, logged and disables the driver.
func (d *Driver) TickAt(elapsed time.Duration) (err error) {
	if d.disabled {
		return ErrDisabled
	}
	defer func() {
		if v := recover(); v != nil {
			d.disabled = true
			err = &FrameError{Elapsed: elapsed.Seconds(), Order: d.state.Order, Value: v}
			Logger().Warn("frame failed, drawing disabled", slog.Any("err", err))
		}
	}()
	d.Update(elapsed)
	d.Draw()
	return nil
}

// Update advances time-based state without drawing.
func (d *Driver) Update(elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	d.state.Elapsed = elapsed

	target := d.cfg.Schedule.TargetOrder(elapsed)
	if !d.built || (target != d.curve.Order && elapsed-d.state.LastBuild >= d.cfg.Schedule.Debounce) {
		d.rebuild(target, elapsed)
	}
	d.state.Reveal = d.cfg.Reveal.Fraction(elapsed - d.state.LastBuild)
}

func (d *Driver) rebuild(order int, elapsed time.Duration) {
	prev := d.curve.Order
	if d.built && order == prev+1 {
		d.curve = curve.FromTurns(d.curve.Turns.Grow())
	} else {
		d.curve = curve.Build(order)
	}
	d.built = true
	d.state.Order = d.curve.Order
	d.state.Segments = d.curve.Segments()
	d.state.LastBuild = elapsed
	d.state.Builds++
	Logger().Debug("curve rebuilt",
		slog.Int("from", prev),
		slog.Int("order", d.curve.Order),
		slog.Int("segments", d.state.Segments))
}

// Visible returns how many leading path points the current reveal allows.
func (d *Driver) Visible() int {
	n := len(d.curve.Path)
	v := int(math.Floor(float64(n) * d.state.Reveal))
	return max(0, min(v, n))
}

// Draw renders the current state.
func (d *Driver) Draw() {
	s := d.surface
	if d.width == 0 && d.height == 0 {
		w, h := s.Size()
		d.Resize(Viewport{Width: w, Height: h, PixelRatio: 1})
	}
	s.Clear()

	t := d.state.Elapsed.Seconds()
	st := d.cfg.Style
	b := d.curve.Bounds
	pulse := st.Pulse(t)
	step := FitStep(b, d.width, d.height, st.Padding) * pulse
	d.view = ViewState{
		OriginX:  math.Round(d.width / 2),
		OriginY:  math.Round(d.height / 2),
		Step:     step,
		Rotation: st.RotationSpeed * t,
		Pulse:    pulse,
	}

	visible := d.Visible()
	if visible < 2 {
		return
	}
	path := d.curve.Path
	cx, cy := b.Center()

	s.Save()
	s.Scale(d.ratio, d.ratio)
	s.Translate(d.view.OriginX, d.view.OriginY)
	s.Rotate(d.view.Rotation)
	s.Scale(step, step)
	s.Translate(-cx, -cy)
	s.SetLineCap(LineCapRound)
	s.SetLineJoin(LineJoinRound)
	s.SetLineWidth(st.LineWidthFor(d.curve.Order) / step)

	// Runs of segments that quantise to the same colour share one path.
	segs := float64(len(path) - 1)
	var cur color.RGBA
	open := false
	for i := 1; i < visible; i++ {
		col := d.SegmentColor(i-1, segs, t)
		if !open || col != cur {
			if open {
				s.Stroke()
			}
			cur = col
			s.SetStrokeColor(col)
			s.BeginPath()
			s.MoveTo(float64(path[i-1].X), float64(path[i-1].Y))
			open = true
		}
		s.LineTo(float64(path[i].X), float64(path[i].Y))
	}
	if open {
		s.Stroke()
	}
	s.Restore()
}

// SegmentColor is the gradient colour of segment i out of total at t seconds.
func (d *Driver) SegmentColor(i int, total, t float64) color.RGBA {
	pos := 0.0
	if total > 1 {
		pos = float64(i) / total
	}
	return d.cfg.Palette.At(pos + d.cfg.Style.ColorDrift*t)
}
