// Package gui shows the animation in a desktop window using raylib.
package gui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/palette"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

type Options struct {
	Config        anim.Config
	Theme         string
	Width, Height int
	FPS           int
	Background    string
	Status        bool
	ReducedMotion bool
}

type host struct {
	canvas  *canvas
	reduced bool
}

func (h host) Surface() (anim.Surface, bool) { return h.canvas, true }
func (h host) PrefersReducedMotion() bool    { return h.reduced }

// Viewport is in screen coordinates. raylib applies the DPI scale itself
// on high-DPI displays, so the driver's ratio stays at 1.
func (h host) Viewport() anim.Viewport {
	return anim.Viewport{
		Width:      float64(rl.GetScreenWidth()),
		Height:     float64(rl.GetScreenHeight()),
		PixelRatio: 1,
	}
}

type App struct {
	opts    Options
	host    host
	driver  *anim.Driver
	elapsed time.Duration
	paused  bool
	status  bool
	quit    bool
	theme   string
}

// initWindow opens a resizable high-DPI window and sets the frame rate.
func initWindow(opts Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), "dragonbg")
	rl.SetTargetFPS(int32(opts.FPS))
	rl.SetExitKey(rl.KeyEscape)
}

// Run opens the window and blocks until it is closed. The reduced motion
// check happens before the window is created.
func Run(opts Options) error {
	if opts.ReducedMotion {
		return anim.ErrReducedMotion
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	bg := ColBg
	if opts.Background != "" {
		c, err := palette.Parse(opts.Background)
		if err != nil {
			return err
		}
		bg = toRL(c)
	}

	initWindow(opts)
	defer rl.CloseWindow()

	a := &App{opts: opts, host: host{canvas: newCanvas(bg)}, status: opts.Status, theme: opts.Theme}
	d, err := anim.Start(a.host, opts.Config)
	if err != nil {
		return err
	}
	a.driver = d
	return a.RunLoop()
}

func (a *App) RunLoop() error {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		if err := a.Draw(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		a.driver.Resize(a.host.Viewport())
	}
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyS) {
		a.status = !a.status
	}
	if rl.IsKeyPressed(rl.KeyT) {
		th := palette.NextTheme(a.theme)
		a.theme = th.Name
		a.opts.Config.Palette = th.Palette()
		a.driver.SetPalette(a.opts.Config.Palette)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.driver = anim.New(a.host.canvas, a.opts.Config)
		a.driver.Resize(a.host.Viewport())
		a.elapsed = 0
	}
	if !a.paused {
		a.elapsed += time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	}
}

func (a *App) Draw() error {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	if err := a.driver.TickAt(a.elapsed); err != nil {
		return err
	}
	if a.status {
		a.DrawHUD()
	}
	return nil
}

func (a *App) DrawHUD() {
	st := a.driver.State()
	text := fmt.Sprintf("order %d  segments %d  reveal %3.0f%%  %d fps",
		st.Order, st.Segments, st.Reveal*100, rl.GetFPS())
	if a.theme != "" {
		text += "  " + a.theme
	}
	rl.DrawText(text, 12, 12, 16, ColText)
	if a.paused {
		rl.DrawText("paused", 12, 32, 16, ColTextDim)
	}
}
