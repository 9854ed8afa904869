//go:build js && wasm

// Command dragonbg-wasm draws the dragon curve on the page's #dragon-bg
// canvas. It does nothing when the canvas is missing or the user prefers
// reduced motion. The optional data-preset and data-theme attributes pick a
// preset and a built-in theme; --dragon-* CSS custom properties on the root
// element override the colours.
package main

import (
	"log/slog"
	"os"
	"strings"
	"syscall/js"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/config"
	"github.com/san-kum/dragonbg/internal/palette"
)

const canvasID = "dragon-bg"

type page struct {
	window js.Value
	doc    js.Value
	el     js.Value
}

func (p page) Surface() (anim.Surface, bool) {
	if p.el.IsNull() || p.el.IsUndefined() {
		return nil, false
	}
	return newCanvas2D(p.el)
}

func (p page) Viewport() anim.Viewport {
	return anim.Viewport{
		Width:      p.window.Get("innerWidth").Float(),
		Height:     p.window.Get("innerHeight").Float(),
		PixelRatio: p.window.Get("devicePixelRatio").Float(),
	}
}

func (p page) PrefersReducedMotion() bool {
	mq := p.window.Call("matchMedia", "(prefers-reduced-motion: reduce)")
	return mq.Truthy() && mq.Get("matches").Bool()
}

// theme reads a custom property from the root element's computed style.
func (p page) theme(name string) string {
	style := p.window.Call("getComputedStyle", p.doc.Get("documentElement"))
	return strings.TrimSpace(style.Call("getPropertyValue", name).String())
}

// config applies data-preset and data-theme from the canvas, then any
// --dragon-* custom properties.
func (p page) config() anim.Config {
	cfg := config.DefaultConfig()
	if !p.el.IsNull() && !p.el.IsUndefined() {
		data := p.el.Get("dataset")
		if name := data.Get("preset"); name.Truthy() {
			if preset := config.GetPreset(name.String()); preset != nil {
				cfg = preset
			}
		}
		if name := data.Get("theme"); name.Truthy() {
			cfg.Palette.Name = name.String()
		}
	}
	a := cfg.Anim()
	for _, n := range palette.Names {
		if p.theme(palette.ThemePrefix+n) != "" {
			a.Palette = palette.FromTheme(p.theme)
			break
		}
	}
	return a
}

func main() {
	anim.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	window := js.Global()
	doc := window.Get("document")
	p := page{window: window, doc: doc, el: doc.Call("getElementById", canvasID)}

	d, err := anim.Start(p, p.config())
	if err != nil {
		if !anim.Quiet(err) {
			anim.Logger().Error("start", slog.Any("err", err))
		}
		return
	}

	var frame js.Func
	start := -1.0
	frame = js.FuncOf(func(this js.Value, args []js.Value) any {
		ts := args[0].Float()
		if start < 0 {
			start = ts
		}
		if err := d.TickAt(msToDuration(ts - start)); err != nil {
			frame.Release()
			return nil
		}
		window.Call("requestAnimationFrame", frame)
		return nil
	})
	resize := js.FuncOf(func(this js.Value, args []js.Value) any {
		d.Resize(p.Viewport())
		return nil
	})
	window.Call("addEventListener", "resize", resize)
	window.Call("requestAnimationFrame", frame)

	select {}
}
