// Package automation runs scripted batches of exports. A scenario is a YAML
// list of steps, each rendering one file or one stored frame sequence from a
// preset and theme; a sweep renders the same frame across a range of one
// style parameter.
package automation

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/config"
	"github.com/san-kum/dragonbg/internal/export"
	"github.com/san-kum/dragonbg/internal/palette"
	"github.com/san-kum/dragonbg/internal/storage"
)

// Scenario defines a scripted export batch
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single export. Format is png, gif, svg, dots or sequence; a
// sequence goes to the store instead of Out.
type Step struct {
	Preset string        `yaml:"preset"`
	Theme  string        `yaml:"theme"`
	Format string        `yaml:"format"`
	Width  int           `yaml:"width"`
	Height int           `yaml:"height"`
	Ratio  float64       `yaml:"ratio"`
	At     time.Duration `yaml:"at"`
	Frames int           `yaml:"frames"`
	FPS    int           `yaml:"fps"`
	Out    string        `yaml:"out"`
}

type Result struct {
	Step    int
	Format  string
	Path    string // file written, or sequence id
	Elapsed time.Duration
}

var formats = map[string]bool{"png": true, "gif": true, "svg": true, "dots": true, "sequence": true}

//go:embed scenario.schema.json
var scenarioSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("scenario.schema.json", scenarioSchema)
})

// LoadScenario loads a scenario from a YAML file, checks it against the
// scenario schema and validates it.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(data); err != nil {
		return nil, fmt.Errorf("%s: invalid scenario: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// checkSchema validates the raw document. The schema validator wants JSON
// values, so the YAML tree is passed through encoding/json first.
func checkSchema(data []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return sch.Validate(v)
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	for i, st := range sc.Steps {
		if !formats[st.Format] {
			return fmt.Errorf("step %d: unknown format %q", i+1, st.Format)
		}
		if st.Format != "sequence" && st.Out == "" {
			return fmt.Errorf("step %d: out is required for %s", i+1, st.Format)
		}
		if st.Preset != "" && config.GetPreset(st.Preset) == nil {
			return fmt.Errorf("step %d: unknown preset %q (available: %v)", i+1, st.Preset, config.ListPresets())
		}
		if _, ok := palette.GetTheme(st.Theme); st.Theme != "" && !ok {
			return fmt.Errorf("step %d: unknown theme %q", i+1, st.Theme)
		}
		if st.Width < 0 || st.Height < 0 || st.Frames < 0 || st.FPS < 0 {
			return fmt.Errorf("step %d: sizes and counts must not be negative", i+1)
		}
	}
	return nil
}

func (st Step) withDefaults() Step {
	if st.Width == 0 {
		st.Width = 800
	}
	if st.Height == 0 {
		st.Height = 600
	}
	if st.Ratio == 0 {
		st.Ratio = 1
	}
	if st.Frames == 0 {
		st.Frames = 48
	}
	if st.FPS == 0 {
		st.FPS = 12
	}
	return st
}

// config starts from the step's preset, or a copy of base, and applies the
// step's theme.
func (st Step) config(base *config.Config) *config.Config {
	var cfg *config.Config
	if st.Preset != "" {
		cfg = config.GetPreset(st.Preset)
	} else {
		c := *base
		cfg = &c
	}
	if st.Theme != "" {
		cfg.Palette = config.PaletteConfig{Name: st.Theme}
	}
	return cfg
}

// Runner executes scenarios and sweeps. Relative output paths are resolved
// against Dir.
type Runner struct {
	Base   *config.Config
	Store  *storage.Store
	Dir    string
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Runner) base() *config.Config {
	if r.Base == nil {
		return config.DefaultConfig()
	}
	return r.Base
}

func (r *Runner) path(p string) string {
	if filepath.IsAbs(p) || r.Dir == "" {
		return p
	}
	return filepath.Join(r.Dir, p)
}

// Run executes all steps in order. It stops at the first failure or when
// ctx is done, returning the results so far.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]Result, error) {
	log := r.logger().With(slog.String("scenario", sc.Name))
	results := make([]Result, 0, len(sc.Steps))

	for i, raw := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		st := raw.withDefaults()
		log.Info("running step", slog.Int("step", i+1), slog.Int("of", len(sc.Steps)), slog.String("format", st.Format))

		start := time.Now()
		path, err := r.runStep(st)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, Result{Step: i + 1, Format: st.Format, Path: path, Elapsed: time.Since(start)})
	}
	return results, nil
}

func (r *Runner) runStep(st Step) (string, error) {
	cfg := st.config(r.base())
	a := cfg.Anim()
	opt := export.Options{Width: st.Width, Height: st.Height, PixelRatio: st.Ratio, Background: cfg.Background}

	if st.Format == "sequence" {
		if r.Store == nil {
			return "", errors.New("sequence step needs a store")
		}
		return r.Store.Save(st.Out, a, opt, st.At, st.Frames, st.FPS)
	}

	path := r.path(st.Out)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	err := writeFile(path, func(w io.Writer) error {
		switch st.Format {
		case "png":
			return export.PNG(w, a, opt, st.At)
		case "gif":
			return export.GIF(w, a, opt, st.At, st.Frames, st.FPS)
		case "svg":
			return export.SVG(w, a, opt, st.At)
		default:
			return export.Dots(w, a, st.Width/8, st.Height/16, 8, cfg.Background, st.At)
		}
	})
	return path, err
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Sweep renders one frame per value of Param between Min and Max.
type Sweep struct {
	Param  string
	Min    float64
	Max    float64
	Steps  int
	At     time.Duration
	Width  int
	Height int
}

type SweepResult struct {
	Value float64
	Path  string
	State anim.AnimationState
}

var sweepParams = map[string]func(*config.Config, float64){
	"min_order":       func(c *config.Config, v float64) { c.Schedule.MinOrder = int(math.Round(v)) },
	"max_order":       func(c *config.Config, v float64) { c.Schedule.MaxOrder = int(math.Round(v)) },
	"rotation_speed":  func(c *config.Config, v float64) { c.View.RotationSpeed = v },
	"pulse_amplitude": func(c *config.Config, v float64) { c.View.PulseAmplitude = v },
	"line_width":      func(c *config.Config, v float64) { c.View.LineWidth = v },
	"color_drift":     func(c *config.Config, v float64) { c.View.ColorDrift = v },
	"padding":         func(c *config.Config, v float64) { c.View.Padding = v },
}

// SweepParams lists the parameters a sweep can vary.
func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for k := range sweepParams {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Sweep writes <param>_<i>.png into Dir for each value.
func (r *Runner) Sweep(ctx context.Context, sw Sweep) ([]SweepResult, error) {
	set, ok := sweepParams[sw.Param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (available: %v)", sw.Param, SweepParams())
	}
	if sw.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sw.Steps)
	}
	if r.Dir != "" {
		if err := os.MkdirAll(r.Dir, 0755); err != nil {
			return nil, err
		}
	}

	step := 0.0
	if sw.Steps > 1 {
		step = (sw.Max - sw.Min) / float64(sw.Steps-1)
	}

	log := r.logger()
	results := make([]SweepResult, 0, sw.Steps)
	for i := 0; i < sw.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		val := sw.Min + float64(i)*step

		c := *r.base()
		set(&c, val)
		if err := c.Validate(); err != nil {
			return results, fmt.Errorf("%s=%v: %w", sw.Param, val, err)
		}

		opt := export.Options{Width: sw.Width, Height: sw.Height, PixelRatio: 1, Background: c.Background}
		img, state, err := export.Frame(c.Anim(), opt, sw.At)
		if err != nil {
			return results, err
		}
		path := r.path(fmt.Sprintf("%s_%02d.png", sw.Param, i))
		if err := writeFile(path, func(w io.Writer) error { return png.Encode(w, img) }); err != nil {
			return results, err
		}

		results = append(results, SweepResult{Value: val, Path: path, State: state})
		log.Info("sweep", slog.Int("step", i+1), slog.Int("of", sw.Steps), slog.String("param", sw.Param), slog.Float64("value", val))
	}
	return results, nil
}
