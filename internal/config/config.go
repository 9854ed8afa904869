package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/curve"
	"github.com/san-kum/dragonbg/internal/palette"
)

const (
	DefaultMinOrder   = 0
	DefaultMaxOrder   = 14
	DefaultRamp       = 36 * time.Second
	DefaultHold       = 10 * time.Second
	DefaultDebounce   = 250 * time.Millisecond
	DefaultReveal     = 2600 * time.Millisecond
	DefaultFPS        = 60
	DefaultStreamFPS  = 12
	DefaultBackground = "#0a0a0a"
)

type Config struct {
	Schedule   ScheduleConfig `yaml:"schedule"`
	Reveal     RevealConfig   `yaml:"reveal"`
	View       ViewConfig     `yaml:"view"`
	Palette    PaletteConfig  `yaml:"palette"`
	FPS        int            `yaml:"fps"`
	StreamFPS  int            `yaml:"stream_fps"`
	Background string         `yaml:"background"`
}

type ScheduleConfig struct {
	MinOrder int           `yaml:"min_order"`
	MaxOrder int           `yaml:"max_order"`
	Ramp     time.Duration `yaml:"ramp"`
	Hold     time.Duration `yaml:"hold"`
	Debounce time.Duration `yaml:"debounce"`
}

type RevealConfig struct {
	Duration time.Duration `yaml:"duration"`
}

type ViewConfig struct {
	Padding        float64 `yaml:"padding"`
	RotationSpeed  float64 `yaml:"rotation_speed"`
	PulseAmplitude float64 `yaml:"pulse_amplitude"`
	PulseHz        float64 `yaml:"pulse_hz"`
	LineWidth      float64 `yaml:"line_width"`
	MinLineWidth   float64 `yaml:"min_line_width"`
	LineThinning   float64 `yaml:"line_thinning"`
	ColorDrift     float64 `yaml:"color_drift"`
	MaxPixelRatio  float64 `yaml:"max_pixel_ratio"`
}

// PaletteConfig picks the gradient. Theme, when set, is read like CSS
// custom properties ("--dragon-red": "#ff0000") with missing entries left
// out; it wins over Name, a built-in theme, which wins over Colors.
type PaletteConfig struct {
	Name   string            `yaml:"name,omitempty"`
	Colors []string          `yaml:"colors"`
	Theme  map[string]string `yaml:"theme"`
}

func DefaultConfig() *Config {
	st := anim.DefaultStyle()
	return &Config{
		Schedule: ScheduleConfig{
			MinOrder: DefaultMinOrder,
			MaxOrder: DefaultMaxOrder,
			Ramp:     DefaultRamp,
			Hold:     DefaultHold,
			Debounce: DefaultDebounce,
		},
		Reveal: RevealConfig{Duration: DefaultReveal},
		View: ViewConfig{
			Padding:        st.Padding,
			RotationSpeed:  st.RotationSpeed,
			PulseAmplitude: st.PulseAmplitude,
			PulseHz:        st.PulseHz,
			LineWidth:      st.LineWidth,
			MinLineWidth:   st.MinLineWidth,
			LineThinning:   st.LineThinning,
			ColorDrift:     st.ColorDrift,
			MaxPixelRatio:  st.MaxPixelRatio,
		},
		Palette:    PaletteConfig{Colors: palette.DefaultHex()},
		FPS:        DefaultFPS,
		StreamFPS:  DefaultStreamFPS,
		Background: DefaultBackground,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	s := c.Schedule
	switch {
	case s.MinOrder < 0:
		return fmt.Errorf("schedule.min_order must be >= 0, got %d", s.MinOrder)
	case s.MaxOrder > curve.MaxOrder:
		return fmt.Errorf("schedule.max_order must be <= %d, got %d", curve.MaxOrder, s.MaxOrder)
	case s.MinOrder > s.MaxOrder:
		return fmt.Errorf("schedule.min_order %d exceeds max_order %d", s.MinOrder, s.MaxOrder)
	case s.Ramp < 0 || s.Hold < 0 || s.Debounce < 0:
		return fmt.Errorf("schedule durations must not be negative")
	case c.Reveal.Duration < 0:
		return fmt.Errorf("reveal.duration must not be negative")
	case c.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	case c.StreamFPS <= 0:
		return fmt.Errorf("stream_fps must be positive, got %d", c.StreamFPS)
	case c.View.LineWidth <= 0:
		return fmt.Errorf("view.line_width must be positive")
	}
	if len(c.Palette.Theme) > 0 {
		return nil
	}
	if c.Palette.Name != "" {
		if _, ok := palette.GetTheme(c.Palette.Name); !ok {
			return fmt.Errorf("palette.name: unknown theme %q (available: %v)", c.Palette.Name, palette.ThemeNames())
		}
		return nil
	}
	if _, err := palette.FromHex(c.Palette.Colors...); err != nil {
		return err
	}
	return nil
}

func (c *Config) ColorPalette() palette.Palette {
	if len(c.Palette.Theme) > 0 {
		return palette.FromMap(c.Palette.Theme)
	}
	if th, ok := palette.GetTheme(c.Palette.Name); ok {
		return th.Palette()
	}
	p, err := palette.FromHex(c.Palette.Colors...)
	if err != nil || p.Len() == 0 {
		return palette.Default()
	}
	return p
}

// Anim converts the file format into the driver's configuration.
func (c *Config) Anim() anim.Config {
	v := c.View
	return anim.Config{
		Schedule: anim.Schedule{
			MinOrder: c.Schedule.MinOrder,
			MaxOrder: c.Schedule.MaxOrder,
			Ramp:     c.Schedule.Ramp,
			Hold:     c.Schedule.Hold,
			Debounce: c.Schedule.Debounce,
		},
		Reveal: anim.Reveal{Duration: c.Reveal.Duration},
		Style: anim.Style{
			Padding:        v.Padding,
			RotationSpeed:  v.RotationSpeed,
			PulseAmplitude: v.PulseAmplitude,
			PulseHz:        v.PulseHz,
			LineWidth:      v.LineWidth,
			MinLineWidth:   v.MinLineWidth,
			LineThinning:   v.LineThinning,
			ColorDrift:     v.ColorDrift,
			MaxPixelRatio:  v.MaxPixelRatio,
		},
		Palette: c.ColorPalette(),
	}
}
