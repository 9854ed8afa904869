package config

import (
	"sort"
	"time"
)

// Presets are applied on top of DefaultConfig; only the fields they set differ.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"calm": func(c *Config) {
		c.Schedule.MaxOrder = 12
		c.Schedule.Ramp = 60 * time.Second
		c.Schedule.Hold = 20 * time.Second
		c.Reveal.Duration = 4 * time.Second
		c.View.RotationSpeed = 0.02
		c.View.PulseAmplitude = 0.015
	},
	"dense": func(c *Config) {
		c.Schedule.MaxOrder = 16
		c.Schedule.Ramp = 48 * time.Second
		c.View.LineWidth = 1.5
		c.View.MinLineWidth = 0.5
	},
	"fast": func(c *Config) {
		c.Schedule.Ramp = 12 * time.Second
		c.Schedule.Hold = 4 * time.Second
		c.Schedule.Debounce = 100 * time.Millisecond
		c.Reveal.Duration = 800 * time.Millisecond
		c.View.RotationSpeed = 0.15
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
