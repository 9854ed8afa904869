package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/dragonbg/internal/config"
	"github.com/san-kum/dragonbg/internal/storage"
)

const scenarioYAML = `
name: smoke
description: one of each
steps:
  - format: png
    width: 64
    height: 48
    at: 2s
    out: out/frame.png
  - format: svg
    preset: calm
    theme: ocean
    width: 64
    height: 48
    out: out/frame.svg
  - format: sequence
    width: 32
    height: 24
    frames: 2
    fps: 10
    out: seq
`

func writeScenario(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	sc, err := LoadScenario(writeScenario(t, dir, scenarioYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Steps[0].At != 2*time.Second {
		t.Errorf("expected at 2s, got %v", sc.Steps[0].At)
	}

	st := storage.New(filepath.Join(dir, "data"))
	r := &Runner{Store: st, Dir: dir}
	results, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, res := range results[:2] {
		if _, err := os.Stat(res.Path); err != nil {
			t.Errorf("step %d: %v", res.Step, err)
		}
	}
	svg, err := os.ReadFile(filepath.Join(dir, "out", "frame.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("expected an svg document")
	}

	meta, err := st.Load(results[2].Path)
	if err != nil {
		t.Fatalf("sequence not stored: %v", err)
	}
	if meta.Frames != 2 || meta.Name != "seq" {
		t.Errorf("unexpected sequence metadata %+v", meta)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "name: x\n", "invalid scenario"},
		{"no steps", "steps: []\n", "invalid scenario"},
		{"format", "steps:\n  - format: bmp\n    out: a\n", "invalid scenario"},
		{"unknown key", "steps:\n  - format: png\n    out: a\n    colour: red\n", "invalid scenario"},
		{"bad duration", "steps:\n  - format: png\n    out: a\n    at: soon\n", "invalid scenario"},
		{"out", "steps:\n  - format: png\n", "out is required"},
		{"preset", "steps:\n  - format: png\n    out: a\n    preset: nope\n", "unknown preset"},
		{"theme", "steps:\n  - format: png\n    out: a\n    theme: nope\n", "unknown theme"},
		{"negative", "steps:\n  - format: png\n    out: a\n    width: -1\n", "invalid scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, t.TempDir(), tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		sc   Scenario
		want string
	}{
		{"empty", Scenario{}, "no steps"},
		{"format", Scenario{Steps: []Step{{Format: "bmp", Out: "a"}}}, "unknown format"},
		{"negative", Scenario{Steps: []Step{{Format: "png", Out: "a", Frames: -1}}}, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := &Scenario{Steps: []Step{{Format: "png", Out: "x.png"}}}
	results, err := (&Runner{Dir: t.TempDir()}).Run(ctx, sc)
	if !errors.Is(err, context.Canceled) || len(results) != 0 {
		t.Errorf("expected cancellation before any step, got %v, %d results", err, len(results))
	}
}

func TestSequenceNeedsStore(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Format: "sequence", Width: 8, Height: 8, Frames: 1}}}
	if _, err := (&Runner{}).Run(context.Background(), sc); err == nil {
		t.Error("expected an error without a store")
	}
}

func TestStepConfig(t *testing.T) {
	base := config.DefaultConfig()
	base.Schedule.MaxOrder = 9

	cfg := Step{}.config(base)
	if cfg == base || cfg.Schedule.MaxOrder != 9 {
		t.Error("expected a copy of the base config")
	}
	cfg = Step{Preset: "dense", Theme: "sunset"}.config(base)
	if cfg.Schedule.MaxOrder != 16 || cfg.Palette.Name != "sunset" {
		t.Errorf("expected dense preset with sunset theme, got %+v", cfg.Schedule)
	}
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Dir: dir}
	results, err := r.Sweep(context.Background(), Sweep{
		Param: "max_order", Min: 2, Max: 6, Steps: 3,
		At: time.Minute, Width: 48, Height: 32,
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []float64{2, 4, 6} {
		if results[i].Value != want {
			t.Errorf("step %d value %v, want %v", i, results[i].Value, want)
		}
		if _, err := os.Stat(results[i].Path); err != nil {
			t.Errorf("step %d: %v", i, err)
		}
	}
	if filepath.Base(results[1].Path) != "max_order_01.png" {
		t.Errorf("unexpected file name %s", results[1].Path)
	}
}

func TestSweepErrors(t *testing.T) {
	r := &Runner{Dir: t.TempDir()}
	if _, err := r.Sweep(context.Background(), Sweep{Param: "gravity", Steps: 2}); err == nil {
		t.Error("expected unknown parameter error")
	}
	if _, err := r.Sweep(context.Background(), Sweep{Param: "padding", Steps: 0}); err == nil {
		t.Error("expected step count error")
	}
	_, err := r.Sweep(context.Background(), Sweep{Param: "line_width", Min: 0, Max: 0, Steps: 1, Width: 8, Height: 8})
	if err == nil || !strings.Contains(err.Error(), "line_width") {
		t.Errorf("expected validation error for zero line width, got %v", err)
	}
}

func TestSweepParams(t *testing.T) {
	got := strings.Join(SweepParams(), ",")
	if !strings.HasPrefix(got, "color_drift,line_width,max_order") {
		t.Errorf("unexpected params %s", got)
	}
}
