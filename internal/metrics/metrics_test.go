package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/dragonbg/internal/anim"
)

func TestFrameRate(t *testing.T) {
	m := NewFrameRate(0.5)
	m.Observe(Sample{Interval: 0})
	if m.Value() != 0 {
		t.Error("zero intervals should be ignored")
	}

	m.Observe(Sample{Interval: 20 * time.Millisecond})
	if math.Abs(m.Value()-50) > 1e-9 {
		t.Errorf("expected 50 fps, got %f", m.Value())
	}
	m.Observe(Sample{Interval: 10 * time.Millisecond})
	if math.Abs(m.Value()-75) > 1e-9 {
		t.Errorf("expected 75 fps, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestFrameCost(t *testing.T) {
	m := NewFrameCost()
	if m.Value() != 0 {
		t.Error("expected zero without samples")
	}
	m.Observe(Sample{Cost: 2 * time.Millisecond})
	m.Observe(Sample{Cost: 4 * time.Millisecond})
	if math.Abs(m.Value()-3) > 1e-9 {
		t.Errorf("expected 3ms, got %f", m.Value())
	}
}

func TestRevealed(t *testing.T) {
	m := NewRevealed()
	for _, r := range []float64{0, 0.5, 1, 1} {
		m.Observe(Sample{State: anim.AnimationState{Reveal: r}})
	}
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSet(t *testing.T) {
	s := Default()
	s.Observe(Sample{Interval: 16 * time.Millisecond, Cost: time.Millisecond, State: anim.AnimationState{Reveal: 1}})

	if s.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", s.Frames())
	}
	if v, ok := s.Get("revealed"); !ok || v != 1 {
		t.Errorf("revealed = %v, %v", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("unknown metric should not be found")
	}
	vals := s.Values()
	if len(vals) != 3 || vals["frame_ms"] != 1 {
		t.Errorf("unexpected values %v", vals)
	}
	if got := s.Names(); got[0] != "fps" || got[1] != "frame_ms" || got[2] != "revealed" {
		t.Errorf("unexpected names %v", got)
	}

	s.Reset()
	if s.Frames() != 0 || s.Values()["fps"] != 0 {
		t.Error("expected reset")
	}
}
