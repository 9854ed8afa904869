// Package metrics accumulates per-frame statistics for the hosts' status
// displays and logs.
package metrics

import (
	"sort"
	"time"

	"github.com/san-kum/dragonbg/internal/anim"
)

// Sample describes one rendered frame.
type Sample struct {
	Interval time.Duration // since the previous frame
	Cost     time.Duration // time spent in Driver.TickAt
	State    anim.AnimationState
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// FrameRate is an exponential moving average of frames per second.
type FrameRate struct {
	alpha float64
	fps   float64
}

func NewFrameRate(alpha float64) *FrameRate {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.1
	}
	return &FrameRate{alpha: alpha}
}

func (f *FrameRate) Name() string { return "fps" }

func (f *FrameRate) Observe(s Sample) {
	if s.Interval <= 0 {
		return
	}
	inst := float64(time.Second) / float64(s.Interval)
	if f.fps == 0 {
		f.fps = inst
		return
	}
	f.fps += f.alpha * (inst - f.fps)
}

func (f *FrameRate) Value() float64 { return f.fps }
func (f *FrameRate) Reset()         { f.fps = 0 }

// FrameCost is the mean render time in milliseconds.
type FrameCost struct {
	total   time.Duration
	samples int
}

func NewFrameCost() *FrameCost { return &FrameCost{} }

func (c *FrameCost) Name() string { return "frame_ms" }

func (c *FrameCost) Observe(s Sample) {
	c.total += s.Cost
	c.samples++
}

func (c *FrameCost) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.total) / float64(c.samples) / float64(time.Millisecond)
}

func (c *FrameCost) Reset() {
	c.total = 0
	c.samples = 0
}

// Revealed is the fraction of frames that showed the whole curve.
type Revealed struct {
	full    int
	samples int
}

func NewRevealed() *Revealed { return &Revealed{} }

func (r *Revealed) Name() string { return "revealed" }

func (r *Revealed) Observe(s Sample) {
	r.samples++
	if s.State.Reveal >= 1 {
		r.full++
	}
}

func (r *Revealed) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.full) / float64(r.samples)
}

func (r *Revealed) Reset() {
	r.full = 0
	r.samples = 0
}

// Set feeds every sample to a group of metrics.
type Set struct {
	metrics []Metric
	frames  int
}

func NewSet(ms ...Metric) *Set { return &Set{metrics: ms} }

// Default returns fps, frame cost and reveal coverage.
func Default() *Set {
	return NewSet(NewFrameRate(0.1), NewFrameCost(), NewRevealed())
}

func (s *Set) Observe(sample Sample) {
	s.frames++
	for _, m := range s.metrics {
		m.Observe(sample)
	}
}

func (s *Set) Frames() int { return s.frames }

// Get returns the named metric's value.
func (s *Set) Get(name string) (float64, bool) {
	for _, m := range s.metrics {
		if m.Name() == name {
			return m.Value(), true
		}
	}
	return 0, false
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the metric names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	sort.Strings(names)
	return names
}

func (s *Set) Reset() {
	s.frames = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}
