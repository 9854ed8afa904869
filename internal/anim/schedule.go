package anim

import (
	"time"

	"github.com/san-kum/dragonbg/internal/curve"
)

// Schedule is the ramp-and-hold growth policy.
type Schedule struct {
	MinOrder int
	MaxOrder int
	Ramp     time.Duration
	Hold     time.Duration
	// Debounce is the minimum time between two rebuilds.
	Debounce time.Duration
}

func (s Schedule) bounds() (int, int) {
	lo := curve.ClampOrder(s.MinOrder)
	hi := curve.ClampOrder(s.MaxOrder)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Cycle is the length of one ramp plus hold.
func (s Schedule) Cycle() time.Duration {
	return max(s.Ramp, 0) + max(s.Hold, 0)
}

// TargetOrder returns the order the curve should have at elapsed. The ramp
// is split into equal slots, one per order, so MaxOrder is reached in the
// last slot of the ramp and then held.
func (s Schedule) TargetOrder(elapsed time.Duration) int {
	lo, hi := s.bounds()
	if s.Ramp <= 0 {
		return hi
	}
	if elapsed < 0 {
		elapsed = 0
	}
	t := elapsed % s.Cycle()
	if t >= s.Ramp {
		return hi
	}
	span := hi - lo + 1
	o := lo + int(float64(span)*float64(t)/float64(s.Ramp))
	return min(o, hi)
}

// Reveal is the progressive pen-draw of a freshly built curve.
type Reveal struct {
	Duration time.Duration
}

// Fraction returns how much of the path is drawn since the last build, in
// [0, 1]. It is non-decreasing in since and stays at 1 once Duration passed.
func (r Reveal) Fraction(since time.Duration) float64 {
	if r.Duration <= 0 {
		return 1
	}
	if since <= 0 {
		return 0
	}
	f := float64(since) / float64(r.Duration)
	if f > 1 {
		return 1
	}
	return f
}
