package curve

import "math/bits"

// MaxOrder caps the recursion depth. 2^19 segments is the practical
// rendering ceiling.
const MaxOrder = 19

type Turn uint8

const (
	Left Turn = iota
	Right
)

func (t Turn) Invert() Turn { return t ^ 1 }

func (t Turn) String() string {
	if t == Right {
		return "R"
	}
	return "L"
}

// Turns is an immutable turn sequence of length 2^order - 1.
type Turns []Turn

// Order returns the recursion depth the sequence was built for.
func (ts Turns) Order() int {
	return bits.Len(uint(len(ts)))
}

// Grow returns the sequence of the next order. The receiver is not modified.
func (ts Turns) Grow() Turns {
	n := len(ts)
	next := make(Turns, 2*n+1)
	copy(next, ts)
	next[n] = Right
	for i := 0; i < n; i++ {
		next[n+1+i] = ts[n-1-i].Invert()
	}
	return next
}

func (ts Turns) String() string {
	b := make([]byte, len(ts))
	for i, t := range ts {
		b[i] = t.String()[0]
	}
	return string(b)
}

// BuildTurns builds the turn sequence for order, clamped to [0, MaxOrder].
func BuildTurns(order int) Turns {
	order = ClampOrder(order)
	ts := make(Turns, 0)
	for i := 0; i < order; i++ {
		ts = ts.Grow()
	}
	return ts
}

func ClampOrder(order int) int {
	if order < 0 {
		return 0
	}
	if order > MaxOrder {
		return MaxOrder
	}
	return order
}
