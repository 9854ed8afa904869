// Package curve generates the dragon curve on an integer lattice.
//
// The curve of order n is described by its turn sequence:
//
//	T(0) = []
//	T(n) = T(n-1) ++ [Right] ++ reverse(invert(T(n-1)))
//
// Walking the sequence from the origin, heading right, yields a [Path] of
// 2^n + 1 grid points where consecutive points differ by one unit step.
//
// # Example
//
//	c := curve.Build(10)
//	fmt.Println(len(c.Path), c.Bounds)
//
// Everything here is pure and allocation-bounded by [MaxOrder].
package curve
