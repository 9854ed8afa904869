package anim

import "errors"

var (
	// ErrNoSurface means the host has no drawing surface; the effect is a no-op.
	ErrNoSurface = errors.New("dragonbg: drawing surface not present")

	// ErrReducedMotion means the user opted out of motion; the loop never starts.
	ErrReducedMotion = errors.New("dragonbg: reduced motion requested")

	// ErrDisabled is returned by Run once a frame has failed and drawing stopped.
	ErrDisabled = errors.New("dragonbg: driver disabled after a failed frame")
)

// Quiet reports whether err is one of the silent exit conditions.
func Quiet(err error) bool {
	return errors.Is(err, ErrNoSurface) || errors.Is(err, ErrReducedMotion)
}

// FrameError wraps a panic recovered while drawing a frame.
type FrameError struct {
	Elapsed float64
	Order   int
	Value   any
}

func (e *FrameError) Error() string {
	return "dragonbg: frame failed: " + formatPanic(e.Value)
}

func (e *FrameError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
