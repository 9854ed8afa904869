package anim

import "log/slog"

// Host is the environment the effect runs in.
type Host interface {
	// Surface returns the drawing surface, or false when the host has none.
	Surface() (Surface, bool)
	Viewport() Viewport
	PrefersReducedMotion() bool
}

// Start checks the host's preconditions and returns a sized driver. The
// returned errors are quiet exits, see Quiet.
func Start(h Host, cfg Config) (*Driver, error) {
	s, ok := h.Surface()
	if !ok || s == nil {
		Logger().Debug("no drawing surface, effect disabled")
		return nil, ErrNoSurface
	}
	if h.PrefersReducedMotion() {
		Logger().Debug("reduced motion preferred, effect disabled")
		return nil, ErrReducedMotion
	}
	d := New(s, cfg)
	vp := h.Viewport()
	d.Resize(vp)
	Logger().Info("dragon background started",
		slog.Int("min_order", cfg.Schedule.MinOrder),
		slog.Int("max_order", cfg.Schedule.MaxOrder),
		slog.Float64("width", vp.Width),
		slog.Float64("height", vp.Height))
	return d, nil
}
