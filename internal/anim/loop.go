package anim

import (
	"context"
	"time"
)

// Run drives d from a frame clock until ctx is done or frames is closed.
// Resizes arrive on resizes and are applied between frames, so both run on
// the calling goroutine. A nil resizes channel is fine.
func Run(ctx context.Context, d *Driver, frames <-chan time.Time, resizes <-chan Viewport) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case vp := <-resizes:
			d.Resize(vp)
		case now, ok := <-frames:
			if !ok {
				return nil
			}
			if err := d.Tick(now); err != nil {
				return ErrDisabled
			}
		}
	}
}

// Ticker returns a frame channel firing fps times per second and a stop
// function. Frames are dropped rather than queued when a frame runs long.
func Ticker(fps int) (<-chan time.Time, func()) {
	if fps <= 0 {
		fps = 60
	}
	t := time.NewTicker(time.Second / time.Duration(fps))
	return t.C, t.Stop
}
