// Package anim drives the dragon curve background frame by frame.
//
// A [Driver] owns all time-based state: the order of the curve currently
// built, when it was built, how much of it is revealed and how the view is
// rotated and pulsed. Each call to [Driver.Tick] runs one frame to
// completion and issues drawing commands against a [Surface]; the package
// owns no pixels.
//
// # Growth policy
//
// The target order follows a ramp-and-hold [Schedule]: it rises linearly
// from MinOrder to MaxOrder over Ramp, stays at MaxOrder for Hold, then the
// cycle repeats. A changed target rebuilds the curve (at most once per
// Debounce) and restarts the [Reveal], which draws the path progressively.
//
// # Hosts
//
// Hosts supply the surface and the frame clock through [Host] and [Run].
// A missing surface or a reduced-motion preference makes [Start] return
// [ErrNoSurface] or [ErrReducedMotion]; hosts treat both as a quiet no-op.
//
// # Thread Safety
//
// A Driver is NOT safe for concurrent use. Ticks and resizes must come from
// the same goroutine, which is how every host in this module drives it.
package anim
