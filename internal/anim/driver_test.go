package anim_test

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/curve"
	"github.com/san-kum/dragonbg/internal/surface"
)

type fakeHost struct {
	surface  anim.Surface
	viewport anim.Viewport
	reduced  bool
}

func (h fakeHost) Surface() (anim.Surface, bool) { return h.surface, h.surface != nil }
func (h fakeHost) Viewport() anim.Viewport       { return h.viewport }
func (h fakeHost) PrefersReducedMotion() bool    { return h.reduced }

type brokenSurface struct{ *surface.Recorder }

func (brokenSurface) Stroke() { panic(errors.New("context lost")) }

func testConfig() anim.Config {
	cfg := anim.DefaultConfig()
	cfg.Schedule = anim.Schedule{
		MinOrder: 1,
		MaxOrder: 4,
		Ramp:     4 * time.Second,
		Hold:     time.Second,
		Debounce: 500 * time.Millisecond,
	}
	cfg.Reveal = anim.Reveal{Duration: time.Second}
	return cfg
}

func sec(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

var _ = Describe("Start", func() {
	It("is a quiet no-op without a surface", func() {
		d, err := anim.Start(fakeHost{}, testConfig())
		Expect(d).To(BeNil())
		Expect(err).To(MatchError(anim.ErrNoSurface))
		Expect(anim.Quiet(err)).To(BeTrue())
	})

	It("never starts when reduced motion is preferred", func() {
		h := fakeHost{surface: surface.NewRecorder(100, 100), reduced: true}
		d, err := anim.Start(h, testConfig())
		Expect(d).To(BeNil())
		Expect(err).To(MatchError(anim.ErrReducedMotion))
		Expect(anim.Quiet(err)).To(BeTrue())
	})

	It("sizes the surface in device pixels with a clamped ratio", func() {
		rec := surface.NewRecorder(0, 0)
		h := fakeHost{surface: rec, viewport: anim.Viewport{Width: 400, Height: 300, PixelRatio: 3}}
		_, err := anim.Start(h, testConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.W).To(Equal(800.0))
		Expect(rec.H).To(Equal(600.0))
	})
})

var _ = Describe("Driver", func() {
	var (
		rec *surface.Recorder
		d   *anim.Driver
	)

	BeforeEach(func() {
		rec = surface.NewRecorder(0, 0)
		d = anim.New(rec, testConfig())
		d.Resize(anim.Viewport{Width: 320, Height: 240, PixelRatio: 1})
	})

	Describe("building", func() {
		It("builds the minimum order on the first frame", func() {
			Expect(d.TickAt(0)).To(Succeed())
			st := d.State()
			Expect(st.Order).To(Equal(1))
			Expect(st.Segments).To(Equal(2))
			Expect(st.Builds).To(Equal(1))
		})

		It("grows one order at a time during the ramp", func() {
			for i, want := range []int{1, 2, 3, 4} {
				Expect(d.TickAt(sec(float64(i)))).To(Succeed())
				Expect(d.State().Order).To(Equal(want))
				Expect(d.Curve()).To(Equal(curve.Build(want)))
			}
			Expect(d.State().Builds).To(Equal(4))
		})

		It("holds and then restarts the cycle", func() {
			Expect(d.TickAt(sec(4.5))).To(Succeed())
			Expect(d.State().Order).To(Equal(4))
			Expect(d.TickAt(sec(5.1))).To(Succeed())
			Expect(d.State().Order).To(Equal(1))
			Expect(d.State().LastBuild).To(Equal(sec(5.1)))
		})

		It("debounces rebuilds", func() {
			cfg := testConfig()
			cfg.Schedule.Debounce = 1500 * time.Millisecond
			d = anim.New(rec, cfg)

			Expect(d.TickAt(0)).To(Succeed())
			Expect(d.TickAt(sec(1))).To(Succeed())
			Expect(d.State().Order).To(Equal(1))
			Expect(d.TickAt(sec(1.5))).To(Succeed())
			Expect(d.State().Order).To(Equal(2))
			Expect(d.State().Builds).To(Equal(2))
		})

		It("is deterministic for the same timeline", func() {
			other := anim.New(surface.NewRecorder(320, 240), testConfig())
			for _, s := range []float64{0, 0.7, 1.3, 2.2, 3.9} {
				Expect(d.TickAt(sec(s))).To(Succeed())
				Expect(other.TickAt(sec(s))).To(Succeed())
			}
			Expect(d.Curve()).To(Equal(other.Curve()))
			Expect(d.State()).To(Equal(other.State()))
		})
	})

	Describe("reveal", func() {
		BeforeEach(func() {
			cfg := testConfig()
			cfg.Schedule = anim.Schedule{MinOrder: 5, MaxOrder: 5}
			d = anim.New(rec, cfg)
			d.Resize(anim.Viewport{Width: 320, Height: 240, PixelRatio: 1})
		})

		It("draws nothing right after a build", func() {
			Expect(d.TickAt(0)).To(Succeed())
			frame := rec.Since(surface.OpClear)
			Expect(frame).To(BeEmpty())
		})

		It("reveals monotonically and completes after the duration", func() {
			prev := 0
			for s := 0.0; s <= 1.5; s += 0.05 {
				Expect(d.TickAt(sec(s))).To(Succeed())
				v := d.Visible()
				Expect(v).To(BeNumerically(">=", prev))
				prev = v
			}
			Expect(d.State().Reveal).To(Equal(1.0))
			Expect(d.Visible()).To(Equal(33))
			lines := 0
			for _, c := range rec.Since(surface.OpClear) {
				if c.Op == surface.OpLine {
					lines++
				}
			}
			Expect(lines).To(Equal(32))
		})
	})

	Describe("drawing", func() {
		It("balances save and restore and applies the pixel ratio first", func() {
			d.Resize(anim.Viewport{Width: 320, Height: 240, PixelRatio: 2})
			Expect(d.TickAt(0)).To(Succeed())
			Expect(d.TickAt(sec(0.99))).To(Succeed())
			frame := rec.Since(surface.OpClear)
			Expect(frame).NotTo(BeEmpty())
			Expect(frame[0].Op).To(Equal(surface.OpSave))
			Expect(frame[1].Op).To(Equal(surface.OpScale))
			Expect(frame[1].Args).To(Equal([]float64{2, 2}))
			Expect(rec.Count(surface.OpSave)).To(Equal(rec.Count(surface.OpRestore)))
		})

		It("colours segments as a pure function of index, count and time", func() {
			a := d.SegmentColor(7, 64, 1.25)
			b := d.SegmentColor(7, 64, 1.25)
			Expect(a).To(Equal(b))
			Expect(d.SegmentColor(0, 64, 0)).To(Equal(d.Config().Palette.At(0)))
		})
	})

	Describe("resize", func() {
		It("keeps the current curve", func() {
			Expect(d.TickAt(sec(2))).To(Succeed())
			before := d.State()
			d.Resize(anim.Viewport{Width: 1024, Height: 768, PixelRatio: 1})
			Expect(d.TickAt(sec(2.1))).To(Succeed())
			Expect(d.State().Builds).To(Equal(before.Builds))
			Expect(d.View().OriginX).To(Equal(512.0))
			Expect(d.View().OriginY).To(Equal(384.0))
		})

		It("survives degenerate bounds and an empty viewport", func() {
			cfg := testConfig()
			cfg.Schedule = anim.Schedule{}
			d = anim.New(rec, cfg)
			d.Resize(anim.Viewport{})
			Expect(d.TickAt(sec(5))).To(Succeed())
			step := d.View().Step
			Expect(math.IsNaN(step) || math.IsInf(step, 0)).To(BeFalse())
			Expect(step).To(BeNumerically(">", 0))
		})
	})

	Describe("failures", func() {
		It("disables drawing after a surface panic", func() {
			cfg := testConfig()
			cfg.Reveal = anim.Reveal{}
			d = anim.New(brokenSurface{surface.NewRecorder(100, 100)}, cfg)
			err := d.TickAt(sec(2))
			var fe *anim.FrameError
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Error()).To(ContainSubstring("context lost"))
			Expect(d.Disabled()).To(BeTrue())
			Expect(d.TickAt(sec(3))).To(MatchError(anim.ErrDisabled))
		})
	})
})

var _ = Describe("Run", func() {
	It("applies resizes between frames and stops when frames close", func() {
		rec := surface.NewRecorder(10, 10)
		d := anim.New(rec, testConfig())
		frames := make(chan time.Time)
		resizes := make(chan anim.Viewport)

		go func() {
			resizes <- anim.Viewport{Width: 50, Height: 40, PixelRatio: 1}
			frames <- time.Unix(100, 0)
			frames <- time.Unix(101, 0)
			close(frames)
		}()

		Expect(anim.Run(context.Background(), d, frames, resizes)).To(Succeed())
		Expect(rec.W).To(Equal(50.0))
		Expect(d.State().Elapsed).To(Equal(time.Second))
		Expect(d.State().Order).To(Equal(2))
	})

	It("returns the context error when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := anim.New(surface.NewRecorder(10, 10), testConfig())
		Expect(anim.Run(ctx, d, nil, nil)).To(MatchError(context.Canceled))
	})
})
