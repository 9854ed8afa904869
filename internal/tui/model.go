// Package tui runs the dragon curve in a terminal using braille dots.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/metrics"
	"github.com/san-kum/dragonbg/internal/palette"
	"github.com/san-kum/dragonbg/internal/surface"
)

const (
	width  = 80
	height = 24
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

type frameMsg time.Time

type Options struct {
	Config        anim.Config
	Theme         string // name of the built-in theme in use, if any
	FPS           int
	Status        bool
	ReducedMotion bool
}

// host adapts a braille canvas to anim.Host.
type host struct {
	canvas  *surface.Braille
	reduced bool
}

func (h host) Surface() (anim.Surface, bool) { return h.canvas, h.canvas != nil }
func (h host) PrefersReducedMotion() bool    { return h.reduced }

func (h host) Viewport() anim.Viewport {
	w, ht := h.canvas.Size()
	return anim.Viewport{Width: w, Height: ht, PixelRatio: 1}
}

type Model struct {
	opts   Options
	canvas *surface.Braille
	driver *anim.Driver
	stats  *metrics.Set

	elapsed time.Duration
	last    time.Time
	paused  bool
	status  bool
	theme   string

	width, height int
	err           error
}

// New starts a driver on a default sized canvas. The returned error is
// quiet (see anim.Quiet) when the effect should not run at all.
func New(opts Options) (Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	opts.Config.Style = opts.Config.Style.Coarse()
	m := Model{opts: opts, status: opts.Status, theme: opts.Theme, width: width, height: height}
	m.canvas = surface.NewBraille(width, m.canvasRows())
	d, err := anim.Start(host{canvas: m.canvas, reduced: opts.ReducedMotion}, opts.Config)
	if err != nil {
		return Model{}, err
	}
	m.driver = d
	m.stats = metrics.Default()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) canvasRows() int {
	if m.status {
		return max(m.height-1, 1)
	}
	return max(m.height, 1)
}

func (m Model) resize() {
	m.driver.Resize(anim.Viewport{
		Width:      float64(2 * m.width),
		Height:     float64(4 * m.canvasRows()),
		PixelRatio: 1,
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.paused = !m.paused
		case "s":
			m.status = !m.status
			m.resize()
		case "t":
			th := palette.NextTheme(m.theme)
			m.theme = th.Name
			m.opts.Config.Palette = th.Palette()
			m.driver.SetPalette(m.opts.Config.Palette)
		case "r":
			m.driver = anim.New(m.canvas, m.opts.Config)
			m.resize()
			m.elapsed = 0
			m.stats.Reset()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 1), max(msg.Height, 1)
		m.resize()
	case frameMsg:
		now := time.Time(msg)
		var interval time.Duration
		if !m.last.IsZero() {
			interval = now.Sub(m.last)
			if !m.paused {
				m.elapsed += interval
			}
		}
		m.last = now
		begin := time.Now()
		if err := m.driver.TickAt(m.elapsed); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.stats.Observe(metrics.Sample{Interval: interval, Cost: time.Since(begin), State: m.driver.State()})
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}
	out := m.canvas.Render()
	if m.status {
		out += "\n" + m.statusLine()
	}
	return out
}

func (m Model) statusLine() string {
	st := m.driver.State()
	line := statusStyle.Render(" order ") + valueStyle.Render(fmt.Sprintf("%d", st.Order)) +
		statusStyle.Render("  segments ") + valueStyle.Render(fmt.Sprintf("%d", st.Segments)) +
		statusStyle.Render("  reveal ") + valueStyle.Render(fmt.Sprintf("%3.0f%%", st.Reveal*100)) +
		statusStyle.Render("  t ") + valueStyle.Render(fmt.Sprintf("%.1fs", m.elapsed.Seconds()))
	if fps, ok := m.stats.Get("fps"); ok && fps > 0 {
		cost, _ := m.stats.Get("frame_ms")
		line += statusStyle.Render("  fps ") + valueStyle.Render(fmt.Sprintf("%.0f", fps)) +
			statusStyle.Render(" ") + valueStyle.Render(fmt.Sprintf("%.1fms", cost))
	}
	if m.theme != "" {
		line += statusStyle.Render("  theme ") + valueStyle.Render(m.theme)
	}
	if m.paused {
		line += "  " + pausedStyle.Render("paused")
	}
	return line + statusStyle.Render("  [space] pause [t] theme [s] status [r] restart [q] quit")
}

// Err reports the frame error that ended the program, if any.
func (m Model) Err() error { return m.err }

func (m Model) Driver() *anim.Driver { return m.driver }

// Run starts the program on the alternate screen and blocks until it quits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
