package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/config"
	"github.com/san-kum/dragonbg/internal/gui"
	"github.com/san-kum/dragonbg/internal/palette"
	"github.com/san-kum/dragonbg/internal/server"
	"github.com/san-kum/dragonbg/internal/tui"
)

var (
	configFile    string
	dataDir       string
	preset        string
	theme         string
	logLevel      string
	logFile       string
	minOrder      int
	maxOrder      int
	fps           int
	reducedMotion bool
	status        bool
	// gui
	winWidth  int
	winHeight int
	// serve
	addr      string
	streamFPS int
)

// main registers the commands and runs the terminal view when no subcommand
// is given. It exits with status 1 on error; the quiet exits (no surface,
// reduced motion) are not errors.
func main() {
	rootCmd := &cobra.Command{
		Use:           "dragonbg",
		Short:         "animated dragon curve background",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", ".dragonbg", "directory for recorded frame sequences")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&theme, "theme", "", "built-in colour theme: "+strings.Join(palette.ThemeNames(), ", "))
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.IntVar(&minOrder, "min-order", config.DefaultMinOrder, "lowest curve order in the cycle")
	pf.IntVar(&maxOrder, "max-order", config.DefaultMaxOrder, "highest curve order in the cycle")
	pf.BoolVar(&reducedMotion, "reduced-motion", false, "behave as if reduced motion were preferred")
	rootCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	rootCmd.Flags().BoolVar(&status, "status", false, "show the status line")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run in the terminal",
		RunE:  runTUI,
	}
	tuiCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	tuiCmd.Flags().BoolVar(&status, "status", false, "show the status line")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a desktop window",
		RunE:  runGUI,
	}
	guiCmd.Flags().IntVar(&winWidth, "width", 1280, "window width")
	guiCmd.Flags().IntVar(&winHeight, "height", 720, "window height")
	guiCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	guiCmd.Flags().BoolVar(&status, "status", false, "show the status overlay")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve frames and a live stream over http",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	serveCmd.Flags().IntVar(&streamFPS, "stream-fps", config.DefaultStreamFPS, "websocket frame rate")

	rootCmd.AddCommand(tuiCmd, guiCmd, serveCmd,
		newRenderCmd(), newRecordCmd(), newListCmd(), newPlotCmd(), newRemoveCmd(), newFindCmd(),
		newArchiveCmd(), newImportCmd(), newBatchCmd(), newSweepCmd(),
		newScheduleCmd(), newTraceCmd(), newPresetsCmd(), newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		if anim.Quiet(err) {
			slog.Debug("effect not started", slog.Any("reason", err))
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogging installs a text handler at --log-level. Hosts that own the
// terminal pass quiet so logs do not corrupt the screen unless --log-file
// is given.
func setupLogging(quiet bool) (func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		w, closeFn = f, func() { f.Close() }
	case quiet:
		w = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	anim.SetLogger(logger)
	return closeFn, nil
}

// loadConfig resolves the configuration: flag > preset > file > default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	if preset != "" {
		apply, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		apply(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Palette.Name = theme
		cfg.Palette.Theme = nil
	}
	if flags.Changed("min-order") {
		cfg.Schedule.MinOrder = minOrder
	}
	if flags.Changed("max-order") {
		cfg.Schedule.MaxOrder = maxOrder
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("stream-fps") {
		cfg.StreamFPS = streamFPS
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// themeName is the built-in theme the configuration resolves to, or "" for
// custom colours.
func themeName(cfg *config.Config) string {
	if len(cfg.Palette.Theme) > 0 {
		return ""
	}
	return cfg.Palette.Name
}

func runTUI(cmd *cobra.Command, args []string) error {
	done, err := setupLogging(true)
	if err != nil {
		return err
	}
	defer done()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Config:        cfg.Anim(),
		Theme:         themeName(cfg),
		FPS:           cfg.FPS,
		Status:        status,
		ReducedMotion: reducedMotion,
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	done, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer done()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return gui.Run(gui.Options{
		Config:        cfg.Anim(),
		Theme:         themeName(cfg),
		Width:         winWidth,
		Height:        winHeight,
		FPS:           cfg.FPS,
		Background:    cfg.Background,
		Status:        status,
		ReducedMotion: reducedMotion,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	done, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer done()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	srv := server.New(server.Config{
		Anim:       cfg.Anim(),
		Background: cfg.Background,
		StreamFPS:  cfg.StreamFPS,
		Logger:     logger,
	})
	return server.ListenAndServe(ctx, addr, srv.Routes(), logger)
}
