package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dragonbg/internal/config"
	"github.com/san-kum/dragonbg/internal/curve"
	"github.com/san-kum/dragonbg/internal/export"
)

func newRenderCmd() *cobra.Command {
	var (
		out           string
		width, height int
		ratio         float64
		at            time.Duration
		frames        int
		gifFPS        int
		cols, rows    int
		dotScale      float64
	)
	cmd := &cobra.Command{
		Use:       "render png|gif|svg|dots",
		Short:     "render frames to a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"png", "gif", "svg", "dots"},
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := setupLogging(false)
			if err != nil {
				return err
			}
			defer done()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeOut()

			a := cfg.Anim()
			opts := export.Options{Width: width, Height: height, PixelRatio: ratio, Background: cfg.Background}
			switch args[0] {
			case "png":
				err = export.PNG(w, a, opts, at)
			case "gif":
				err = export.GIF(w, a, opts, at, frames, gifFPS)
			case "svg":
				err = export.SVG(w, a, opts, at)
			case "dots":
				err = export.Dots(w, a, cols, rows, dotScale, cfg.Background, at)
			default:
				return fmt.Errorf("unknown format %q (want png, gif, svg or dots)", args[0])
			}
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", out)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	f.IntVar(&width, "width", 800, "width in CSS pixels")
	f.IntVar(&height, "height", 600, "height in CSS pixels")
	f.Float64Var(&ratio, "ratio", 1, "device pixel ratio")
	f.DurationVar(&at, "at", 10*time.Second, "elapsed animation time of the (first) frame")
	f.IntVar(&frames, "frames", 48, "gif frame count")
	f.IntVar(&gifFPS, "gif-fps", 12, "gif frame rate")
	f.IntVar(&cols, "cols", 80, "dots: character columns")
	f.IntVar(&rows, "rows", 24, "dots: character rows")
	f.Float64Var(&dotScale, "dot-scale", 6, "dots: distance between dots")
	return cmd
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func newScheduleCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "plot the target order over one cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s := cfg.Anim().Schedule
			cycle := s.Cycle()
			if cycle <= 0 || width < 2 {
				fmt.Printf("static schedule: order %d\n", s.TargetOrder(0))
				return nil
			}

			data := make([]float64, width)
			for i := range data {
				at := time.Duration(float64(cycle) * float64(i) / float64(width-1))
				data[i] = float64(s.TargetOrder(min(at, cycle-1)))
			}
			caption := fmt.Sprintf("target order over one %v cycle (ramp %v, hold %v)", cycle, s.Ramp, s.Hold)
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(max(s.MaxOrder-s.MinOrder, 4)),
				asciigraph.Width(width),
				asciigraph.Caption(caption),
			))
			fmt.Println()

			top := curve.ClampOrder(s.MaxOrder)
			fmt.Printf("order %d: %d segments, %d points\n", top, 1<<top, (1<<top)+1)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 72, "plot width")
	return cmd
}

func newTraceCmd() *cobra.Command {
	var (
		order   int
		asJSON  bool
		noPoint bool
	)
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "print the turn sequence and path of one order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if order < 0 || order > curve.MaxOrder {
				return fmt.Errorf("order must be in 0..%d", curve.MaxOrder)
			}
			c := curve.Build(order)
			if asJSON {
				return export.TraceJSON(os.Stdout, c)
			}
			b := c.Bounds
			fmt.Printf("order    %d\n", c.Order)
			fmt.Printf("segments %d\n", c.Segments())
			fmt.Printf("bounds   x %d..%d  y %d..%d\n", b.MinX, b.MaxX, b.MinY, b.MaxY)
			fmt.Printf("turns    %s\n", c.Turns)
			if !noPoint {
				pts := make([]string, len(c.Path))
				for i, p := range c.Path {
					pts[i] = p.String()
				}
				fmt.Printf("points   %s\n", strings.Join(pts, " "))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&order, "order", 3, "curve order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	cmd.Flags().BoolVar(&noPoint, "no-points", false, "omit the point list")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tORDERS\tRAMP\tHOLD\tREVEAL")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d..%d\t%v\t%v\t%v\n", name,
					p.Schedule.MinOrder, p.Schedule.MaxOrder, p.Schedule.Ramp, p.Schedule.Hold, p.Reveal.Duration)
			}
			w.Flush()
		},
	}
}

func newConfigCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if out != "" {
				return config.Save(out, cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
