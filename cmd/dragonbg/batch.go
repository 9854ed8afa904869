package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragonbg/internal/automation"
	"github.com/san-kum/dragonbg/internal/storage"
)

func newBatchCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "batch <scenario.yaml>",
		Short: "run a scripted batch of exports",
		Args:  cobra.ExactArgs(1),
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
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := &automation.Runner{Base: cfg, Store: storage.New(dataDir), Dir: outDir, Logger: slog.Default()}
			results, err := r.Run(ctx, sc)
			printResults(results)
			return err
		},
	}
	cmd.Flags().StringVar(&outDir, "dir", ".", "directory for relative output paths")
	return cmd
}

func printResults(results []automation.Result) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tFORMAT\tOUTPUT\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", r.Step, r.Format, r.Path, r.Elapsed.Round(time.Millisecond))
	}
	w.Flush()
}

func newSweepCmd() *cobra.Command {
	var (
		sw     automation.Sweep
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "render one frame per value of a style parameter",
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

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := &automation.Runner{Base: cfg, Dir: outDir, Logger: slog.Default()}
			results, err := r.Sweep(ctx, sw)
			if len(results) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "%s\tORDER\tREVEAL\tFILE\n", strings.ToUpper(sw.Param))
				for _, res := range results {
					fmt.Fprintf(w, "%.4g\t%d\t%.2f\t%s\n", res.Value, res.State.Order, res.State.Reveal, res.Path)
				}
				w.Flush()
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&sw.Param, "param", "max_order", "parameter: "+strings.Join(automation.SweepParams(), ", "))
	f.Float64Var(&sw.Min, "min", 2, "first value")
	f.Float64Var(&sw.Max, "max", 14, "last value")
	f.IntVar(&sw.Steps, "steps", 7, "number of values")
	f.DurationVar(&sw.At, "at", 45*time.Second, "elapsed animation time of each frame")
	f.IntVar(&sw.Width, "width", 480, "width in pixels")
	f.IntVar(&sw.Height, "height", 360, "height in pixels")
	f.StringVar(&outDir, "dir", "sweep", "output directory")
	return cmd
}
