package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dragonbg/internal/export"
	"github.com/san-kum/dragonbg/internal/storage"
)

func newRecordCmd() *cobra.Command {
	var (
		name          string
		width, height int
		ratio         float64
		at            time.Duration
		frames        int
		rate          int
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "render a numbered png sequence into the data directory",
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

			st := storage.New(dataDir)
			opts := export.Options{Width: width, Height: height, PixelRatio: ratio, Background: cfg.Background}
			id, err := st.Save(name, cfg.Anim(), opts, at, frames, rate)
			if err != nil {
				return err
			}
			fmt.Printf("sequence saved: %s (%d frames)\n", id, frames)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "dragon", "sequence name prefix")
	f.IntVar(&width, "width", 640, "width in CSS pixels")
	f.IntVar(&height, "height", 480, "height in CSS pixels")
	f.Float64Var(&ratio, "ratio", 1, "device pixel ratio")
	f.DurationVar(&at, "at", 0, "elapsed animation time of the first frame")
	f.IntVar(&frames, "frames", 120, "frame count")
	f.IntVar(&rate, "rate", 30, "frames per second of animation time")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list recorded sequences",
		RunE: func(cmd *cobra.Command, args []string) error {
			seqs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(seqs) == 0 {
				fmt.Println("no sequences found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tSIZE\tFRAMES\tFPS\tSTART\tORDERS")
			for _, s := range seqs {
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%.2fs\t%d..%d\n",
					s.ID,
					s.Timestamp.Format("2006-01-02 15:04:05"),
					s.Width, s.Height,
					s.Frames,
					s.FPS,
					s.Start,
					s.MinOrder, s.MaxOrder,
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "plot <id>",
		Short: "plot order and reveal progress of a recorded sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			frames, err := st.LoadFrames(args[0])
			if err != nil {
				return err
			}
			if len(frames) == 0 {
				return fmt.Errorf("no frames to plot")
			}

			fmt.Printf("sequence: %s\n", meta.ID)
			fmt.Printf("frames:   %d at %d fps from %.2fs\n", len(frames), meta.FPS, meta.Start)
			for _, name := range []string{"fps", "frame_ms", "revealed"} {
				if v, ok := meta.Metrics[name]; ok {
					fmt.Printf("%-9s %.3f\n", name+":", v)
				}
			}
			fmt.Println()

			order := make([]float64, len(frames))
			reveal := make([]float64, len(frames))
			for i, fr := range frames {
				order[i] = float64(fr.Order)
				reveal[i] = fr.Reveal
			}
			fmt.Println(asciigraph.Plot(order,
				asciigraph.Height(8),
				asciigraph.Width(width),
				asciigraph.Caption("curve order"),
			))
			fmt.Println()
			fmt.Println(asciigraph.Plot(reveal,
				asciigraph.Height(8),
				asciigraph.Width(width),
				asciigraph.Caption("reveal fraction"),
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 72, "plot width")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "delete recorded sequences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			for _, id := range args {
				if err := st.Delete(id); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", id)
			}
			return nil
		},
	}
}

func newArchiveCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "pack a recorded sequence into a .tar.zst file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + ".tar.zst"
			}
			w, closeOut, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := storage.New(dataDir).Archive(args[0], w); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default <id>.tar.zst)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.tar.zst>",
		Short: "unpack an archived sequence into the data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			id, err := storage.New(dataDir).Import(f)
			if err != nil {
				return err
			}
			fmt.Printf("imported %s\n", id)
			return nil
		},
	}
}

func newFindCmd() *cobra.Command {
	var (
		f     storage.Filter
		since time.Duration
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "search recorded sequences through the sqlite index",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := storage.New(dataDir)
			idx, err := storage.OpenIndex(filepath.Join(dataDir, "index.db"))
			if err != nil {
				return err
			}
			defer idx.Close()

			if _, err := idx.Sync(ctx, st); err != nil {
				return err
			}
			if since > 0 {
				f.Since = time.Now().Add(-since)
			}
			found, err := idx.Query(ctx, f)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("no matching sequences")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tREACHED")
			for _, e := range found {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					e.ID, e.Name, e.Created.Format("2006-01-02 15:04:05"), e.Frames, e.ReachedOrder)
			}
			return w.Flush()
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.Name, "name", "", "substring of the sequence name")
	fl.IntVar(&f.MinOrder, "reached", 0, "only sequences that reached at least this order")
	fl.DurationVar(&since, "since", 0, "only sequences recorded within this long")
	fl.IntVar(&f.Limit, "limit", 0, "maximum number of results")
	return cmd
}
