// Package storage keeps rendered frame sequences on disk. Each sequence is a
// directory holding numbered PNG frames, a metadata.json describing how they
// were rendered and a frames.csv with the animation state of every frame.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/export"
	"github.com/san-kum/dragonbg/internal/metrics"
)

const (
	metaFile   = "metadata.json"
	framesFile = "frames.csv"
)

var (
	ErrNotFound = errors.New("storage: sequence not found")
	ErrBadID    = errors.New("storage: invalid sequence id")
)

// checkID rejects ids and names that could resolve outside the store
// directory.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return nil
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SequenceMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	PixelRatio float64            `json:"pixel_ratio"`
	Start      float64            `json:"start_seconds"`
	FPS        int                `json:"fps"`
	Frames     int                `json:"frames"`
	MinOrder   int                `json:"min_order"`
	MaxOrder   int                `json:"max_order"`
	Palette    []string           `json:"palette"`
	Metrics    map[string]float64 `json:"metrics"`
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Index    int
	Time     float64 // seconds
	Order    int
	Segments int
	Reveal   float64
	File     string
}

var frameHeader = []string{"frame", "time", "order", "segments", "reveal", "file"}

// Save renders frames frames at fps from start into a new sequence directory
// and returns its id. A failed save leaves nothing behind.
func (s *Store) Save(name string, cfg anim.Config, opt export.Options, start time.Duration, frames, fps int) (id string, err error) {
	if name == "" {
		name = "dragon"
	}
	if err := checkID(name); err != nil {
		return "", err
	}
	id, dir, err := s.newDir(name)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dir)
			id = ""
		}
	}()

	stats, err := writeFrames(dir, cfg, opt, start, frames, fps)
	if err != nil {
		return "", err
	}

	meta := SequenceMetadata{
		ID:         id,
		Name:       name,
		Timestamp:  time.Now(),
		Width:      opt.Width,
		Height:     opt.Height,
		PixelRatio: opt.PixelRatio,
		Start:      start.Seconds(),
		FPS:        fps,
		Frames:     frames,
		MinOrder:   cfg.Schedule.MinOrder,
		MaxOrder:   cfg.Schedule.MaxOrder,
		Palette:    cfg.Palette.Hex(),
		Metrics:    stats.Values(),
	}
	if err := writeMetadata(filepath.Join(dir, metaFile), meta); err != nil {
		return "", err
	}
	return id, nil
}

// writeFrames renders the PNG frames and frames.csv into dir. The csv file is
// closed before it returns.
func writeFrames(dir string, cfg anim.Config, opt export.Options, start time.Duration, frames, fps int) (*metrics.Set, error) {
	csvFile, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return nil, err
	}

	// fps and frame_ms measure recording throughput, not the animation rate.
	stats := metrics.Default()
	last := clock()
	err = export.Sequence(cfg, opt, start, frames, fps, func(i int, at time.Duration, img image.Image, st anim.AnimationState) error {
		rendered := clock()
		file := fmt.Sprintf("frame_%05d.png", i)
		if err := writePNG(filepath.Join(dir, file), img); err != nil {
			return err
		}
		now := clock()
		stats.Observe(metrics.Sample{Interval: now.Sub(last), Cost: rendered.Sub(last), State: st})
		last = now
		return w.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(at.Seconds(), 'f', 6, 64),
			strconv.Itoa(st.Order),
			strconv.Itoa(st.Segments),
			strconv.FormatFloat(st.Reveal, 'f', 6, 64),
			file,
		})
	})
	if err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := csvFile.Close(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) newDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Replaced in tests to control recording time and to simulate a failing disk.
var (
	clock         = time.Now
	writeMetadata = writeJSON
)

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns every readable sequence, newest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]SequenceMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SequenceMetadata{}, nil
		}
		return nil, err
	}

	seqs := make([]SequenceMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		seqs = append(seqs, *meta)
	}

	sort.SliceStable(seqs, func(i, j int) bool {
		return seqs[i].Timestamp.After(seqs[j].Timestamp)
	})
	return seqs, nil
}

func (s *Store) Load(id string) (*SequenceMetadata, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta SequenceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back. Malformed rows are skipped.
func (s *Store) LoadFrames(id string) ([]FrameRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	out := make([]FrameRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		var (
			fr   FrameRecord
			errs [5]error
		)
		fr.Index, errs[0] = strconv.Atoi(rec[0])
		fr.Time, errs[1] = strconv.ParseFloat(rec[1], 64)
		fr.Order, errs[2] = strconv.Atoi(rec[2])
		fr.Segments, errs[3] = strconv.Atoi(rec[3])
		fr.Reveal, errs[4] = strconv.ParseFloat(rec[4], 64)
		if errors.Join(errs[:]...) != nil {
			continue
		}
		fr.File = rec[5]
		out = append(out, fr)
	}
	return out, nil
}

// FramePath joins the store directory with a frame's file name.
func (s *Store) FramePath(id string, fr FrameRecord) string {
	return filepath.Join(s.baseDir, id, fr.File)
}

// Delete removes a sequence directory.
func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	dir := filepath.Join(s.baseDir, id)
	if _, err := os.Stat(filepath.Join(dir, metaFile)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return os.RemoveAll(dir)
}
