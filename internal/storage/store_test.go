package storage

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/export"
)

func testConfig() anim.Config {
	cfg := anim.DefaultConfig()
	cfg.Schedule = anim.Schedule{MinOrder: 2, MaxOrder: 5, Ramp: 2 * time.Second, Hold: time.Second}
	cfg.Reveal = anim.Reveal{Duration: 200 * time.Millisecond}
	return cfg
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	opt := export.Options{Width: 40, Height: 30, PixelRatio: 1, Background: "#000000"}
	id, err := st.Save("test", testConfig(), opt, 500*time.Millisecond, 3, 10)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty sequence id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Frames != 3 || meta.FPS != 10 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.MinOrder != 2 || meta.MaxOrder != 5 {
		t.Errorf("expected orders 2..5, got %d..%d", meta.MinOrder, meta.MaxOrder)
	}
	if meta.Start != 0.5 {
		t.Errorf("expected start 0.5, got %v", meta.Start)
	}
	if _, ok := meta.Metrics["revealed"]; !ok {
		t.Errorf("expected revealed metric, got %v", meta.Metrics)
	}

	frames, err := st.LoadFrames(id)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i, fr := range frames {
		if fr.Index != i {
			t.Errorf("frame %d has index %d", i, fr.Index)
		}
		if fr.Order < 2 || fr.Order > 5 {
			t.Errorf("frame %d order %d out of range", i, fr.Order)
		}
	}
	if frames[1].Time != 0.6 {
		t.Errorf("expected second frame at 0.6s, got %v", frames[1].Time)
	}

	f, err := os.Open(st.FramePath(id, frames[0]))
	if err != nil {
		t.Fatalf("open frame: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("expected 40x30 frame, got %v", b)
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	opt := export.Options{Width: 8, Height: 8, PixelRatio: 1}

	a, err := st.Save("", testConfig(), opt, 0, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save("", testConfig(), opt, 0, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("expected distinct ids, both %q", a)
	}

	seqs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 2 {
		t.Errorf("expected 2 sequences, got %d", len(seqs))
	}
	for _, s := range seqs {
		if s.Name != "dragon" {
			t.Errorf("expected default name, got %q", s.Name)
		}
	}
}

func TestStoreSaveFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if _, err := st.Save("bad", testConfig(), export.Options{}, 0, 1, 10); !errors.Is(err, export.ErrSize) {
		t.Fatalf("expected size error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected failed sequence to be removed, found %d entries", len(entries))
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	seqs, err := New(filepath.Join(dir, "missing")).List()
	if err != nil || len(seqs) != 0 {
		t.Errorf("missing dir should list nothing, got %v, %v", seqs, err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk", metaFile), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	seqs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 0 {
		t.Errorf("bad metadata should be skipped, got %d", len(seqs))
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadFrames("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadFrames: expected ErrNotFound, got %v", err)
	}
	if err := st.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save("gone", testConfig(), export.Options{Width: 8, Height: 8}, 0, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted sequence to be gone, got %v", err)
	}
}

func TestStoreArchiveImport(t *testing.T) {
	src := New(t.TempDir())
	id, err := src.Save("shared", testConfig(), export.Options{Width: 16, Height: 12}, 0, 2, 10)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.Archive(id, &buf); err != nil {
		t.Fatalf("archive: %v", err)
	}

	dst := New(t.TempDir())
	got, err := dst.Import(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got != id {
		t.Errorf("expected id %q, got %q", id, got)
	}
	frames, err := dst.LoadFrames(id)
	if err != nil || len(frames) != 2 {
		t.Fatalf("expected 2 frames after import, got %d (%v)", len(frames), err)
	}
	if _, err := os.Stat(dst.FramePath(id, frames[1])); err != nil {
		t.Errorf("frame image missing: %v", err)
	}

	if _, err := dst.Import(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists on second import, got %v", err)
	}
	if err := src.Archive("nope", &buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreImportRejectsGarbage(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Import(strings.NewReader("not an archive")); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestIndex(t *testing.T) {
	dir := t.TempDir()
	st := New(filepath.Join(dir, "seq"))
	ctx := context.Background()

	low, err := st.Save("low", testConfig(), export.Options{Width: 8, Height: 8}, 0, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	high, err := st.Save("high", testConfig(), export.Options{Width: 8, Height: 8}, 1900*time.Millisecond, 1, 10)
	if err != nil {
		t.Fatal(err)
	}

	idx, err := OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	n, err := idx.Sync(ctx, st)
	if err != nil || n != 2 {
		t.Fatalf("sync: %d, %v", n, err)
	}

	all, err := idx.Query(ctx, Filter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d (%v)", len(all), err)
	}

	byName, err := idx.Query(ctx, Filter{Name: "hig"})
	if err != nil || len(byName) != 1 || byName[0].ID != high {
		t.Errorf("name filter: %v, %v", byName, err)
	}

	// order 2 at t=0, order 5 once the 2s ramp is nearly over
	deep, err := idx.Query(ctx, Filter{MinOrder: 4})
	if err != nil || len(deep) != 1 || deep[0].ID != high {
		t.Errorf("order filter: %v, %v", deep, err)
	}

	if err := st.Delete(low); err != nil {
		t.Fatal(err)
	}
	if n, err := idx.Sync(ctx, st); err != nil || n != 1 {
		t.Fatalf("resync: %d, %v", n, err)
	}
	all, _ = idx.Query(ctx, Filter{Limit: 5})
	if len(all) != 1 || all[0].ID != high {
		t.Errorf("expected only %s after delete, got %v", high, all)
	}
}

func TestStoreMetadataFailureCleansUp(t *testing.T) {
	orig := writeMetadata
	t.Cleanup(func() { writeMetadata = orig })
	diskFull := errors.New("no space left on device")
	writeMetadata = func(string, any) error { return diskFull }

	dir := t.TempDir()
	st := New(dir)
	id, err := st.Save("full", testConfig(), export.Options{Width: 8, Height: 8}, 0, 2, 10)
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected disk error, got %v", err)
	}
	if id != "" {
		t.Errorf("expected no id on failure, got %q", id)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected half-written sequence to be removed, found %d entries", len(entries))
	}
}

func TestStoreMeasuresRecordingRate(t *testing.T) {
	orig := clock
	t.Cleanup(func() { clock = orig })
	var ticks time.Duration
	base := time.Unix(1000, 0)
	clock = func() time.Time {
		ticks += 250 * time.Millisecond
		return base.Add(ticks)
	}

	st := New(t.TempDir())
	id, err := st.Save("timed", testConfig(), export.Options{Width: 8, Height: 8}, 0, 4, 10)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	// Two clock reads per frame: 500ms per frame, 250ms of it rendering.
	if got := meta.Metrics["fps"]; got != 2 {
		t.Errorf("expected measured fps 2, got %v", got)
	}
	if got := meta.Metrics["frame_ms"]; got != 250 {
		t.Errorf("expected frame_ms 250, got %v", got)
	}
	if meta.FPS != 10 {
		t.Errorf("expected animation rate 10 in metadata, got %d", meta.FPS)
	}
}

func TestStoreRejectsEscapingIDs(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "other")
	if err := os.MkdirAll(outside, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outside, metaFile), []byte(`{"id":"other"}`), 0644); err != nil {
		t.Fatal(err)
	}
	st := New(filepath.Join(root, "data"))

	for _, id := range []string{"../other", "..", "a/b", `a\b`, ""} {
		if _, err := st.Load(id); !errors.Is(err, ErrBadID) {
			t.Errorf("Load(%q): expected ErrBadID, got %v", id, err)
		}
		if _, err := st.LoadFrames(id); !errors.Is(err, ErrBadID) {
			t.Errorf("LoadFrames(%q): expected ErrBadID, got %v", id, err)
		}
		if err := st.Delete(id); !errors.Is(err, ErrBadID) {
			t.Errorf("Delete(%q): expected ErrBadID, got %v", id, err)
		}
		if err := st.Archive(id, &bytes.Buffer{}); !errors.Is(err, ErrBadID) {
			t.Errorf("Archive(%q): expected ErrBadID, got %v", id, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outside, metaFile)); err != nil {
		t.Errorf("directory outside the store was touched: %v", err)
	}

	if _, err := st.Save("../x", testConfig(), export.Options{Width: 8, Height: 8}, 0, 1, 10); !errors.Is(err, ErrBadID) {
		t.Errorf("Save: expected ErrBadID, got %v", err)
	}
	if entries, _ := os.ReadDir(root); len(entries) != 1 {
		t.Errorf("expected only the outside directory, found %d entries", len(entries))
	}
}
