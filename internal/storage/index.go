package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a secondary sqlite catalogue of stored sequences. The sequence
// directories stay the source of truth; Sync rebuilds the index from them.
type Index struct {
	db *sql.DB
}

// Filter narrows a query. Zero fields match everything.
type Filter struct {
	Name     string // substring of the sequence name
	MinOrder int    // sequences reaching at least this order
	Since    time.Time
	Limit    int
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS sequences (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			frames INTEGER NOT NULL,
			fps INTEGER NOT NULL,
			start REAL NOT NULL,
			min_order INTEGER NOT NULL,
			max_order INTEGER NOT NULL,
			reached_order INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sequences_created ON sequences(created);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &Index{db: db}, nil
}

func (x *Index) Close() error { return x.db.Close() }

// Sync makes the index match the store: every readable sequence is upserted
// and rows for vanished sequences are dropped.
func (x *Index) Sync(ctx context.Context, s *Store) (int, error) {
	seqs, err := s.List()
	if err != nil {
		return 0, err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sequences"); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sequences
		(id, name, created, width, height, frames, fps, start, min_order, max_order, reached_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, m := range seqs {
		reached := m.MinOrder
		if frames, err := s.LoadFrames(m.ID); err == nil {
			for _, fr := range frames {
				reached = max(reached, fr.Order)
			}
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.Name, m.Timestamp.UnixNano(), m.Width, m.Height,
			m.Frames, m.FPS, m.Start, m.MinOrder, m.MaxOrder, reached); err != nil {
			return 0, fmt.Errorf("index %s: %w", m.ID, err)
		}
	}
	return len(seqs), tx.Commit()
}

// IndexEntry is one catalogue row.
type IndexEntry struct {
	ID           string
	Name         string
	Created      time.Time
	Width        int
	Height       int
	Frames       int
	FPS          int
	Start        float64
	MinOrder     int
	MaxOrder     int
	ReachedOrder int
}

// Query returns matching entries, newest first.
func (x *Index) Query(ctx context.Context, f Filter) ([]IndexEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Name != "" {
		where = append(where, "instr(name, ?) > 0")
		args = append(args, f.Name)
	}
	if f.MinOrder > 0 {
		where = append(where, "reached_order >= ?")
		args = append(args, f.MinOrder)
	}
	if !f.Since.IsZero() {
		where = append(where, "created >= ?")
		args = append(args, f.Since.UnixNano())
	}

	q := `SELECT id, name, created, width, height, frames, fps, start, min_order, max_order, reached_order
		FROM sequences`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created DESC, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]IndexEntry, 0)
	for rows.Next() {
		var (
			e       IndexEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &created, &e.Width, &e.Height, &e.Frames, &e.FPS,
			&e.Start, &e.MinOrder, &e.MaxOrder, &e.ReachedOrder); err != nil {
			return nil, err
		}
		e.Created = time.Unix(0, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
