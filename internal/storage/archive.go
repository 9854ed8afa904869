package storage

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var ErrExists = errors.New("storage: sequence already exists")

// Archive writes sequence id as a zstd-compressed tar stream. Entries are
// named <id>/<file>.
func (s *Store) Archive(id string, w io.Writer) error {
	if err := checkID(id); err != nil {
		return err
	}
	dir := filepath.Join(s.baseDir, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	tw := tar.NewWriter(enc)

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := addFile(tw, id, filepath.Join(dir, e.Name())); err != nil {
			enc.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func addFile(tw *tar.Writer, id, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = path.Join(id, fi.Name())
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// Import unpacks an archive written by Archive into the store and returns
// the sequence id. Entries outside a single top-level directory are
// rejected.
func (s *Store) Import(r io.Reader) (string, error) {
	dec, err := zstd.NewReader(bufio.NewReader(r))
	if err != nil {
		return "", err
	}
	defer dec.Close()

	if err := s.Init(); err != nil {
		return "", err
	}

	tr := tar.NewReader(dec)
	var id, dir string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", s.abortImport(dir, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		entryID, name, ok := strings.Cut(hdr.Name, "/")
		if !ok || checkID(entryID) != nil || checkID(name) != nil {
			return "", s.abortImport(dir, fmt.Errorf("storage: bad archive entry %q", hdr.Name))
		}
		if id == "" {
			id, dir = entryID, filepath.Join(s.baseDir, entryID)
			if err := os.Mkdir(dir, 0755); err != nil {
				if os.IsExist(err) {
					return "", fmt.Errorf("%w: %s", ErrExists, id)
				}
				return "", err
			}
		} else if entryID != id {
			return "", s.abortImport(dir, fmt.Errorf("storage: archive holds more than one sequence"))
		}

		if err := writeEntry(filepath.Join(dir, name), tr); err != nil {
			return "", s.abortImport(dir, err)
		}
	}

	if id == "" {
		return "", errors.New("storage: empty archive")
	}
	if _, err := s.Load(id); err != nil {
		return "", s.abortImport(dir, err)
	}
	return id, nil
}

func (s *Store) abortImport(dir string, err error) error {
	if dir != "" {
		os.RemoveAll(dir)
	}
	return err
}

func writeEntry(p string, r io.Reader) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
