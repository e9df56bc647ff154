// Package storage provides the durable file storage area for submission
// images. Two namespaces exist under the root: "original" for raw uploads
// and "swapped" for transformation results. Generated names never reuse
// client-supplied filenames, so concurrent requests cannot contend on a path.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Namespace directory names under the storage root.
const (
	OriginalDir = "original"
	SwappedDir  = "swapped"
)

// Store manages the on-disk storage areas.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating both namespace directories
// if absent. Directory creation is idempotent.
func New(root string) (*Store, error) {
	for _, ns := range []string{OriginalDir, SwappedDir} {
		if err := os.MkdirAll(filepath.Join(root, ns), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", ns, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// SwappedRoot returns the directory holding transformation results,
// for static file serving.
func (s *Store) SwappedRoot() string {
	return filepath.Join(s.root, SwappedDir)
}

// NewOriginalName derives a collision-free name for an uploaded file from
// the current time plus a random token, keeping the original extension.
func (s *Store) NewOriginalName(ext string) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + token + normalizeExt(ext)
}

// NewSwappedName derives a time-sortable name for a transformation result.
func (s *Store) NewSwappedName(ext string) string {
	return "swap-" + strings.ToLower(ulid.Make().String()) + normalizeExt(ext)
}

// WriteOriginal streams r into the original area under name.
// Returns the full path and the byte count written.
func (s *Store) WriteOriginal(name string, r io.Reader) (string, int64, error) {
	return s.write(OriginalDir, name, r)
}

// WriteSwapped streams r into the swapped area under name.
func (s *Store) WriteSwapped(name string, r io.Reader) (string, int64, error) {
	return s.write(SwappedDir, name, r)
}

func (s *Store) write(ns, name string, r io.Reader) (string, int64, error) {
	// Reject any name that could escape the namespace directory.
	if name != filepath.Base(name) || name == "." || name == "" {
		return "", 0, fmt.Errorf("invalid storage name %q", name)
	}

	path := filepath.Join(s.root, ns, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("close %s: %w", path, err)
	}

	return path, n, nil
}

// Stat returns file info for a stored path.
func (s *Store) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether a stored file is still present on disk.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a stored file.
func (s *Store) Remove(path string) error {
	return os.Remove(path)
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}
