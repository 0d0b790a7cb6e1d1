// package library manages the on-disk audio library: one folder per playlist, one file per song.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/musicplayer/internal/shared"
)

// Store resolves and manipulates paths under a single upload root.
//
// Every folder and filename passed in is reduced with [shared.SecureFilename] before it touches the
// filesystem, so callers can't escape the root.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root. The directory is created by [Store.Init].
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the upload directory.
func (s *Store) Root() string { return s.root }

// Init creates the upload directory if it doesn't exist.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// ResolveFolder picks a folder name for a new playlist titled title.
//
// The sanitized title is used unless it is empty or already present under the root, in which case a
// random token is returned instead.
func (s *Store) ResolveFolder(title string) string {
	name := shared.SecureFilename(title)
	if name == "" || exists(filepath.Join(s.root, name)) {
		return shared.GenerateToken()
	}
	return name
}

// ResolveFilename picks the base name (without extension) for a song titled title in folder.
//
// The extension is only known once the download starts, so any existing entry named base or
// base.<anything> counts as a collision and yields a random token.
func (s *Store) ResolveFilename(folder, title string) string {
	base := shared.SecureFilename(title)
	if base == "" {
		return shared.GenerateToken()
	}

	dir, err := s.Dir(folder)
	if err != nil {
		return shared.GenerateToken()
	}
	if baseTaken(dir, base) {
		return shared.GenerateToken()
	}
	return base
}

func baseTaken(dir, base string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if name == base || strings.HasPrefix(name, base+".") {
			return true
		}
	}
	return false
}

// Dir returns the absolute-or-root-relative directory of folder.
func (s *Store) Dir(folder string) (string, error) {
	name := shared.SecureFilename(folder)
	if name == "" {
		return "", fmt.Errorf("%w: folder %q", shared.ErrInvalidPathSegment, folder)
	}
	return filepath.Join(s.root, name), nil
}

// Path returns the location of filename inside folder.
func (s *Store) Path(folder, filename string) (string, error) {
	dir, err := s.Dir(folder)
	if err != nil {
		return "", err
	}
	name := shared.SecureFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: filename %q", shared.ErrInvalidPathSegment, filename)
	}
	return filepath.Join(dir, name), nil
}

// CreateFolder creates folder under the root.
func (s *Store) CreateFolder(folder string) error {
	dir, err := s.Dir(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", folder, err)
	}
	return nil
}

// Open opens a song file for reading. A missing file yields an error wrapping [shared.ErrNotFound].
func (s *Store) Open(folder, filename string) (*os.File, error) {
	p, err := s.Path(folder, filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrNotFound, folder, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open song: %w", err)
	}
	return f, nil
}

// Exists reports whether folder/filename is present.
func (s *Store) Exists(folder, filename string) bool {
	p, err := s.Path(folder, filename)
	return err == nil && exists(p)
}

// Remove deletes one song file. A file that is already gone is not an error.
func (s *Store) Remove(folder, filename string) error {
	p, err := s.Path(folder, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

// RemoveFolder deletes a playlist folder and everything in it. A missing folder is not an error.
func (s *Store) RemoveFolder(folder string) error {
	dir, err := s.Dir(folder)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove folder %s: %w", folder, err)
	}
	return nil
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
