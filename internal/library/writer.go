package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/musicplayer/internal/shared"
)

// AudioWriter receives a download into a hidden temp file inside the playlist folder and moves it into
// place on [AudioWriter.Commit], so an interrupted download never leaves a partial song behind.
type AudioWriter struct {
	dir     string
	base    string
	tmpPath string
	file    *os.File
	done    bool
}

// NewAudioWriter creates the playlist folder if needed and opens a temp file for a song named base.
func (s *Store) NewAudioWriter(folder, base string) (*AudioWriter, error) {
	if err := s.CreateFolder(folder); err != nil {
		return nil, err
	}
	dir, _ := s.Dir(folder)

	base = shared.SecureFilename(base)
	if base == "" {
		base = shared.GenerateToken()
	}

	tmp, err := os.CreateTemp(dir, ".download-*.part")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &AudioWriter{dir: dir, base: base, tmpPath: tmp.Name(), file: tmp}, nil
}

// Write writes data to the temporary file.
func (w *AudioWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Commit flushes the temp file and renames it to base.ext, returning the final filename.
//
// If that name was taken in the meantime a random token is used with the same extension.
func (w *AudioWriter) Commit(ext string) (string, error) {
	if w.done {
		return "", fmt.Errorf("audio writer already closed")
	}
	w.done = true

	if err := w.file.Sync(); err != nil {
		w.discard()
		return "", fmt.Errorf("sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return "", fmt.Errorf("close: %w", err)
	}

	name := withExt(w.base, ext)
	if exists(filepath.Join(w.dir, name)) {
		name = withExt(shared.GenerateToken(), ext)
	}

	if err := os.Rename(w.tmpPath, filepath.Join(w.dir, name)); err != nil {
		os.Remove(w.tmpPath)
		return "", fmt.Errorf("rename: %w", err)
	}
	return name, nil
}

// Abort discards the temporary file. Calling it after Commit is a no-op.
func (w *AudioWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.discard()
}

func (w *AudioWriter) discard() {
	w.file.Close()
	os.Remove(w.tmpPath)
}

func withExt(base, ext string) string {
	ext = shared.SecureFilename(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return base
	}
	return base + "." + ext
}
