// package models defines the data model for the music library
package models

import (
	"fmt"
	"strings"
)

// Model is implemented by every persisted entity.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Playlist is a remote playlist mirrored into the library.
//
// Folder is the directory under the upload root holding the playlist's audio files.
type Playlist struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Folder string `json:"folder"`
	URL    string `json:"url"`
}

// Song is a downloaded video's audio track.
//
// URL is the canonical video URL and identifies the song within its playlist.
// Filename is the name actually written to disk, extension included.
type Song struct {
	ID         int64  `json:"id"`
	PlaylistID int64  `json:"playlist_id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
}

// Validate checks that the playlist can be stored.
func (p *Playlist) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("playlist title is required")
	case p.Folder == "":
		return fmt.Errorf("playlist folder is required")
	case strings.ContainsAny(p.Folder, `/\`) || p.Folder == "." || p.Folder == "..":
		return fmt.Errorf("playlist folder %q is not a single path segment", p.Folder)
	case p.URL == "":
		return fmt.Errorf("playlist url is required")
	}
	return nil
}

// Validate checks that the song can be stored.
func (s *Song) Validate() error {
	switch {
	case s.PlaylistID <= 0:
		return fmt.Errorf("song playlist id is required")
	case s.Filename == "":
		return fmt.Errorf("song filename is required")
	case strings.ContainsAny(s.Filename, `/\`) || s.Filename == "." || s.Filename == "..":
		return fmt.Errorf("song filename %q is not a single path segment", s.Filename)
	case s.URL == "":
		return fmt.Errorf("song url is required")
	}
	return nil
}

// SongURLs returns the URL of every song, in order.
func SongURLs(songs []Song) []string {
	urls := make([]string, len(songs))
	for i, s := range songs {
		urls[i] = s.URL
	}
	return urls
}
