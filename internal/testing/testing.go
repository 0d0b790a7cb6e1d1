// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/musicplayer/internal/services"
)

// FakePlatform is an in-memory [services.VideoPlatform].
//
// Playlists are keyed by the exact URL passed to [FakePlatform.SetPlaylist]; videos are looked up by
// their "v" query parameter so www and bare hosts resolve to the same video.
type FakePlatform struct {
	mu        sync.Mutex
	playlists map[string]services.RemotePlaylist
	videos    map[string]services.RemoteVideo

	PlaylistErr  error            // returned by every Playlist call when set
	VideoErr     map[string]error // per video id
	DownloadErr  map[string]error // per video id
	Ext          string           // extension reported by DownloadAudio, "m4a" by default
	Downloads    []string         // ids passed to DownloadAudio, in order
	VideoLookups []string         // urls passed to Video, in order
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		playlists:   map[string]services.RemotePlaylist{},
		videos:      map[string]services.RemoteVideo{},
		VideoErr:    map[string]error{},
		DownloadErr: map[string]error{},
	}
}

// FakeVideo builds a video with a www watch URL, the form playlist listings report.
func FakeVideo(id, title string) services.RemoteVideo {
	return services.RemoteVideo{ID: id, Title: title, URL: "https://www.youtube.com/watch?v=" + id}
}

// SetPlaylist registers or replaces the playlist served at playlistURL.
func (f *FakePlatform) SetPlaylist(playlistURL, title string, videos ...services.RemoteVideo) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.playlists[playlistURL] = services.RemotePlaylist{
		ID:     playlistURL,
		Title:  title,
		URL:    playlistURL,
		Videos: append([]services.RemoteVideo(nil), videos...),
	}
	for _, v := range videos {
		f.videos[v.ID] = v
	}
}

func (f *FakePlatform) Name() string { return "fake" }

func (f *FakePlatform) Playlist(ctx context.Context, playlistURL string) (*services.RemotePlaylist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PlaylistErr != nil {
		return nil, f.PlaylistErr
	}
	p, ok := f.playlists[playlistURL]
	if !ok {
		return nil, fmt.Errorf("fake: no playlist at %s", playlistURL)
	}
	p.Videos = append([]services.RemoteVideo(nil), p.Videos...)
	return &p, nil
}

// Video returns the registered video with a bare-host URL, the form single video lookups report.
func (f *FakePlatform) Video(ctx context.Context, videoURL string) (*services.RemoteVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.VideoLookups = append(f.VideoLookups, videoURL)

	u, err := url.Parse(videoURL)
	if err != nil {
		return nil, err
	}
	id := u.Query().Get("v")
	if err := f.VideoErr[id]; err != nil {
		return nil, err
	}
	v, ok := f.videos[id]
	if !ok {
		return nil, fmt.Errorf("fake: no video %q", id)
	}
	v.URL = "https://youtube.com/watch?v=" + id
	return &v, nil
}

// DownloadAudio writes "audio:<id>" to w.
func (f *FakePlatform) DownloadAudio(ctx context.Context, video *services.RemoteVideo, w io.Writer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.Downloads = append(f.Downloads, video.ID)
	err := f.DownloadErr[video.ID]
	ext := f.Ext
	f.mu.Unlock()

	if err != nil {
		io.WriteString(w, "partial")
		return "", err
	}
	if _, err := io.WriteString(w, "audio:"+video.ID); err != nil {
		return "", err
	}
	if ext == "" {
		ext = "m4a"
	}
	return ext, nil
}

// DownloadCount returns how many downloads were attempted.
func (f *FakePlatform) DownloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Downloads)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// CountFiles returns the number of regular files directly inside dir.
func CountFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatalf("Failed to read dir %s: %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n
}
