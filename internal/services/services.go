// package services defines the [VideoPlatform] interface and its YouTube implementation
package services

import (
	"context"
	"io"
	"time"
)

// VideoPlatform resolves playlists and videos on a remote platform and fetches audio streams.
type VideoPlatform interface {
	// Playlist resolves a playlist URL into its title and current videos, in playlist order.
	Playlist(ctx context.Context, url string) (*RemotePlaylist, error)

	// Video fetches full metadata for a single video URL.
	Video(ctx context.Context, url string) (*RemoteVideo, error)

	// DownloadAudio writes the video's audio-only stream to w and returns the file extension
	// (without a dot) that matches the stream's container.
	DownloadAudio(ctx context.Context, video *RemoteVideo, w io.Writer) (string, error)

	// Name returns the name of the platform (e.g., "YouTube")
	Name() string
}

// RemotePlaylist is a playlist as listed by the platform.
type RemotePlaylist struct {
	ID     string
	Title  string
	URL    string
	Videos []RemoteVideo
}

// RemoteVideo is a single video as reported by the platform.
//
// URL is the watch URL as the platform spells it; callers canonicalize it before comparing.
type RemoteVideo struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
	URL      string
}

// VideoURLs returns the URL of every video in the playlist, in order.
func (p *RemotePlaylist) VideoURLs() []string {
	urls := make([]string, len(p.Videos))
	for i, v := range p.Videos {
		urls[i] = v.URL
	}
	return urls
}
