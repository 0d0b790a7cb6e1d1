package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/kkdai/youtube/v2"
)

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService defaults", func(t *testing.T) {
		svc := NewYouTubeService(YouTubeOpts{})
		if svc.client.HTTPClient.Timeout != 30*time.Second {
			t.Errorf("expected default http timeout 30s, got %s", svc.client.HTTPClient.Timeout)
		}
		if svc.videoTimeout != 10*time.Minute {
			t.Errorf("expected default video timeout 10m, got %s", svc.videoTimeout)
		}
		if svc.Name() != "YouTube" {
			t.Errorf("expected name YouTube, got %s", svc.Name())
		}
	})

	t.Run("rate limiter", func(t *testing.T) {
		if l := newLimiter(0); !l.Allow() || !l.Allow() {
			t.Error("expected unlimited limiter when rps is 0")
		}

		l := newLimiter(0.001)
		if !l.Allow() {
			t.Error("expected first token to be available")
		}
		if l.Allow() {
			t.Error("expected second immediate call to be limited")
		}
	})

	t.Run("wait honours cancelled context", func(t *testing.T) {
		svc := NewYouTubeService(YouTubeOpts{RequestsPerSecond: 0.001})
		svc.limiter.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, _, err := svc.wait(ctx); !errors.Is(err, shared.ErrPlatform) {
			t.Errorf("expected ErrPlatform from limiter, got %v", err)
		}
	})
}

func TestPickAudioFormat(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
	}

	got := pickAudioFormat(formats)
	if got == nil || got.ItagNo != 251 {
		t.Fatalf("expected itag 251, got %+v", got)
	}

	if pickAudioFormat(formats[:1]) != nil {
		t.Error("expected nil when only muxed formats exist")
	}
}

func TestMimeToExt(t *testing.T) {
	tc := map[string]string{
		`audio/mp4; codecs="mp4a.40.2"`: "m4a",
		`audio/webm; codecs="opus"`:     "webm",
		"audio/mpeg":                    "mp3",
		"audio/ogg":                     "ogg",
		"garbage":                       "bin",
		"":                              "bin",
	}
	for in, want := range tc {
		if got := mimeToExt(in); got != want {
			t.Errorf("mimeToExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlatformError(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want error
	}{
		{name: "deadline", err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: shared.ErrTimeout},
		{name: "invalid playlist", err: youtube.ErrInvalidPlaylist, want: shared.ErrInvalidInput},
		{name: "other", err: errors.New("boom"), want: shared.ErrPlatform},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := platformError("op", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("expected original error to be preserved, got %v", got)
			}
		})
	}
}

func TestRemotePlaylistVideoURLs(t *testing.T) {
	p := &RemotePlaylist{Videos: []RemoteVideo{{URL: watchURL("a")}, {URL: watchURL("b")}}}
	urls := p.VideoURLs()
	if len(urls) != 2 || urls[1] != "https://www.youtube.com/watch?v=b" {
		t.Errorf("unexpected urls %v", urls)
	}
}
