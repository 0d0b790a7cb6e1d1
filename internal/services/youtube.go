package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/kkdai/youtube/v2"
	"golang.org/x/time/rate"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	HTTPClient        *http.Client  // defaults to a client with HTTPTimeout
	HTTPTimeout       time.Duration // per HTTP request
	VideoTimeout      time.Duration // per playlist lookup, video lookup or stream download
	RequestsPerSecond float64       // <= 0 disables rate limiting
	Logger            *log.Logger
}

// YouTubeService implements [VideoPlatform] with github.com/kkdai/youtube.
//
// Calls are spaced out by a token bucket limiter and each one runs under its own deadline.
type YouTubeService struct {
	client       *youtube.Client
	limiter      *rate.Limiter
	videoTimeout time.Duration
	logger       *log.Logger

	// videos caches full metadata fetched by Video so DownloadAudio can reuse the format list.
	videos sync.Map
}

// NewYouTubeService creates a new YouTube service instance.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.HTTPTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	videoTimeout := opts.VideoTimeout
	if videoTimeout <= 0 {
		videoTimeout = 10 * time.Minute
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &YouTubeService{
		client:       &youtube.Client{HTTPClient: httpClient},
		limiter:      newLimiter(opts.RequestsPerSecond),
		videoTimeout: videoTimeout,
		logger:       shared.WithLogger(logger, "component", "youtube"),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// wait blocks on the rate limiter and returns a context bounded by the per-call timeout.
func (y *YouTubeService) wait(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, nil, platformError("rate limiter", err)
	}
	ctx, cancel := context.WithTimeout(ctx, y.videoTimeout)
	return ctx, cancel, nil
}

// Playlist resolves a playlist URL into its videos.
func (y *YouTubeService) Playlist(ctx context.Context, url string) (*RemotePlaylist, error) {
	ctx, cancel, err := y.wait(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	pl, err := y.client.GetPlaylistContext(ctx, url)
	if err != nil {
		return nil, platformError("fetching playlist", err)
	}

	result := &RemotePlaylist{ID: pl.ID, Title: pl.Title, URL: url}
	for _, entry := range pl.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		result.Videos = append(result.Videos, RemoteVideo{
			ID:       entry.ID,
			Title:    entry.Title,
			Author:   entry.Author,
			Duration: entry.Duration,
			URL:      watchURL(entry.ID),
		})
	}

	y.logger.Debug("resolved playlist", "id", pl.ID, "title", pl.Title, "videos", len(result.Videos))
	return result, nil
}

// Video fetches metadata for a single video.
func (y *YouTubeService) Video(ctx context.Context, url string) (*RemoteVideo, error) {
	ctx, cancel, err := y.wait(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	v, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, platformError("fetching video", err)
	}
	y.videos.Store(v.ID, v)

	return &RemoteVideo{
		ID:       v.ID,
		Title:    v.Title,
		Author:   v.Author,
		Duration: v.Duration,
		URL:      watchURL(v.ID),
	}, nil
}

// DownloadAudio streams the highest bitrate audio-only format of video into w.
func (y *YouTubeService) DownloadAudio(ctx context.Context, video *RemoteVideo, w io.Writer) (string, error) {
	ctx, cancel, err := y.wait(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	var v *youtube.Video
	if cached, ok := y.videos.LoadAndDelete(video.ID); ok {
		v = cached.(*youtube.Video)
	} else {
		id := video.ID
		if id == "" {
			id = video.URL
		}
		if v, err = y.client.GetVideoContext(ctx, id); err != nil {
			return "", platformError("fetching video", err)
		}
	}

	format := pickAudioFormat(v.Formats)
	if format == nil {
		return "", fmt.Errorf("%w: %s", shared.ErrNoAudioStream, v.ID)
	}

	stream, size, err := y.client.GetStreamContext(ctx, v, format)
	if err != nil {
		return "", platformError("starting stream", err)
	}
	defer stream.Close()

	n, err := io.Copy(w, stream)
	if err != nil {
		return "", platformError("downloading stream", err)
	}
	if size > 0 && n != size {
		return "", fmt.Errorf("%w: %s: got %d of %d bytes", shared.ErrDownloadFailed, v.ID, n, size)
	}

	y.logger.Debug("downloaded audio", "id", v.ID, "itag", format.ItagNo, "bytes", n)
	return mimeToExt(format.MimeType), nil
}

// pickAudioFormat returns the audio-only format with the highest bitrate, or nil.
func pickAudioFormat(formats youtube.FormatList) *youtube.Format {
	candidates := make([]*youtube.Format, 0, len(formats))
	for i := range formats {
		if strings.HasPrefix(formats[i].MimeType, "audio/") {
			candidates = append(candidates, &formats[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Bitrate > candidates[j].Bitrate
	})
	return candidates[0]
}

// mimeToExt maps an audio mime type (parameters allowed) to a file extension.
func mimeToExt(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	_, subtype, ok := strings.Cut(strings.TrimSpace(mime), "/")
	if !ok || subtype == "" {
		return "bin"
	}
	switch subtype {
	case "mp4":
		return "m4a"
	case "mpeg":
		return "mp3"
	case "3gpp":
		return "3gp"
	default:
		return subtype
	}
}

func watchURL(id string) string {
	return watchURLPrefix + id
}

// platformError classifies err from the youtube client into the shared sentinels.
func platformError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", shared.ErrTimeout, op, err)
	case errors.Is(err, youtube.ErrInvalidPlaylist),
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %s: %w", shared.ErrInvalidInput, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", shared.ErrPlatform, op, err)
	}
}
