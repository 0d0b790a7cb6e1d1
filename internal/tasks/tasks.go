package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicplayer/internal/library"
	"github.com/desertthunder/musicplayer/internal/metrics"
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/services"
	"github.com/desertthunder/musicplayer/internal/shared"
)

// PlaylistStore is the subset of repositories.PlaylistRepository the engine needs.
type PlaylistStore interface {
	Create(playlist *models.Playlist) error
	Get(id int64) (*models.Playlist, error)
	ExistsByTitle(title string) (bool, error)
	ExistsByFolder(folder string) (bool, error)
	List() ([]models.Playlist, error)
	Delete(id int64) error
}

// SongStore is the subset of repositories.SongRepository the engine needs.
type SongStore interface {
	Create(song *models.Song) error
	ListByPlaylist(playlistID int64) ([]models.Song, error)
	DeleteMany(ids []int64) (int64, error)
}

// SyncResult describes what a create or update sync changed.
//
// On failure it still lists the songs committed before the error.
type SyncResult struct {
	Playlist *models.Playlist
	Added    []models.Song
	Removed  []models.Song
}

// EngineOpts carries the engine's dependencies.
type EngineOpts struct {
	Platform  services.VideoPlatform
	Playlists PlaylistStore
	Songs     SongStore
	Store     *library.Store
	Hosts     []string // accepted playlist URL hosts
	Logger    *log.Logger
}

// Engine runs create, update and delete syncs.
//
// Every song is committed on its own: the audio is written to a temp file, renamed into place and then
// recorded. If recording fails the file is removed, so rows and files stay paired. A failure aborts the
// sync but keeps songs already committed.
//
// Syncs of the same playlist are serialized. Update and delete refuse to run on a playlist whose
// initial download is still in progress.
type Engine struct {
	platform  services.VideoPlatform
	playlists PlaylistStore
	songs     SongStore
	store     *library.Store
	hosts     []string
	logger    *log.Logger

	locks *keyedMutex

	mu       sync.Mutex // guards title checks, folder claims and creating
	creating map[int64]bool
}

// NewEngine creates a new Engine with the provided dependencies.
func NewEngine(opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		platform:  opts.Platform,
		playlists: opts.Playlists,
		songs:     opts.Songs,
		store:     opts.Store,
		hosts:     opts.Hosts,
		logger:    shared.WithLogger(logger, "component", "sync"),
		locks:     newKeyedMutex(),
		creating:  map[int64]bool{},
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Create mirrors the playlist at rawURL into the library.
//
// Validation failures (bad URL, foreign host, duplicate title) leave no rows or files behind.
func (e *Engine) Create(ctx context.Context, rawURL string, progress chan<- ProgressUpdate) (result *SyncResult, err error) {
	start := time.Now()
	defer func() { observe(metrics.KindCreate, start, err) }()

	rawURL = strings.TrimSpace(rawURL)
	if err := shared.ValidatePlaylistURL(rawURL, e.hosts); err != nil {
		return nil, err
	}

	sendProgress(progress, resolveUpdate(rawURL))
	remote, err := e.platform.Playlist(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist: %w", err)
	}

	playlist, err := e.claim(remote, rawURL)
	if err != nil {
		return nil, err
	}
	defer e.release(playlist.ID)

	logger := shared.WithLogger(e.logger, "playlist_id", playlist.ID, "folder", playlist.Folder)
	logger.Info("created playlist", "title", playlist.Title, "videos", len(remote.Videos))

	result = &SyncResult{Playlist: playlist}
	videos := uniqueVideos(remote.Videos)
	for i, video := range videos {
		sendProgress(progress, downloadUpdate(i+1, len(videos), video.video.Title))

		song, err := e.addSong(ctx, playlist, video.video, video.key)
		if err != nil {
			logger.Error("download failed", "url", video.key, "err", err)
			return result, err
		}
		result.Added = append(result.Added, *song)
		sendProgress(progress, downloadedUpdate(i+1, len(videos), song))
	}

	sendProgress(progress, completeUpdate(playlist, len(result.Added), 0))
	return result, nil
}

// claim checks the title, reserves a folder and inserts the playlist row as one critical section, then
// marks the playlist as creating.
func (e *Engine) claim(remote *services.RemotePlaylist, rawURL string) (*models.Playlist, error) {
	title := remote.Title
	if strings.TrimSpace(title) == "" {
		title = remote.ID
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: playlist has no title", shared.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.playlists.ExistsByTitle(title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", shared.ErrDuplicatePlaylist, title)
	}

	folder := e.store.ResolveFolder(title)
	if taken, err := e.playlists.ExistsByFolder(folder); err != nil {
		return nil, err
	} else if taken {
		folder = shared.GenerateToken()
	}
	if err := e.store.CreateFolder(folder); err != nil {
		return nil, err
	}

	playlist := &models.Playlist{Title: title, Folder: folder, URL: rawURL}
	if err := e.playlists.Create(playlist); err != nil {
		if rmErr := e.store.RemoveFolder(folder); rmErr != nil {
			e.logger.Warn("failed to remove folder", "folder", folder, "err", rmErr)
		}
		return nil, err
	}

	e.creating[playlist.ID] = true
	return playlist, nil
}

func (e *Engine) release(id int64) {
	e.mu.Lock()
	delete(e.creating, id)
	e.mu.Unlock()
}

// lookup fetches a playlist unless its initial download is still running.
func (e *Engine) lookup(id int64) (*models.Playlist, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.creating[id] {
		return nil, fmt.Errorf("%w: %d", shared.ErrPlaylistBusy, id)
	}
	return e.playlists.Get(id)
}

// Update reconciles a stored playlist with the platform: new videos are downloaded first, then songs whose
// video disappeared are removed along with their files.
func (e *Engine) Update(ctx context.Context, id int64, progress chan<- ProgressUpdate) (result *SyncResult, err error) {
	start := time.Now()
	defer func() { observe(metrics.KindUpdate, start, err) }()

	unlock := e.locks.Lock(id)
	defer unlock()

	playlist, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	logger := shared.WithLogger(e.logger, "playlist_id", id, "folder", playlist.Folder)

	stored, err := e.songs.ListByPlaylist(id)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, resolveUpdate(playlist.URL))
	remote, err := e.platform.Playlist(ctx, playlist.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist: %w", err)
	}

	diff := Reconcile(stored, remote.VideoURLs())
	sendProgress(progress, reconcileUpdate(diff))
	logger.Info("reconciled playlist", "stored", len(stored), "remote", len(remote.Videos), "add", len(diff.ToAdd), "delete", len(diff.ToDelete))

	result = &SyncResult{Playlist: playlist}
	if diff.Empty() {
		logger.Info("playlist already up to date")
		sendProgress(progress, completeUpdate(playlist, 0, 0))
		return result, nil
	}

	for i, key := range diff.ToAdd {
		video, err := e.platform.Video(ctx, key)
		if err != nil {
			metrics.IncDownloadFailures()
			return result, fmt.Errorf("%w: %s: %w", shared.ErrDownloadFailed, key, err)
		}
		sendProgress(progress, downloadUpdate(i+1, len(diff.ToAdd), video.Title))

		song, err := e.addSong(ctx, playlist, *video, key)
		if err != nil {
			logger.Error("download failed", "url", key, "err", err)
			return result, err
		}
		result.Added = append(result.Added, *song)
		sendProgress(progress, downloadedUpdate(i+1, len(diff.ToAdd), song))
	}

	removed, err := e.removeSongs(playlist, diff.ToDelete)
	result.Removed = removed
	if err != nil {
		return result, err
	}
	sendProgress(progress, removeUpdate(len(removed)))

	sendProgress(progress, completeUpdate(playlist, len(result.Added), len(result.Removed)))
	return result, nil
}

// addSong downloads one video into the playlist folder and records it under key.
func (e *Engine) addSong(ctx context.Context, playlist *models.Playlist, video services.RemoteVideo, key string) (*models.Song, error) {
	base := e.store.ResolveFilename(playlist.Folder, video.Title)
	w, err := e.store.NewAudioWriter(playlist.Folder, base)
	if err != nil {
		return nil, err
	}

	ext, err := e.platform.DownloadAudio(ctx, &video, w)
	if err != nil {
		w.Abort()
		metrics.IncDownloadFailures()
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrDownloadFailed, key, err)
	}

	filename, err := w.Commit(ext)
	if err != nil {
		metrics.IncDownloadFailures()
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrDownloadFailed, key, err)
	}

	song := &models.Song{PlaylistID: playlist.ID, Title: video.Title, Filename: filename, URL: key}
	if err := e.songs.Create(song); err != nil {
		if rmErr := e.store.Remove(playlist.Folder, filename); rmErr != nil {
			e.logger.Warn("failed to remove orphaned file", "file", filename, "err", rmErr)
		}
		return nil, err
	}

	metrics.AddSongsDownloaded(1)
	return song, nil
}

// removeSongs deletes rows first and then files. File errors are collected so every file is attempted.
func (e *Engine) removeSongs(playlist *models.Playlist, songs []models.Song) ([]models.Song, error) {
	if len(songs) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	if _, err := e.songs.DeleteMany(ids); err != nil {
		return nil, err
	}

	var errs []error
	for _, s := range songs {
		if err := e.store.Remove(playlist.Folder, s.Filename); err != nil {
			errs = append(errs, err)
		}
	}
	metrics.AddSongsRemoved(len(songs))
	return songs, errors.Join(errs...)
}

// Delete removes a playlist, its songs and its folder. Unknown ids are a no-op.
func (e *Engine) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { observe(metrics.KindDelete, start, err) }()

	unlock := e.locks.Lock(id)
	defer unlock()

	playlist, err := e.lookup(id)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := e.playlists.Delete(id); err != nil {
		return err
	}
	if err := e.store.RemoveFolder(playlist.Folder); err != nil {
		return err
	}

	e.logger.Info("deleted playlist", "playlist_id", id, "title", playlist.Title)
	return nil
}

// Playlists lists every stored playlist.
func (e *Engine) Playlists(ctx context.Context) ([]models.Playlist, error) {
	playlists, err := e.playlists.List()
	if err != nil {
		return nil, err
	}
	metrics.SetPlaylists(len(playlists))
	return playlists, nil
}

// Playlist returns one stored playlist.
func (e *Engine) Playlist(ctx context.Context, id int64) (*models.Playlist, error) {
	return e.playlists.Get(id)
}

// Songs lists the songs of a playlist. Unknown ids yield an empty list.
func (e *Engine) Songs(ctx context.Context, id int64) ([]models.Song, error) {
	return e.songs.ListByPlaylist(id)
}

type keyedVideo struct {
	video services.RemoteVideo
	key   string
}

// uniqueVideos drops repeated entries so each canonical URL is downloaded once.
func uniqueVideos(videos []services.RemoteVideo) []keyedVideo {
	seen := make(map[string]bool, len(videos))
	out := make([]keyedVideo, 0, len(videos))
	for _, v := range videos {
		key := canonicalKey(v.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, keyedVideo{video: v, key: key})
	}
	return out
}

func observe(kind string, start time.Time, err error) {
	metrics.ObserveSyncDuration(kind, time.Since(start))
	if err != nil {
		metrics.IncSyncFailed(kind)
		return
	}
	metrics.IncSyncSucceeded(kind)
}
