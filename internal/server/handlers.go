package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicplayer/internal/library"
	"github.com/desertthunder/musicplayer/internal/metrics"
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/desertthunder/musicplayer/internal/tasks"
)

// Syncer is the part of [tasks.Engine] the HTTP API drives.
type Syncer interface {
	Create(ctx context.Context, rawURL string, progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)
	Update(ctx context.Context, id int64, progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)
	Delete(ctx context.Context, id int64) error
	Playlists(ctx context.Context) ([]models.Playlist, error)
	Songs(ctx context.Context, id int64) ([]models.Song, error)
}

// APIOpts configures [NewAPI].
type APIOpts struct {
	Engine      Syncer
	Store       *library.Store
	SyncTimeout time.Duration
	Logger      *log.Logger
}

// API serves the playlist and song endpoints.
type API struct {
	engine      Syncer
	store       *library.Store
	syncTimeout time.Duration
	logger      *log.Logger
}

func NewAPI(opts APIOpts) *API {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{
		engine:      opts.Engine,
		store:       opts.Store,
		syncTimeout: opts.SyncTimeout,
		logger:      shared.WithLogger(logger, "component", "api"),
	}
}

// Register adds the API routes and the metrics endpoint to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/playlists", http.HandlerFunc(a.listPlaylists))
	r.Handle(http.MethodPost, "/playlists", http.HandlerFunc(a.createPlaylist))
	r.Handle(http.MethodGet, "/playlists/{id}/songs", http.HandlerFunc(a.listSongs))
	r.Handle(http.MethodPost, "/playlists/{id}/sync", http.HandlerFunc(a.syncPlaylist))
	r.Handle(http.MethodPost, "/playlists/{id}", http.HandlerFunc(a.deletePlaylist))
	r.Handle(http.MethodDelete, "/playlists/{id}", http.HandlerFunc(a.deletePlaylist))
	r.Handle(http.MethodGet, "/songs/{folder}/{filename}", http.HandlerFunc(a.playSong))
	r.Handle(http.MethodGet, "/metrics", metrics.Handler())
}

// syncContext detaches the sync from the client connection and bounds it with the configured timeout.
func (a *API) syncContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if a.syncTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.syncTimeout)
}

func (a *API) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := a.engine.Playlists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]*PlaylistResponse, 0, len(playlists))
	for i := range playlists {
		out = append(out, playlistResponse(&playlists[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type createRequest struct {
	Playlist string `json:"playlist"`
}

func (a *API) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	ctx, cancel := a.syncContext(r)
	defer cancel()

	result, err := a.engine.Create(ctx, req.Playlist, nil)
	if err != nil {
		a.logger.Warn("create failed", "url", req.Playlist, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateResponse{Playlist: playlistResponse(result.Playlist), Added: len(result.Added)})
}

func (a *API) listSongs(w http.ResponseWriter, r *http.Request) {
	id, err := playlistID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	songs, err := a.engine.Songs(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songResponses(songs))
}

func (a *API) syncPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := playlistID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := a.syncContext(r)
	defer cancel()

	result, err := a.engine.Update(ctx, id, nil)
	if err != nil {
		a.logger.Warn("sync failed", "playlist_id", id, "err", err)
		resp := syncResponse(result)
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, syncResponse(result))
}

func (a *API) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := playlistID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := a.engine.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ErrorResponse{})
}

// playSong streams a song file. Range requests are honoured so the player can seek.
func (a *API) playSong(w http.ResponseWriter, r *http.Request) {
	folder, filename := r.PathValue("folder"), r.PathValue("filename")

	f, err := a.store.Open(folder, filename)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, err)
		return
	}
	if info.IsDir() {
		writeError(w, fmt.Errorf("%w: %s/%s", shared.ErrNotFound, folder, filename))
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func playlistID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
