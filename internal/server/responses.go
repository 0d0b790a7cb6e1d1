package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/desertthunder/musicplayer/internal/tasks"
)

// ErrorResponse is the body of every failed request and of bare successes, where Error is empty.
type ErrorResponse struct {
	Error string `json:"error"`
}

type PlaylistResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Folder string `json:"folder"`
	URL    string `json:"url"`
}

type SongResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// CreateResponse answers POST /playlists.
type CreateResponse struct {
	Error    string            `json:"error"`
	Playlist *PlaylistResponse `json:"playlist,omitempty"`
	Added    int               `json:"added"`
}

// SyncResponse answers POST /playlists/{id}/sync.
type SyncResponse struct {
	Error   string         `json:"error"`
	Added   []SongResponse `json:"added"`
	Removed []SongResponse `json:"removed"`
}

func playlistResponse(p *models.Playlist) *PlaylistResponse {
	if p == nil {
		return nil
	}
	return &PlaylistResponse{ID: p.ID, Title: p.Title, Folder: p.Folder, URL: p.URL}
}

func songResponses(songs []models.Song) []SongResponse {
	out := make([]SongResponse, 0, len(songs))
	for _, s := range songs {
		out = append(out, SongResponse{ID: s.ID, Title: s.Title, Filename: s.Filename, URL: s.URL})
	}
	return out
}

func syncResponse(result *tasks.SyncResult) SyncResponse {
	if result == nil {
		return SyncResponse{Added: []SongResponse{}, Removed: []SongResponse{}}
	}
	return SyncResponse{Added: songResponses(result.Added), Removed: songResponses(result.Removed)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes. Order matters: a download failure caused by a
// timeout is reported as a download failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrPlaylistBusy):
		return http.StatusConflict
	case errors.Is(err, shared.ErrDownloadFailed):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidHost),
		errors.Is(err, shared.ErrDuplicatePlaylist),
		errors.Is(err, shared.ErrInvalidPathSegment):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlatform):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
