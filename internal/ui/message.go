package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgSongsFetched
	MsgProgressUpdate
	MsgSyncComplete
	MsgDeleteComplete
)

type playlistsPayload struct {
	playlists []models.Playlist
	err       error
}

type songsPayload struct {
	playlist models.Playlist
	songs    []models.Song
	err      error
}

type syncPayload struct {
	result *tasks.SyncResult
	err    error
}

type deletePayload struct {
	playlist models.Playlist
	err      error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsPayload{playlists, err}}
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(playlist models.Playlist, songs []models.Song, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsPayload{playlist, songs, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(result *tasks.SyncResult, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncPayload{result, err}}
}

// deleteCompleteMsg is the constructor for [MsgDeleteComplete]
func deleteCompleteMsg(playlist models.Playlist, err error) Msg {
	return Msg{kind: MsgDeleteComplete, data: deletePayload{playlist, err}}
}
