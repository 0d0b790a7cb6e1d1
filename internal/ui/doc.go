// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow over the local library:
//  1. [PlaylistListView] : Browse stored playlists
//  2. [SongListView] : Browse a playlist's songs
//  3. [ConfirmDeleteView] : Confirm deleting a playlist with its files
//  4. [SyncView] : Monitor real-time progress of an update sync
//  5. [ResultView] : Display what a sync or delete changed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync engine, providing non-blocking status reporting during syncs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, d, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
