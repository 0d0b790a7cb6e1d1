// Package tasks mirrors remote video playlists into the local library with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes three sync operations:
//
//  1. [Engine.Create] : Mirror a new playlist
//     - Validates the URL against the accepted platform hosts
//     - Resolves the playlist title and rejects titles already stored
//     - Reserves a folder, inserts the playlist row and downloads every video
//
//  2. [Engine.Update] : Reconcile a stored playlist
//     - Compares stored song URLs with the remote playlist via [Reconcile]
//     - Downloads videos that appeared, then removes songs that disappeared
//
//  3. [Engine.Delete] : Remove a playlist together with its songs and folder
//
// # Consistency
//
// Each song is committed on its own. Audio lands in a temp file which is renamed into place before the
// row is written; if the row can't be written the file is removed. A failed sync keeps what it already
// committed and the next update picks up the rest.
//
// Syncs of one playlist are serialized with a per-playlist lock. While a playlist's initial download is
// running, update and delete fail with [shared.ErrPlaylistBusy].
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
