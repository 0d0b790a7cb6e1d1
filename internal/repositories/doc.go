// Package repositories implements SQLite persistence for the music library.
//
// Key Implementations:
//   - [PlaylistRepository] : playlist rows, title lookups and cascading deletes
//   - [SongRepository] : song rows scoped to a playlist
//
// Repositories take a [database/sql.DB] explicitly; nothing is read from request context.
// Every write commits on its own, so a long download loop never holds a transaction open.
// Deleting a playlist removes its songs in the same transaction since the schema has no foreign key.
package repositories
