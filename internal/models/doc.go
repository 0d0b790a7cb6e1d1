// Package models defines the entities of the musicplayer library.
//
//   - [Playlist] : a remote playlist mirrored to a folder under the upload directory
//   - [Song] : one downloaded audio file belonging to a playlist
//
// Both implement [Model] so repositories can validate them before writing.
// Songs reference their playlist by id only; the schema does not enforce the relation.
package models
