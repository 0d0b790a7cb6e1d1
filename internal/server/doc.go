// Package server provides HTTP routing, middleware and the JSON API over the sync engine.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with "METHOD /path" patterns, so path
// wildcards such as {id} are read with [http.Request.PathValue].
//
// # API
//
// [API] registers the playlist and song endpoints:
//
//	GET    /playlists                 list playlists
//	POST   /playlists                 create and download a playlist from {"playlist": url}
//	GET    /playlists/{id}/songs      list a playlist's songs
//	POST   /playlists/{id}/sync       reconcile a playlist with the platform
//	POST   /playlists/{id}            delete a playlist (DELETE is accepted too)
//	GET    /songs/{folder}/{filename} stream an audio file, with range support
//	GET    /metrics                   prometheus metrics
//
// Every error is answered with {"error": message}; the status is derived from the error chain.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// The web player is registered this way.
package server
