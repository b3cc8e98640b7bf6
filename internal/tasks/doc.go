// Package tasks turns a free-text prompt into a playlist.
//
// # Flows
//
// [PlaylistEngine] exposes three flows, each returning a [Result] instead of an error:
//   - GenerateSmallPlaylist: one generation call, artists only
//   - GenerateLargePlaylist: many paced calls through an [Accumulator], each excluding the names seen so far
//   - CreateValidatedPlaylist: song candidates checked one by one against a catalog by a [Validator]
//
// ExpandPlaylist and GenerateHints are smaller helpers built on the same generator.
//
// # Progress
//
// Every flow accepts an optional progress channel. Updates are sent without blocking, so a slow or
// absent reader never stalls generation.
//
// # Bulk Export
//
// BulkExport writes stored playlists to disk with a worker pool and a manifest.
package tasks
