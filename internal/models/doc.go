// Package models defines the domain entities and persistence interfaces for the hitline playlist generator.
//
// The package contains two categories of types:
//
// 1. Pipeline values: plain structs exchanged between the generation client, the catalog and the engine
//   - [GenerationRequest] / [GenerationResponse] : one call to the language model and its tagged result
//   - [Candidate] : a song suggested by the model, not yet checked against the catalog
//   - [ValidatedSong] : a candidate confirmed by a catalog lookup
//   - [Playlist] : the assembled result returned to callers
//   - [TrackQuery] / [CatalogMatch] : catalog search boundary
//   - [HintSet] : quiz hints for a single song
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [PersistedPlaylist] : a generated playlist saved to history
//
// PersistedPlaylist satisfies [Model]; its store in internal/repositories satisfies [Repository].
package models
