// Package repositories implements SQLite persistence for generated playlist history.
//
// [PlaylistRepository] implements models.Repository[*models.PersistedPlaylist]. A playlist is stored as one row in
// playlists plus one row per artist or song in playlist_entries, written in a single transaction.
// Deletes are soft (deleted_at) and deleted playlists are excluded from every query.
//
// Sequence numbers come from the playlists_sequence table through [NextSequence] and are independent of the UUID
// primary keys and creation timestamps.
package repositories
