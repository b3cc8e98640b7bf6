package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/sahilm/fuzzy"
)

const playlistColumns = `id, sequence, prompt, source, name, description, type, difficulty, tags, total_count, created_at, updated_at, deleted_at`

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist] for generated playlist history.
//
// A playlist row holds the metadata; its artists or songs live in playlist_entries, ordered by position.
type PlaylistRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedPlaylist] = (*PlaylistRepository)(nil)

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a playlist and its entries with a generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p := playlist.Playlist()
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	id := shared.GenerateID()

	query := `
		INSERT INTO playlists (id, sequence, prompt, source, name, description, type, difficulty, tags, total_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		id,
		sequence,
		playlist.Prompt(),
		string(playlist.Source()),
		p.Name,
		p.Description,
		string(p.Type),
		string(p.Difficulty),
		tags,
		p.Len(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	if err := insertEntries(tx, id, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}
	playlist.SetID(id)
	playlist.SetSequence(sequence)
	return nil
}

// Get retrieves a playlist with its entries by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`

	playlist, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadEntries(playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Update replaces the metadata and entries of an existing playlist
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	p := playlist.Playlist()
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE playlists
		SET name = ?, description = ?, type = ?, difficulty = ?, tags = ?, total_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := tx.Exec(query,
		p.Name,
		p.Description,
		string(p.Type),
		string(p.Difficulty),
		tags,
		p.Len(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	if _, err := tx.Exec("DELETE FROM playlist_entries WHERE playlist_id = ?", playlist.ID()); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	if err := insertEntries(tx, playlist.ID(), p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}
	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves playlists matching criteria, newest first, excluding soft-deleted playlists.
//
// Supported criteria: "type" (string), "source" (string) and "limit" (int).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`
	args := []any{}

	if t, ok := criteria["type"].(string); ok && t != "" {
		query += " AND type = ?"
		args = append(args, t)
	}

	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	playlists, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}

	for _, p := range playlists {
		if err := r.loadEntries(p); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// Search ranks stored playlists by a fuzzy match of query against their name and prompt.
//
// Entries are loaded only for the returned playlists. A non-positive limit returns every match.
func (r *PlaylistRepository) Search(query string, limit int) ([]*models.PersistedPlaylist, error) {
	all, err := r.query(`SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL ORDER BY sequence DESC`)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, searchSource(all))

	results := make([]*models.PersistedPlaylist, 0, len(matches))
	for _, m := range matches {
		if limit > 0 && len(results) >= limit {
			break
		}
		p := all[m.Index]
		if err := r.loadEntries(p); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, nil
}

// searchSource exposes "name prompt" of each playlist to the fuzzy matcher
type searchSource []*models.PersistedPlaylist

func (s searchSource) String(i int) string { return s[i].Name() + " " + s[i].Prompt() }
func (s searchSource) Len() int            { return len(s) }

// query runs a playlist SELECT and scans every row. Entries are not loaded.
func (r *PlaylistRepository) query(query string, args ...any) ([]*models.PersistedPlaylist, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// loadEntries reads the artists or songs of playlist in position order
func (r *PlaylistRepository) loadEntries(playlist *models.PersistedPlaylist) error {
	rows, err := r.db.Query(`
		SELECT artist, title, year, catalog_id, preview_url, album_art_url, ai_reason
		FROM playlist_entries
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	p := playlist.Playlist()
	p.Artists, p.Songs = nil, nil
	for rows.Next() {
		var s models.ValidatedSong
		if err := rows.Scan(&s.Artist, &s.Title, &s.Year, &s.CatalogID, &s.PreviewURL, &s.AlbumArtURL, &s.AIReason); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		if p.Type == models.PlaylistTypeSongs {
			p.Songs = append(p.Songs, s)
		} else {
			p.Artists = append(p.Artists, s.Artist)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("entry iteration error: %w", err)
	}

	if p.Type == models.PlaylistTypeSongs && p.Songs == nil {
		p.Songs = []models.ValidatedSong{}
	}
	if p.Type == models.PlaylistTypeArtists && p.Artists == nil {
		p.Artists = []string{}
	}
	playlist.SetPlaylist(p)
	return nil
}

func insertEntries(tx *sql.Tx, playlistID string, p models.Playlist) error {
	stmt, err := tx.Prepare(`
		INSERT INTO playlist_entries (playlist_id, position, artist, title, year, catalog_id, preview_url, album_art_url, ai_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	if p.Type == models.PlaylistTypeSongs {
		for i, s := range p.Songs {
			if _, err := stmt.Exec(playlistID, i, s.Artist, s.Title, s.Year, s.CatalogID, s.PreviewURL, s.AlbumArtURL, s.AIReason); err != nil {
				return fmt.Errorf("failed to insert song %d: %w", i, err)
			}
		}
		return nil
	}

	for i, a := range p.Artists {
		if _, err := stmt.Exec(playlistID, i, a, "", 0, "", "", "", ""); err != nil {
			return fmt.Errorf("failed to insert artist %d: %w", i, err)
		}
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPlaylist reads one playlist row without its entries
func scanPlaylist(row rowScanner) (*models.PersistedPlaylist, error) {
	var (
		id          string
		sequence    int
		prompt      string
		source      string
		name        string
		description string
		kind        string
		difficulty  string
		tags        string
		totalCount  int
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &prompt, &source, &name, &description, &kind, &difficulty, &tags, &totalCount, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	var tagList []string
	if err := json.Unmarshal([]byte(tags), &tagList); err != nil {
		return nil, fmt.Errorf("failed to decode tags of playlist %s: %w", id, err)
	}
	if tagList == nil {
		tagList = []string{}
	}

	dto := models.Playlist{
		Name:        name,
		Description: description,
		Type:        models.PlaylistType(kind),
		Tags:        tagList,
		Difficulty:  models.ParseDifficulty(difficulty),
		AIGenerated: true,
		TotalCount:  totalCount,
	}

	playlist := models.NewPersistedPlaylist(sequence, prompt, models.PlaylistSource(source), dto)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}

// scanOne scans a single row into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PersistedPlaylist, error) {
	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return playlist, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scanRow(rows *sql.Rows) (*models.PersistedPlaylist, error) {
	playlist, err := scanPlaylist(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return playlist, nil
}
