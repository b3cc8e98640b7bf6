package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/hitline/internal/shared"
)

// PlaylistType says whether a [Playlist] carries artist names or validated songs.
type PlaylistType string

const (
	PlaylistTypeArtists PlaylistType = "artists"
	PlaylistTypeSongs   PlaylistType = "songs"
)

// Difficulty is the quiz difficulty attached to a playlist.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps s onto a known difficulty, falling back to medium.
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	default:
		return DifficultyMedium
	}
}

// Candidate is a song suggested by the language model.
type Candidate struct {
	Artist string `json:"artist"`
	Track  string `json:"track,omitempty"`
	Year   int    `json:"year,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Key identifies a candidate for de-duplication (artist plus track, case-sensitive).
func (c Candidate) Key() string {
	return c.Artist + "\x00" + c.Track
}

// ValidatedSong is a candidate that was found in the music catalog.
type ValidatedSong struct {
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	Year        int    `json:"year,omitempty"`
	CatalogID   string `json:"catalogId"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	AlbumArtURL string `json:"albumArt,omitempty"`
	AIReason    string `json:"aiReason,omitempty"`
}

// Playlist is the assembled result handed back to callers.
//
// Exactly one of Artists or Songs is meaningful, selected by Type.
type Playlist struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        PlaylistType    `json:"type"`
	Tags        []string        `json:"tags"`
	Difficulty  Difficulty      `json:"difficulty"`
	AIGenerated bool            `json:"aiGenerated"`
	Artists     []string        `json:"artists,omitempty"`
	Songs       []ValidatedSong `json:"songs,omitempty"`
	TotalCount  int             `json:"totalCount"`
}

// MarshalJSON emits "artists" for artist playlists and "songs" for song playlists, never both and never null.
func (p Playlist) MarshalJSON() ([]byte, error) {
	type base struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Type        PlaylistType `json:"type"`
		Tags        []string     `json:"tags"`
		Difficulty  Difficulty   `json:"difficulty"`
		AIGenerated bool         `json:"aiGenerated"`
		TotalCount  int          `json:"totalCount"`
	}

	b := base{
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Tags:        p.Tags,
		Difficulty:  p.Difficulty,
		AIGenerated: p.AIGenerated,
		TotalCount:  p.TotalCount,
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}

	if p.Type == PlaylistTypeSongs {
		songs := p.Songs
		if songs == nil {
			songs = []ValidatedSong{}
		}
		return json.Marshal(struct {
			base
			Songs []ValidatedSong `json:"songs"`
		}{b, songs})
	}

	artists := p.Artists
	if artists == nil {
		artists = []string{}
	}
	return json.Marshal(struct {
		base
		Artists []string `json:"artists"`
	}{b, artists})
}

// Len returns the number of artists or songs, depending on the playlist type.
func (p *Playlist) Len() int {
	if p.Type == PlaylistTypeSongs {
		return len(p.Songs)
	}
	return len(p.Artists)
}

// RequireMinimum fails with [shared.ErrInsufficientResults] when the playlist holds fewer than min entries.
func (p *Playlist) RequireMinimum(min int) error {
	if n := p.Len(); n < min {
		return fmt.Errorf("%w: got %d, need at least %d", shared.ErrInsufficientResults, n, min)
	}
	return nil
}
