package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PlaylistSource records which flow produced a stored playlist.
type PlaylistSource string

const (
	SourceSmall PlaylistSource = "small"
	SourceLarge PlaylistSource = "large"
	SourceMix   PlaylistSource = "mix"
)

// PersistedPlaylist is a generated playlist saved to history.
//
// It wraps the [Playlist] returned to callers with the prompt that produced it and lifecycle metadata.
type PersistedPlaylist struct {
	id        string
	sequence  int
	prompt    string
	source    PlaylistSource
	playlist  Playlist
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist creates a history entry for p generated from prompt.
func NewPersistedPlaylist(sequence int, prompt string, source PlaylistSource, p Playlist) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		sequence:  sequence,
		prompt:    prompt,
		source:    source,
		playlist:  p,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedPlaylist) ID() string               { return p.id }
func (p *PersistedPlaylist) Sequence() int            { return p.sequence }
func (p *PersistedPlaylist) Prompt() string           { return p.prompt }
func (p *PersistedPlaylist) Source() PlaylistSource   { return p.source }
func (p *PersistedPlaylist) Playlist() Playlist       { return p.playlist }
func (p *PersistedPlaylist) Name() string             { return p.playlist.Name }
func (p *PersistedPlaylist) Type() PlaylistType       { return p.playlist.Type }
func (p *PersistedPlaylist) CreatedAt() time.Time     { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time     { return p.updatedAt }
func (p *PersistedPlaylist) DeletedAt() *time.Time    { return p.deletedAt }
func (p *PersistedPlaylist) IsDeleted() bool          { return p.deletedAt != nil }
func (p *PersistedPlaylist) SetID(id string)          { p.id = id }
func (p *PersistedPlaylist) SetSequence(seq int)      { p.sequence = seq }
func (p *PersistedPlaylist) SetPlaylist(pl Playlist)  { p.playlist = pl }
func (p *PersistedPlaylist) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *PersistedPlaylist) SetUpdatedAt(t time.Time) { p.updatedAt = t }
func (p *PersistedPlaylist) SetDeletedAt(t *time.Time) {
	p.deletedAt = t
}

// Validate checks required fields and that the entries match the playlist type.
func (p *PersistedPlaylist) Validate() error {
	if strings.TrimSpace(p.playlist.Name) == "" {
		return errors.New("playlist name is required")
	}
	if strings.TrimSpace(p.prompt) == "" {
		return errors.New("prompt is required")
	}

	switch p.playlist.Type {
	case PlaylistTypeArtists:
		if len(p.playlist.Songs) > 0 {
			return errors.New("artist playlist must not carry songs")
		}
	case PlaylistTypeSongs:
		if len(p.playlist.Artists) > 0 {
			return errors.New("song playlist must not carry artists")
		}
	default:
		return fmt.Errorf("invalid playlist type: %q", p.playlist.Type)
	}

	switch p.source {
	case "", SourceSmall, SourceLarge, SourceMix:
	default:
		return fmt.Errorf("invalid playlist source: %q", p.source)
	}
	return nil
}
