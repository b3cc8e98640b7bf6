package tasks

import (
	"slices"

	"github.com/desertthunder/hitline/internal/models"
)

// PlaylistMeta carries the descriptive fields of a playlist before its entries are attached.
type PlaylistMeta struct {
	Name        string
	Description string
	Tags        []string
	Difficulty  string
}

func (m PlaylistMeta) base(t models.PlaylistType, n int) *models.Playlist {
	tags := slices.Clone(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &models.Playlist{
		Name:        m.Name,
		Description: m.Description,
		Type:        t,
		Tags:        tags,
		Difficulty:  models.ParseDifficulty(m.Difficulty),
		AIGenerated: true,
		TotalCount:  n,
	}
}

// AssembleArtists builds an artist playlist from meta and artists.
func AssembleArtists(meta PlaylistMeta, artists []string) *models.Playlist {
	p := meta.base(models.PlaylistTypeArtists, len(artists))
	p.Artists = append([]string{}, artists...)
	return p
}

// AssembleSongs builds a song playlist from meta and validated songs.
func AssembleSongs(meta PlaylistMeta, songs []models.ValidatedSong) *models.Playlist {
	p := meta.base(models.PlaylistTypeSongs, len(songs))
	p.Songs = append([]models.ValidatedSong{}, songs...)
	return p
}
