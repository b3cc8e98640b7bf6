package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/hitline/internal/models"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = songItem{}
)

// artistItem wraps an artist name to implement [list.Item].
type artistItem struct {
	position int
	name     string
}

func (i artistItem) FilterValue() string { return i.name }
func (i artistItem) Title() string       { return i.name }
func (i artistItem) Description() string { return fmt.Sprintf("#%d", i.position) }

// songItem wraps [models.ValidatedSong] to implement [list.Item].
type songItem struct {
	song models.ValidatedSong
}

func (i songItem) FilterValue() string { return i.song.Artist + " " + i.song.Title }
func (i songItem) Title() string       { return fmt.Sprintf("%s - %s", i.song.Artist, i.song.Title) }
func (i songItem) Description() string {
	desc := i.song.CatalogID
	if i.song.Year > 0 {
		desc = fmt.Sprintf("%d • %s", i.song.Year, desc)
	}
	if i.song.AIReason != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.AIReason)
	}
	return desc
}

// playlistItems converts the entries of p into list items.
func playlistItems(p *models.Playlist) []list.Item {
	if p.Type == models.PlaylistTypeSongs {
		items := make([]list.Item, len(p.Songs))
		for i, s := range p.Songs {
			items[i] = songItem{song: s}
		}
		return items
	}

	items := make([]list.Item, len(p.Artists))
	for i, a := range p.Artists {
		items[i] = artistItem{position: i + 1, name: a}
	}
	return items
}
