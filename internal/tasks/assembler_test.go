package tasks

import (
	"testing"

	"github.com/desertthunder/hitline/internal/models"
)

func TestAssembleArtists(t *testing.T) {
	artists := []string{"ABBA", "Queen"}
	p := AssembleArtists(PlaylistMeta{Name: "Disco", Description: "Glitzer", Tags: []string{"disco"}, Difficulty: "hard"}, artists)

	if p.Type != models.PlaylistTypeArtists {
		t.Errorf("expected artist playlist, got %s", p.Type)
	}
	if p.TotalCount != 2 || len(p.Artists) != 2 {
		t.Errorf("expected 2 artists, got %d (%v)", p.TotalCount, p.Artists)
	}
	if p.Difficulty != models.DifficultyHard {
		t.Errorf("expected hard, got %s", p.Difficulty)
	}
	if !p.AIGenerated {
		t.Error("assembled playlists are always AI generated")
	}
	if p.Songs != nil {
		t.Errorf("artist playlist should not carry songs")
	}

	artists[0] = "changed"
	if p.Artists[0] != "ABBA" {
		t.Error("assembled playlist should not alias the input slice")
	}
}

func TestAssembleSongs(t *testing.T) {
	songs := []models.ValidatedSong{{Artist: "Nena", Title: "99 Luftballons", CatalogID: "sp3"}}
	p := AssembleSongs(PlaylistMeta{Name: "NDW"}, songs)

	if p.Type != models.PlaylistTypeSongs {
		t.Errorf("expected song playlist, got %s", p.Type)
	}
	if p.TotalCount != 1 || p.Songs[0].CatalogID != "sp3" {
		t.Errorf("unexpected songs %+v", p.Songs)
	}
	if p.Artists != nil {
		t.Errorf("song playlist should not carry artists")
	}
}

func TestAssemblerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		meta       PlaylistMeta
		difficulty models.Difficulty
	}{
		{name: "missing difficulty", meta: PlaylistMeta{Name: "x"}, difficulty: models.DifficultyMedium},
		{name: "unknown difficulty", meta: PlaylistMeta{Name: "x", Difficulty: "brutal"}, difficulty: models.DifficultyMedium},
		{name: "mixed case difficulty", meta: PlaylistMeta{Name: "x", Difficulty: "Easy"}, difficulty: models.DifficultyEasy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AssembleArtists(tt.meta, nil)
			if p.Difficulty != tt.difficulty {
				t.Errorf("expected %s, got %s", tt.difficulty, p.Difficulty)
			}
			if p.Tags == nil || len(p.Tags) != 0 {
				t.Errorf("expected empty tags, got %#v", p.Tags)
			}
			if p.Artists == nil || p.TotalCount != 0 {
				t.Errorf("expected empty non-nil artists, got %#v", p.Artists)
			}
		})
	}
}
