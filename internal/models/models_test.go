package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/hitline/internal/shared"
)

func TestPlaylistJSON(t *testing.T) {
	t.Run("artists playlist omits songs", func(t *testing.T) {
		p := Playlist{Name: "Rock", Type: PlaylistTypeArtists, Artists: []string{"A", "B"}, TotalCount: 2}

		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := decoded["songs"]; ok {
			t.Errorf("artist playlist should not contain songs: %s", data)
		}
		if artists, ok := decoded["artists"].([]any); !ok || len(artists) != 2 {
			t.Errorf("expected two artists, got %s", data)
		}
		if tags, ok := decoded["tags"].([]any); !ok || len(tags) != 0 {
			t.Errorf("expected empty tags array, got %s", data)
		}
	})

	t.Run("songs playlist omits artists", func(t *testing.T) {
		p := Playlist{Name: "Mix", Type: PlaylistTypeSongs, Tags: []string{"x"}}

		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		s := string(data)
		if strings.Contains(s, `"artists"`) {
			t.Errorf("song playlist should not contain artists: %s", s)
		}
		if !strings.Contains(s, `"songs":[]`) {
			t.Errorf("expected empty songs array, got %s", s)
		}
		if !strings.Contains(s, `"aiGenerated":false`) || !strings.Contains(s, `"totalCount":0`) {
			t.Errorf("expected camelCase flags, got %s", s)
		}
	})

	t.Run("validated song field names", func(t *testing.T) {
		data, err := json.Marshal(ValidatedSong{Artist: "A", Title: "T", CatalogID: "id1", AlbumArtURL: "img"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		for _, want := range []string{`"catalogId":"id1"`, `"albumArt":"img"`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected %s in %s", want, data)
			}
		}
	})
}

func TestRequireMinimum(t *testing.T) {
	p := &Playlist{Type: PlaylistTypeSongs, Songs: make([]ValidatedSong, 3)}

	if err := p.RequireMinimum(3); err != nil {
		t.Errorf("expected no error at the minimum, got %v", err)
	}
	if err := p.RequireMinimum(10); !errors.Is(err, shared.ErrInsufficientResults) {
		t.Errorf("expected ErrInsufficientResults, got %v", err)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"easy", DifficultyEasy},
		{" HARD ", DifficultyHard},
		{"medium", DifficultyMedium},
		{"", DifficultyMedium},
		{"impossible", DifficultyMedium},
	}

	for _, tt := range tests {
		if got := ParseDifficulty(tt.in); got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerationResponseNames(t *testing.T) {
	var nilResp *GenerationResponse
	if nilResp.Names() != nil {
		t.Error("nil response should have no names")
	}

	list := &GenerationResponse{Shape: ShapeArtistList, ArtistList: &ArtistListResult{Artists: []string{"A"}}}
	if got := list.Names(); len(got) != 1 || got[0] != "A" {
		t.Errorf("unexpected names %v", got)
	}

	pl := &GenerationResponse{Shape: ShapePlaylist, Playlist: &PlaylistResult{Artists: []string{"B", "C"}}}
	if got := pl.Names(); len(got) != 2 {
		t.Errorf("unexpected names %v", got)
	}
}

func TestPersistedPlaylistValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       *PersistedPlaylist
		wantErr bool
	}{
		{"valid artists", NewPersistedPlaylist(1, "rock", SourceSmall, Playlist{Name: "R", Type: PlaylistTypeArtists, Artists: []string{"A"}}), false},
		{"valid songs", NewPersistedPlaylist(1, "mix", SourceMix, Playlist{Name: "M", Type: PlaylistTypeSongs}), false},
		{"missing name", NewPersistedPlaylist(1, "rock", SourceSmall, Playlist{Type: PlaylistTypeArtists}), true},
		{"missing prompt", NewPersistedPlaylist(1, " ", SourceSmall, Playlist{Name: "R", Type: PlaylistTypeArtists}), true},
		{"bad type", NewPersistedPlaylist(1, "rock", SourceSmall, Playlist{Name: "R", Type: "albums"}), true},
		{"mixed entries", NewPersistedPlaylist(1, "rock", SourceSmall, Playlist{Name: "R", Type: PlaylistTypeArtists, Songs: []ValidatedSong{{}}}), true},
		{"bad source", NewPersistedPlaylist(1, "rock", "remote", Playlist{Name: "R", Type: PlaylistTypeArtists}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
