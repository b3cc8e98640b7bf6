package services

import (
	"errors"
	"testing"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```  ", `{"a":1}`},
		{"several fences", "```json{\"a\":1}``````", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("Artist List", func(t *testing.T) {
		resp, err := ParseResponse(models.ShapeArtistList, "```json\n{\"artists\": [\"ABBA\", \"  \", \"Queen\"]}\n```")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Shape != models.ShapeArtistList || resp.Playlist != nil {
			t.Fatalf("expected artist list result, got %+v", resp)
		}
		if got := resp.Names(); len(got) != 2 || got[0] != "ABBA" || got[1] != "Queen" {
			t.Errorf("expected blank names dropped, got %v", got)
		}
	})

	t.Run("Artist List Missing Field", func(t *testing.T) {
		_, err := ParseResponse(models.ShapeArtistList, `{"names": ["ABBA"]}`)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, err := ParseResponse(models.ShapePlaylist, "Here are some artists: ABBA, Queen")

		var malformed *shared.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedResponseError, got %v", err)
		}
		if malformed.Payload == "" {
			t.Error("expected payload to be kept for diagnostics")
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		text := `{"playlistName": "80s", "description": "d", "artists": ["A", "B"], "tags": ["80s"], "difficulty": "hard"}`
		resp, err := ParseResponse(models.ShapePlaylist, text)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		p := resp.Playlist
		if p == nil || resp.ArtistList != nil {
			t.Fatalf("expected playlist result, got %+v", resp)
		}
		if p.PlaylistName != "80s" || p.Difficulty != "hard" || len(p.Artists) != 2 || len(p.Tags) != 1 {
			t.Errorf("unexpected playlist %+v", p)
		}
	})

	t.Run("Playlist Without Difficulty", func(t *testing.T) {
		resp, err := ParseResponse(models.ShapePlaylist, `{"playlistName": "x", "artists": []}`)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Playlist.Difficulty != "" {
			t.Errorf("expected empty difficulty to be left for the assembler, got %q", resp.Playlist.Difficulty)
		}
	})

	t.Run("Playlist Missing Name", func(t *testing.T) {
		_, err := ParseResponse(models.ShapePlaylist, `{"artists": ["A"]}`)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Playlist Missing Artists", func(t *testing.T) {
		_, err := ParseResponse(models.ShapePlaylist, `{"playlistName": "x"}`)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Song Playlist", func(t *testing.T) {
		text := `{"playlistName": "Sax", "songs": [{"artist": "George Michael", "track": "Careless Whisper", "year": 1984, "reason": "sax"}]}`
		resp, err := ParseResponse(models.ShapeSongPlaylist, text)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		songs := resp.Playlist.Songs
		if len(songs) != 1 || songs[0].Track != "Careless Whisper" || songs[0].Year != 1984 {
			t.Errorf("unexpected songs %+v", songs)
		}
	})

	t.Run("Song Playlist Missing Songs", func(t *testing.T) {
		_, err := ParseResponse(models.ShapeSongPlaylist, `{"playlistName": "x", "artists": ["A"]}`)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Unknown Shape", func(t *testing.T) {
		_, err := ParseResponse(models.ResponseShape(42), `{}`)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseHints(t *testing.T) {
	hints, err := ParseHints("```json\n{\"hints\": [{\"level\": \"easy\", \"text\": \"t\"}], \"trivia\": \"fact\"}\n```")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(hints.Hints) != 1 || hints.Trivia != "fact" {
		t.Errorf("unexpected hints %+v", hints)
	}

	if _, err := ParseHints(`{"trivia": "only"}`); !errors.Is(err, shared.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse for missing hints, got %v", err)
	}
}
