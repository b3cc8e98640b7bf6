package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/hitline/internal/models"
	th "github.com/desertthunder/hitline/internal/testing"
)

func match(id, name, artist string) models.CatalogMatch {
	return models.CatalogMatch{
		ID:          id,
		Name:        name,
		Artist:      artist,
		PreviewURL:  "https://p.scdn.co/" + id,
		AlbumArtURL: "https://i.scdn.co/" + id,
	}
}

func TestValidator(t *testing.T) {
	t.Run("keeps only found candidates in input order", func(t *testing.T) {
		catalog := &th.MockCatalog{Matches: map[string][]models.CatalogMatch{
			th.CatalogKey("ABBA", "Dancing Queen"):    {match("sp1", "Dancing Queen", "ABBA")},
			th.CatalogKey("Nena", "99 Luftballons"):   {match("sp3", "99 Luftballons", "Nena")},
			th.CatalogKey("Falco", "Rock Me Amadeus"): {match("sp4", "Rock Me Amadeus", "Falco"), match("sp5", "Other", "Falco")},
		}}
		candidates := []models.Candidate{
			{Artist: "ABBA", Track: "Dancing Queen", Year: 1976, Reason: "Disco classic"},
			{Artist: "Nobody", Track: "Unknown Song", Year: 2001},
			{Artist: "Nena", Track: "99 Luftballons", Year: 1983},
			{Artist: "Falco", Track: "Rock Me Amadeus", Year: 1985},
		}

		songs, err := NewValidator(catalog, 1, nil).Validate(context.Background(), candidates, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("expected 3 validated songs, got %d", len(songs))
		}

		first := songs[0]
		if first.Artist != "ABBA" || first.Title != "Dancing Queen" || first.Year != 1976 {
			t.Errorf("unexpected first song %+v", first)
		}
		if first.CatalogID != "sp1" || first.PreviewURL != "https://p.scdn.co/sp1" || first.AlbumArtURL != "https://i.scdn.co/sp1" {
			t.Errorf("catalog fields not copied: %+v", first)
		}
		if first.AIReason != "Disco classic" {
			t.Errorf("expected reason to carry over, got %q", first.AIReason)
		}
		if songs[1].Artist != "Nena" || songs[2].CatalogID != "sp4" {
			t.Errorf("expected input order with first match, got %+v", songs)
		}

		for _, q := range catalog.Queries() {
			if q.Limit != 1 {
				t.Errorf("expected lookups limited to 1 result, got %d", q.Limit)
			}
		}
	})

	t.Run("drops candidates whose lookup fails", func(t *testing.T) {
		catalog := &th.MockCatalog{
			Matches: map[string][]models.CatalogMatch{
				th.CatalogKey("Queen", "Bohemian Rhapsody"): {match("sp2", "Bohemian Rhapsody", "Queen")},
			},
			Errors: map[string]error{
				th.CatalogKey("ABBA", "SOS"): errors.New("status 500"),
			},
		}
		candidates := []models.Candidate{
			{Artist: "ABBA", Track: "SOS"},
			{Artist: "Queen", Track: "Bohemian Rhapsody"},
		}

		songs, err := NewValidator(catalog, 1, nil).Validate(context.Background(), candidates, nil)
		if err != nil {
			t.Fatalf("lookup failures should not fail validation: %v", err)
		}
		if len(songs) != 1 || songs[0].CatalogID != "sp2" {
			t.Errorf("expected only Queen to survive, got %+v", songs)
		}
	})

	t.Run("skips candidates without artist", func(t *testing.T) {
		catalog := &th.MockCatalog{}
		songs, err := NewValidator(catalog, 1, nil).Validate(context.Background(), []models.Candidate{{Track: "Orphan"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected no songs, got %+v", songs)
		}
		if len(catalog.Queries()) != 0 {
			t.Errorf("candidate without artist should not be looked up")
		}
	})

	t.Run("falls back to catalog title when track is missing", func(t *testing.T) {
		catalog := &th.MockCatalog{Matches: map[string][]models.CatalogMatch{
			th.CatalogKey("Nena", ""): {match("sp3", "99 Luftballons", "Nena")},
		}}
		songs, err := NewValidator(catalog, 1, nil).Validate(context.Background(), []models.Candidate{{Artist: "Nena"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 1 || songs[0].Title != "99 Luftballons" {
			t.Errorf("expected catalog title, got %+v", songs)
		}
	})

	t.Run("concurrent workers keep input order", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		catalog := &th.MockCatalog{
			SearchFunc: func(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				return []models.CatalogMatch{match("id-"+q.Track, q.Track, q.Artist)}, nil
			},
		}

		candidates := make([]models.Candidate, 12)
		for i := range candidates {
			candidates[i] = models.Candidate{Artist: "Artist", Track: fmt.Sprintf("Track %02d", i)}
		}

		songs, err := NewValidator(catalog, 4, nil).Validate(context.Background(), candidates, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != len(candidates) {
			t.Fatalf("expected %d songs, got %d", len(candidates), len(songs))
		}
		for i, s := range songs {
			if s.Title != candidates[i].Track {
				t.Errorf("position %d: expected %s, got %s", i, candidates[i].Track, s.Title)
			}
		}
		if peak.Load() > 4 {
			t.Errorf("expected at most 4 concurrent lookups, saw %d", peak.Load())
		}
	})

	t.Run("cancellation returns context error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		catalog := &th.MockCatalog{
			SearchFunc: func(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error) {
				cancel()
				return nil, ctx.Err()
			},
		}
		candidates := []models.Candidate{{Artist: "A", Track: "1"}, {Artist: "B", Track: "2"}}

		_, err := NewValidator(catalog, 1, nil).Validate(ctx, candidates, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("reports progress per candidate", func(t *testing.T) {
		catalog := &th.MockCatalog{Matches: map[string][]models.CatalogMatch{
			th.CatalogKey("ABBA", "SOS"): {match("sp1", "SOS", "ABBA")},
		}}
		progress := make(chan ProgressUpdate, 10)

		_, err := NewValidator(catalog, 1, nil).Validate(context.Background(), []models.Candidate{
			{Artist: "ABBA", Track: "SOS"},
			{Artist: "Nobody", Track: "Nothing"},
		}, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var found, missing int
		for u := range progress {
			if u.Phase != ValidateCandidates || u.Total != 2 {
				t.Errorf("unexpected update %+v", u)
			}
			if _, ok := u.Data.(models.Candidate); !ok {
				t.Errorf("expected candidate data, got %T", u.Data)
			}
			switch {
			case strings.ContainsRune(u.Message, '✓'):
				found++
			case strings.ContainsRune(u.Message, '✗'):
				missing++
			}
		}
		if found != 1 || missing != 1 {
			t.Errorf("expected 1 found and 1 missing update, got %d/%d", found, missing)
		}
	})
}
