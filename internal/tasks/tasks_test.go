package tasks

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
	th "github.com/desertthunder/hitline/internal/testing"
)

func newEngine(gen *th.MockGenerator, catalog *th.MockCatalog) *PlaylistEngine {
	opts := EngineOpts{Sleep: (&sleepRecorder{}).Sleep}
	if gen != nil {
		opts.Generator = gen
	}
	if catalog != nil {
		opts.Catalog = catalog
	}
	return NewPlaylistEngine(opts)
}

func TestGenerateSmallPlaylist(t *testing.T) {
	t.Run("returns artist playlist", func(t *testing.T) {
		resp := th.PlaylistOf("90er Dance", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J")
		resp.Playlist.Tags = []string{"90s", "dance"}
		resp.Playlist.Difficulty = "easy"
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: resp}}}

		res := newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "90s dance hits", 10, nil)
		if !res.Success {
			t.Fatalf("expected success, got %s", res.Error)
		}

		p := res.Playlist
		if p.Type != models.PlaylistTypeArtists || len(p.Artists) != 10 || !p.AIGenerated {
			t.Errorf("unexpected playlist %+v", p)
		}
		if p.TotalCount != 10 {
			t.Errorf("expected totalCount 10, got %d", p.TotalCount)
		}
		if p.Name != "90er Dance" || p.Difficulty != models.DifficultyEasy || len(p.Tags) != 2 {
			t.Errorf("metadata not carried over: %+v", p)
		}

		reqs := gen.Requests()
		if len(reqs) != 1 || reqs[0].Shape != models.ShapePlaylist || reqs[0].Count != 10 {
			t.Errorf("expected a single playlist request for 10, got %+v", reqs)
		}
	})

	t.Run("normalizes prompt", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.PlaylistOf("x", "A")}}}
		newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "  Größte Hits 🎵 ", 5, nil)

		if got := gen.Requests()[0].Prompt; got != "Groesste Hits" {
			t.Errorf("expected normalized prompt, got %q", got)
		}
	})

	t.Run("removes duplicate artists", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.PlaylistOf("x", "A", "B", "A")}}}
		res := newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "pop", 3, nil)
		if !res.Success || len(res.Playlist.Artists) != 2 || res.Playlist.TotalCount != 2 {
			t.Errorf("expected 2 unique artists, got %+v", res)
		}
	})

	t.Run("malformed response becomes failure result", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{
			Err: &shared.MalformedResponseError{Payload: "not json", Err: errors.New("invalid character")},
		}}}

		res := newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "pop", 10, nil)
		if res.Success || res.Playlist != nil {
			t.Fatalf("expected failure, got %+v", res)
		}
		if res.Error == "" {
			t.Error("failure result needs a message")
		}
		if !errors.Is(res.Err(), shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", res.Err())
		}
	})

	t.Run("upstream error becomes failure result", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Err: &shared.UpstreamError{Service: "claude", Status: 529}}}}

		res := newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "pop", 10, nil)
		if res.Success || !errors.Is(res.Err(), shared.ErrUpstream) {
			t.Errorf("expected upstream failure, got %+v", res)
		}
	})

	t.Run("wrong shape is malformed", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.ArtistList("A")}}}

		res := newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "pop", 10, nil)
		if !errors.Is(res.Err(), shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", res.Err())
		}
	})

	t.Run("panic becomes failure result", func(t *testing.T) {
		gen := &th.MockGenerator{GenerateFunc: func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
			panic("generator exploded")
		}}

		res := newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "pop", 10, nil)
		if res.Success || !strings.Contains(res.Error, "generator exploded") {
			t.Errorf("expected recovered failure, got %+v", res)
		}
	})
}

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		count  int
	}{
		{name: "empty prompt", prompt: "", count: 10},
		{name: "whitespace prompt", prompt: "   ", count: 10},
		{name: "non-ascii prompt", prompt: "🎵🎶", count: 10},
		{name: "zero count", prompt: "pop", count: 0},
		{name: "negative count", prompt: "pop", count: -3},
		{name: "count above limit", prompt: "pop", count: DefaultMaxCount + 1},
		{name: "huge count", prompt: "x", count: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &th.MockGenerator{}
			engine := newEngine(gen, &th.MockCatalog{})

			for _, res := range []Result{
				engine.GenerateSmallPlaylist(context.Background(), tt.prompt, tt.count, nil),
				engine.GenerateLargePlaylist(context.Background(), tt.prompt, tt.count, nil),
				engine.CreateValidatedPlaylist(context.Background(), tt.prompt, tt.count, nil),
			} {
				if res.Success || !errors.Is(res.Err(), shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %+v", res)
				}
			}
			if len(gen.Requests()) != 0 {
				t.Errorf("invalid input should not reach the generator")
			}
		})
	}
}

func TestMaxCount(t *testing.T) {
	t.Run("configured limit", func(t *testing.T) {
		gen := countingGenerator()
		engine := NewPlaylistEngine(EngineOpts{Generator: gen, MaxCount: 50, Sleep: (&sleepRecorder{}).Sleep})

		if res := engine.GenerateLargePlaylist(context.Background(), "rock", 51, nil); !errors.Is(res.Err(), shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput above the limit, got %+v", res)
		}
		if res := engine.GenerateLargePlaylist(context.Background(), "rock", 50, nil); !res.Success || res.Playlist.TotalCount != 50 {
			t.Errorf("expected 50 artists at the limit, got %+v", res)
		}
	})

	t.Run("expand above limit", func(t *testing.T) {
		gen := &th.MockGenerator{}
		res := newEngine(gen, nil).ExpandPlaylist(context.Background(), []string{"ABBA"}, DefaultMaxCount+1, nil)
		if res.Success || !errors.Is(res.Err(), shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %+v", res)
		}
		if len(gen.Requests()) != 0 {
			t.Error("rejected expand should not reach the generator")
		}
	})
}

func TestServiceUnavailable(t *testing.T) {
	engine := NewPlaylistEngine(EngineOpts{})
	ctx := context.Background()

	results := map[string]error{
		"small":     engine.GenerateSmallPlaylist(ctx, "pop", 5, nil).Err(),
		"large":     engine.GenerateLargePlaylist(ctx, "pop", 5, nil).Err(),
		"validated": engine.CreateValidatedPlaylist(ctx, "pop", 5, nil).Err(),
		"expand":    engine.ExpandPlaylist(ctx, []string{"ABBA"}, 5, nil).Err(),
		"hints":     engine.GenerateHints(ctx, "ABBA", "SOS", 1975).Err(),
	}
	for op, err := range results {
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("%s: expected ErrServiceUnavailable, got %v", op, err)
		}
	}

	withGenerator := newEngine(&th.MockGenerator{}, nil)
	if err := withGenerator.CreateValidatedPlaylist(ctx, "pop", 5, nil).Err(); !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("validated flow without catalog: expected ErrServiceUnavailable, got %v", err)
	}
}

func TestGenerateLargePlaylist(t *testing.T) {
	t.Run("accumulates and names megamix", func(t *testing.T) {
		gen := countingGenerator()

		res := newEngine(gen, nil).GenerateLargePlaylist(context.Background(), "deutsche schlager", 45, nil)
		if !res.Success {
			t.Fatalf("expected success, got %s", res.Error)
		}

		p := res.Playlist
		if p.Name != "Deutsche schlager Megamix" {
			t.Errorf("unexpected name %q", p.Name)
		}
		if p.Description != "Eine umfassende Sammlung von 45 Künstlern zum Thema: deutsche schlager" {
			t.Errorf("unexpected description %q", p.Description)
		}
		if len(p.Tags) != 1 || p.Tags[0] != "deutsche" {
			t.Errorf("expected first prompt word as tag, got %v", p.Tags)
		}
		if p.Difficulty != models.DifficultyMedium || p.TotalCount != 45 || len(gen.Requests()) != 2 {
			t.Errorf("unexpected playlist %+v after %d calls", p, len(gen.Requests()))
		}
	})

	t.Run("description reflects actual count", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{
			{Response: th.ArtistList("A", "B")},
			{Response: th.ArtistList("B", "C")},
		}}

		res := newEngine(gen, nil).GenerateLargePlaylist(context.Background(), "pop", 40, nil)
		if !res.Success {
			t.Fatalf("expected success, got %s", res.Error)
		}
		if res.Playlist.TotalCount != 3 || !strings.Contains(res.Playlist.Description, "von 3 Künstlern") {
			t.Errorf("expected 3 artists, got %+v", res.Playlist)
		}
	})

	t.Run("every batch failing becomes failure result", func(t *testing.T) {
		gen := &th.MockGenerator{GenerateFunc: func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
			return nil, &shared.UpstreamError{Service: "claude", Status: 500}
		}}

		res := newEngine(gen, nil).GenerateLargePlaylist(context.Background(), "pop", 60, nil)
		if res.Success || !errors.Is(res.Err(), shared.ErrUpstream) {
			t.Errorf("expected upstream failure, got %+v", res)
		}
	})
}

func TestCreateValidatedPlaylist(t *testing.T) {
	t.Run("drops candidates without catalog match", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.SongPlaylistOf("Mix",
			models.Candidate{Artist: "ABBA", Track: "SOS", Year: 1975},
			models.Candidate{Artist: "X", Track: "Y"},
			models.Candidate{Artist: "ABBA", Track: "SOS", Year: 1975},
		)}}}
		catalog := &th.MockCatalog{Matches: map[string][]models.CatalogMatch{
			th.CatalogKey("ABBA", "SOS"): {match("sp1", "SOS", "ABBA")},
		}}

		res := newEngine(gen, catalog).CreateValidatedPlaylist(context.Background(), "70s", 3, nil)
		if !res.Success {
			t.Fatalf("expected success, got %s", res.Error)
		}

		p := res.Playlist
		if p.Type != models.PlaylistTypeSongs {
			t.Errorf("expected song playlist, got %s", p.Type)
		}
		if len(p.Songs) != 1 || p.TotalCount != 1 {
			t.Errorf("expected only the validated song, got %+v", p.Songs)
		}
		for _, s := range p.Songs {
			if s.Artist == "X" {
				t.Error("unmatched candidate must be excluded")
			}
		}
		if len(catalog.Queries()) != 2 {
			t.Errorf("duplicate candidates should be looked up once, got %d queries", len(catalog.Queries()))
		}
		if reqs := gen.Requests(); reqs[0].Shape != models.ShapeSongPlaylist {
			t.Errorf("expected song playlist request, got %s", reqs[0].Shape)
		}
	})

	t.Run("no survivors still succeeds", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.SongPlaylistOf("Mix",
			models.Candidate{Artist: "X", Track: "Y"},
		)}}}

		res := newEngine(gen, &th.MockCatalog{}).CreateValidatedPlaylist(context.Background(), "70s", 1, nil)
		if !res.Success || res.Playlist.TotalCount != 0 {
			t.Fatalf("expected empty success, got %+v", res)
		}
		if err := res.Playlist.RequireMinimum(1); !errors.Is(err, shared.ErrInsufficientResults) {
			t.Errorf("consumers should be able to reject empty playlists, got %v", err)
		}
	})

	t.Run("cancellation becomes failure result", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.SongPlaylistOf("Mix",
			models.Candidate{Artist: "A", Track: "1"},
		)}}}
		catalog := &th.MockCatalog{SearchFunc: func(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error) {
			cancel()
			return nil, ctx.Err()
		}}

		res := newEngine(gen, catalog).CreateValidatedPlaylist(ctx, "70s", 1, nil)
		if res.Success || !errors.Is(res.Err(), context.Canceled) {
			t.Errorf("expected cancelled failure, got %+v", res)
		}
	})
}

func TestExpandPlaylist(t *testing.T) {
	t.Run("filters existing artists and caps count", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.ArtistList("ABBA", "Boney M.", "Bee Gees", "Chic")}}}

		res := newEngine(gen, nil).ExpandPlaylist(context.Background(), []string{"ABBA", "Donna Summer"}, 2, nil)
		if !res.Success {
			t.Fatalf("expected success, got %s", res.Error)
		}
		if len(res.Artists) != 2 || res.Artists[0] != "Boney M." || res.Artists[1] != "Bee Gees" {
			t.Errorf("unexpected artists %v", res.Artists)
		}

		req := gen.Requests()[0]
		if len(req.Exclusions) != 2 || !strings.Contains(req.Prompt, "Donna Summer") {
			t.Errorf("expected existing artists in prompt and exclusions, got %+v", req)
		}
	})

	t.Run("requires existing artists", func(t *testing.T) {
		res := newEngine(&th.MockGenerator{}, nil).ExpandPlaylist(context.Background(), nil, 5, nil)
		if !errors.Is(res.Err(), shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", res.Err())
		}
	})

	t.Run("generator error", func(t *testing.T) {
		gen := &th.MockGenerator{Responses: []th.MockGeneration{{Err: errors.New("boom")}}}
		res := newEngine(gen, nil).ExpandPlaylist(context.Background(), []string{"ABBA"}, 5, nil)
		if res.Success || res.Error == "" {
			t.Errorf("expected failure, got %+v", res)
		}
	})
}

func TestGenerateHints(t *testing.T) {
	set := &models.HintSet{Hints: []models.Hint{{Level: "easy", Text: "Schwedisch"}}}

	t.Run("returns hints", func(t *testing.T) {
		engine := NewPlaylistEngine(EngineOpts{Hints: &th.MockHints{Set: set}})
		res := engine.GenerateHints(context.Background(), "ABBA", "SOS", 1975)
		if !res.Success || res.Hints != set {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("requires artist and track", func(t *testing.T) {
		engine := NewPlaylistEngine(EngineOpts{Hints: &th.MockHints{Set: set}})
		if res := engine.GenerateHints(context.Background(), "ABBA", " ", 0); !errors.Is(res.Err(), shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", res.Err())
		}
	})

	t.Run("propagates failure", func(t *testing.T) {
		engine := NewPlaylistEngine(EngineOpts{Hints: &th.MockHints{Err: errors.New("boom")}})
		if res := engine.GenerateHints(context.Background(), "ABBA", "SOS", 0); res.Success || !strings.Contains(res.Error, "boom") {
			t.Errorf("expected failure, got %+v", res)
		}
	})
}

func TestMegamixName(t *testing.T) {
	tests := map[string]string{
		"":              "Megamix",
		"rock":          "Rock Megamix",
		"Neue Deutsche": "Neue Deutsche Megamix",
	}
	for in, want := range tests {
		if got := MegamixName(in); got != want {
			t.Errorf("MegamixName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.PlaylistOf("x", "A", "B")}}}
	engine := newEngine(gen, nil)

	progressCh := make(chan ProgressUpdate)

	done := make(chan Result)
	go func() {
		done <- engine.GenerateSmallPlaylist(context.Background(), "pop", 2, progressCh)
	}()

	select {
	case res := <-done:
		if !res.Success {
			t.Errorf("expected success, got %s", res.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("GenerateSmallPlaylist should not block on progress sends")
	}
}

func TestProgressUpdate_Phases(t *testing.T) {
	gen := &th.MockGenerator{Responses: []th.MockGeneration{{Response: th.PlaylistOf("x", "A")}}}
	progress := make(chan ProgressUpdate, 10)

	newEngine(gen, nil).GenerateSmallPlaylist(context.Background(), "pop", 1, progress)
	close(progress)

	var phases []string
	for u := range progress {
		phases = append(phases, u.Phase.String())
	}
	want := "normalize,generate,assemble_playlist"
	if got := strings.Join(phases, ","); got != want {
		t.Errorf("expected phases %s, got %s", want, got)
	}
}
