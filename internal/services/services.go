// package services defines the interfaces hitline uses to talk to external HTTP APIs
//
// Anthropic (generation), Spotify (catalog), Last.fm (similar artists)
package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/hitline/internal/models"
)

// Generator asks a language model for artist or song candidates.
type Generator interface {
	// Generate issues one request and decodes the reply into the shape named by req.Shape.
	//
	// Failures are *shared.UpstreamError, *shared.MalformedResponseError or a wrapped shared.ErrAPIRequest.
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)
}

// HintGenerator produces quiz hints for one song.
type HintGenerator interface {
	Hints(ctx context.Context, artist, track string, year int) (*models.HintSet, error)
}

// Catalog searches a music catalog for tracks.
type Catalog interface {
	// SearchTracks returns the matches for q in catalog order. An empty result is not an error.
	SearchTracks(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error)

	// Name returns the name of the catalog (e.g., "Spotify")
	Name() string
}

// SimilarArtists looks up artists similar to a given one.
type SimilarArtists interface {
	// SimilarRaw returns the provider's JSON document unchanged.
	SimilarRaw(ctx context.Context, artist string) (json.RawMessage, error)

	// Similar returns the names of similar artists.
	Similar(ctx context.Context, artist string) ([]string, error)
}
