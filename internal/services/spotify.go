// Spotify Web API catalog search
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	PreviewURL *string         `json:"preview_url"`
	URI        string          `json:"uri"`
}

// SpotifySearchResponse is the body of GET /search with type=track.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyOptions configures a [SpotifyService]. BaseURL and TokenURL default to the public endpoints.
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	Market       string
	BaseURL      string
	TokenURL     string
	RPS          float64
	HTTPClient   *http.Client
}

// SpotifyService implements [Catalog] with the Spotify search endpoint.
type SpotifyService struct {
	config  *clientcredentials.Config
	opts    SpotifyOptions
	api     *APIService
	baseCtx context.Context
}

// NewSpotifyService creates a catalog client authenticated with the client-credentials grant.
func NewSpotifyService(opts SpotifyOptions) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}

	s := &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		},
		opts:    opts,
		baseCtx: context.Background(),
	}
	if opts.HTTPClient != nil {
		s.baseCtx = context.WithValue(s.baseCtx, oauth2.HTTPClient, opts.HTTPClient)
	}
	s.api = NewAPIService(opts.BaseURL, s.config.Client(s.baseCtx), WithRateLimit(opts.RPS, 1))
	return s, nil
}

// Authenticate replaces the client-credentials flow with a fixed "access_token" from credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	accessToken, ok := credentials["access_token"]
	if !ok || accessToken == "" {
		return fmt.Errorf("%w: missing access_token", shared.ErrMissingCredentials)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	s.api = NewAPIService(s.opts.BaseURL, oauth2.NewClient(s.baseCtx, src), WithRateLimit(s.opts.RPS, 1))
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SearchQuery builds the Spotify field-filtered query for q. An empty track searches by artist only.
func SearchQuery(q models.TrackQuery) string {
	if strings.TrimSpace(q.Track) == "" {
		return "artist:" + q.Artist
	}
	return "artist:" + q.Artist + " track:" + q.Track
}

// SearchTracks implements [Catalog].
func (s *SpotifyService) SearchTracks(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", SearchQuery(q))
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	if s.opts.Market != "" {
		params.Set("market", s.opts.Market)
	}

	resp, err := s.api.Get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &shared.UpstreamError{Service: "spotify", Status: resp.StatusCode, Body: shared.Truncate(string(resp.Body), maxPayloadEcho)}
	}

	var result SpotifySearchResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	matches := make([]models.CatalogMatch, 0, len(result.Tracks.Items))
	for _, track := range result.Tracks.Items {
		matches = append(matches, trackToMatch(track))
	}
	return matches, nil
}

func trackToMatch(t SpotifyTrack) models.CatalogMatch {
	m := models.CatalogMatch{ID: t.ID, Name: t.Name}
	if len(t.Artists) > 0 {
		m.Artist = t.Artists[0].Name
	}
	if t.PreviewURL != nil {
		m.PreviewURL = *t.PreviewURL
	}
	if len(t.Album.Images) > 0 {
		m.AlbumArtURL = t.Album.Images[0].URL
	}
	return m
}
