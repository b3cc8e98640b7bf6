// Last.fm similar-artist lookup
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/hitline/internal/shared"
)

const lastfmBaseURL = "https://ws.audioscrobbler.com/2.0"

// LastFMService implements [SimilarArtists] with artist.getsimilar.
type LastFMService struct {
	apiKey string
	api    *APIService
}

// NewLastFMService creates a Last.fm client. An empty baseURL selects the public endpoint.
func NewLastFMService(apiKey, baseURL string, client *http.Client) (*LastFMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: lastfm api_key", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = lastfmBaseURL
	}
	return &LastFMService{apiKey: apiKey, api: NewAPIService(baseURL, client)}, nil
}

type lastfmSimilar struct {
	SimilarArtists struct {
		Artist []struct {
			Name  string `json:"name"`
			Match string `json:"match"`
		} `json:"artist"`
	} `json:"similarartists"`
}

// SimilarRaw implements [SimilarArtists].
func (l *LastFMService) SimilarRaw(ctx context.Context, artist string) (json.RawMessage, error) {
	if artist == "" {
		return nil, fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}

	params := url.Values{}
	params.Set("method", "artist.getsimilar")
	params.Set("artist", artist)
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")
	params.Set("limit", "10")

	resp, err := l.api.Get(ctx, "/", params)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &shared.UpstreamError{Service: "lastfm", Status: resp.StatusCode, Body: shared.Truncate(string(resp.Body), maxPayloadEcho)}
	}
	if !resp.IsJSON {
		return nil, fmt.Errorf("%w: lastfm returned non-JSON body", shared.ErrAPIRequest)
	}
	return json.RawMessage(resp.Body), nil
}

// Similar implements [SimilarArtists].
func (l *LastFMService) Similar(ctx context.Context, artist string) ([]string, error) {
	raw, err := l.SimilarRaw(ctx, artist)
	if err != nil {
		return nil, err
	}

	var doc lastfmSimilar
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode similar artists: %w", err)
	}

	names := make([]string, 0, len(doc.SimilarArtists.Artist))
	for _, a := range doc.SimilarArtists.Artist {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names, nil
}
