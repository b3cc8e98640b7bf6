// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/hitline/internal/models"
)

// ErrMockExhausted is returned by [MockGenerator] once its scripted responses run out.
var ErrMockExhausted = errors.New("mock generator: no scripted response left")

// MockGeneration is one scripted reply of a [MockGenerator].
type MockGeneration struct {
	Response *models.GenerationResponse
	Err      error
}

// MockGenerator is a test double for [services.Generator].
//
// GenerateFunc wins when set; otherwise Responses are returned in order.
type MockGenerator struct {
	mu           sync.Mutex
	Responses    []MockGeneration
	GenerateFunc func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)
	requests     []models.GenerationRequest
}

func (m *MockGenerator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	m.mu.Lock()
	recorded := req
	recorded.Exclusions = append([]string(nil), req.Exclusions...)
	m.requests = append(m.requests, recorded)
	fn := m.GenerateFunc
	var next *MockGeneration
	if fn == nil && len(m.Responses) > 0 {
		next = &m.Responses[0]
		m.Responses = m.Responses[1:]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if next == nil {
		return nil, ErrMockExhausted
	}
	return next.Response, next.Err
}

// Requests returns a copy of every request received so far.
func (m *MockGenerator) Requests() []models.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.GenerationRequest(nil), m.requests...)
}

// ArtistList builds a ShapeArtistList response.
func ArtistList(names ...string) *models.GenerationResponse {
	return &models.GenerationResponse{
		Shape:      models.ShapeArtistList,
		ArtistList: &models.ArtistListResult{Artists: names},
	}
}

// PlaylistOf builds a ShapePlaylist response.
func PlaylistOf(name string, artists ...string) *models.GenerationResponse {
	return &models.GenerationResponse{
		Shape: models.ShapePlaylist,
		Playlist: &models.PlaylistResult{
			PlaylistName: name,
			Description:  name + " description",
			Artists:      artists,
		},
	}
}

// SongPlaylistOf builds a ShapeSongPlaylist response.
func SongPlaylistOf(name string, songs ...models.Candidate) *models.GenerationResponse {
	return &models.GenerationResponse{
		Shape: models.ShapeSongPlaylist,
		Playlist: &models.PlaylistResult{
			PlaylistName: name,
			Description:  name + " description",
			Songs:        songs,
		},
	}
}

// CatalogKey is the lookup key used by [MockCatalog].
func CatalogKey(artist, track string) string {
	return artist + "|" + track
}

// MockCatalog is a test double for [services.Catalog] backed by maps keyed with [CatalogKey].
//
// Unknown keys return no matches.
type MockCatalog struct {
	mu         sync.Mutex
	Matches    map[string][]models.CatalogMatch
	Errors     map[string]error
	SearchFunc func(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error)
	queries    []models.TrackQuery
}

func (m *MockCatalog) SearchTracks(ctx context.Context, q models.TrackQuery) ([]models.CatalogMatch, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	fn := m.SearchFunc
	key := CatalogKey(q.Artist, q.Track)
	matches, err := m.Matches[key], m.Errors[key]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// Queries returns a copy of every query received so far.
func (m *MockCatalog) Queries() []models.TrackQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.TrackQuery(nil), m.queries...)
}

// MockHints is a test double for [services.HintGenerator].
type MockHints struct {
	Set *models.HintSet
	Err error
}

func (m *MockHints) Hints(ctx context.Context, artist, track string, year int) (*models.HintSet, error) {
	return m.Set, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
