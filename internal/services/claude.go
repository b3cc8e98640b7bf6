// Anthropic messages API client
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
)

const (
	claudeBaseURL     = "https://api.anthropic.com"
	claudeAPIVersion  = "2023-06-01"
	claudeModel       = "claude-sonnet-4-20250514"
	playlistMaxTokens = 4000
	batchMaxTokens    = 2000
	hintsMaxTokens    = 1000
)

const (
	systemArtistList = `Du bist ein Musik-Experte. Erstelle eine Liste von Kuenstlern als JSON-Objekt. WICHTIG: Antworte NUR mit JSON, keine Markdown-Bloecke! Format: {"artists": ["Kuenstler1", "Kuenstler2"]}. Gib NUR Kuenstlernamen zurueck, KEINE Song-Titel. Waehle bekannte, unterschiedliche Kuenstler. KEINE Duplikate!`

	systemPlaylist = `Du bist ein Musik-Experte. Erstelle eine Playlist als JSON-Objekt. WICHTIG: Antworte NUR mit JSON, keine Markdown-Bloecke! Format: {"playlistName": "Name", "description": "Beschreibung", "artists": ["Kuenstler1", "Kuenstler2", "Kuenstler3"], "difficulty": "medium", "tags": ["tag1"]}. Gib NUR Kuenstlernamen zurueck, KEINE Song-Titel. Waehle bekannte Kuenstler die zum Thema passen.`

	systemSongPlaylist = `Du bist ein Musik-Experte. Erstelle eine Playlist als JSON-Objekt. WICHTIG: Antworte NUR mit JSON, keine Markdown-Bloecke! Format: {"playlistName": "Name", "description": "Beschreibung", "songs": [{"artist": "Kuenstler", "track": "Songtitel", "year": 1985, "reason": "Warum der Song passt"}], "difficulty": "medium", "tags": ["tag1"]}. Waehle bekannte Songs, die bei Spotify verfuegbar sind.`

	exclusionPrefix = "\n\nBereits verwendet (NICHT wiederholen): "

	hintsTemplate = `Erstelle 3 clevere Hints für diesen Song im Musik-Quiz:
Künstler: %s
Song: %s
Jahr: %d

Antworte nur mit JSON:
{
  "hints": [
    {"level": "easy", "text": "Hint-Text"},
    {"level": "medium", "text": "Hint-Text"},
    {"level": "hard", "text": "Hint-Text"}
  ],
  "trivia": "Interessanter Fakt über den Song"
}

Hints sollten:
- Nicht den Titel oder Künstler nennen
- Progressiv schwieriger werden
- Kreativ und interessant sein`
)

// ClaudeOptions configures a [ClaudeService]. Zero values fall back to the defaults.
type ClaudeOptions struct {
	APIKey            string
	BaseURL           string
	Model             string
	PlaylistMaxTokens int
	BatchMaxTokens    int
	HTTPClient        *http.Client
}

// ClaudeService implements [Generator] and [HintGenerator] over the Anthropic messages API.
type ClaudeService struct {
	api               *APIService
	model             string
	playlistMaxTokens int
	batchMaxTokens    int
}

// NewClaudeService creates a generation client. It fails with [shared.ErrMissingCredentials] without an API key.
func NewClaudeService(opts ClaudeOptions) (*ClaudeService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api_key", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = claudeBaseURL
	}

	s := &ClaudeService{
		api: NewAPIService(baseURL, opts.HTTPClient,
			WithHeader("x-api-key", opts.APIKey),
			WithHeader("anthropic-version", claudeAPIVersion),
		),
		model:             opts.Model,
		playlistMaxTokens: opts.PlaylistMaxTokens,
		batchMaxTokens:    opts.BatchMaxTokens,
	}
	if s.model == "" {
		s.model = claudeModel
	}
	if s.playlistMaxTokens <= 0 {
		s.playlistMaxTokens = playlistMaxTokens
	}
	if s.batchMaxTokens <= 0 {
		s.batchMaxTokens = batchMaxTokens
	}
	return s, nil
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate implements [Generator].
func (s *ClaudeService) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	system, maxTokens, err := s.shapeParams(req.Shape)
	if err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, system, UserMessage(req), maxTokens)
	if err != nil {
		return nil, err
	}
	return ParseResponse(req.Shape, text)
}

// Hints implements [HintGenerator].
func (s *ClaudeService) Hints(ctx context.Context, artist, track string, year int) (*models.HintSet, error) {
	text, err := s.complete(ctx, "", fmt.Sprintf(hintsTemplate, artist, track, year), hintsMaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseHints(text)
}

func (s *ClaudeService) shapeParams(shape models.ResponseShape) (string, int, error) {
	switch shape {
	case models.ShapeArtistList:
		return systemArtistList, s.batchMaxTokens, nil
	case models.ShapePlaylist:
		return systemPlaylist, s.playlistMaxTokens, nil
	case models.ShapeSongPlaylist:
		return systemSongPlaylist, s.playlistMaxTokens, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown response shape %d", shared.ErrInvalidArgument, shape)
	}
}

// UserMessage builds the user instruction for req: count, normalized prompt and the exclusion list.
func UserMessage(req models.GenerationRequest) string {
	prompt := shared.Normalize(req.Prompt)

	var msg string
	switch req.Shape {
	case models.ShapeArtistList:
		msg = fmt.Sprintf("Erstelle eine Liste mit %d verschiedenen Kuenstlern fuer: %s", req.Count, prompt)
	case models.ShapeSongPlaylist:
		msg = fmt.Sprintf("Erstelle eine Playlist mit %d Songs fuer: %s", req.Count, prompt)
	default:
		msg = fmt.Sprintf("Erstelle eine Liste mit %d Kuenstlern fuer: %s", req.Count, prompt)
	}

	if len(req.Exclusions) > 0 {
		msg += exclusionPrefix + strings.Join(req.Exclusions, ", ")
	}
	return msg
}

// complete sends one messages request and returns the text of the first content block.
func (s *ClaudeService) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.api.Post(ctx, "/v1/messages", body)
	if err != nil {
		return "", err
	}

	if !resp.OK() {
		return "", &shared.UpstreamError{Service: "claude", Status: resp.StatusCode, Body: shared.Truncate(string(resp.Body), maxPayloadEcho)}
	}

	var envelope claudeResponse
	if err := resp.Decode(&envelope); err != nil {
		return "", &shared.MalformedResponseError{Payload: shared.Truncate(string(resp.Body), maxPayloadEcho), Err: err}
	}
	if len(envelope.Content) == 0 {
		return "", &shared.MalformedResponseError{Payload: shared.Truncate(string(resp.Body), maxPayloadEcho), Err: fmt.Errorf("empty content")}
	}

	return envelope.Content[0].Text, nil
}
