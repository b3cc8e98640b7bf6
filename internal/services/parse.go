package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
)

const maxPayloadEcho = 500

// StripFences removes every ```json and ``` marker from s and trims surrounding whitespace.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseResponse decodes the model's text reply into the tagged result for shape.
//
// Blank artist names are dropped. A reply that is not JSON or lacks a required field yields a *shared.MalformedResponseError.
func ParseResponse(shape models.ResponseShape, text string) (*models.GenerationResponse, error) {
	payload := StripFences(text)
	malformed := func(err error) error {
		return &shared.MalformedResponseError{Payload: shared.Truncate(payload, maxPayloadEcho), Err: err}
	}

	switch shape {
	case models.ShapeArtistList:
		var raw struct {
			Artists *[]string `json:"artists"`
		}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, malformed(err)
		}
		if raw.Artists == nil {
			return nil, malformed(errors.New(`missing "artists"`))
		}
		return &models.GenerationResponse{
			Shape:      shape,
			ArtistList: &models.ArtistListResult{Artists: cleanNames(*raw.Artists)},
		}, nil

	case models.ShapePlaylist, models.ShapeSongPlaylist:
		var raw struct {
			PlaylistName *string            `json:"playlistName"`
			Description  string             `json:"description"`
			Artists      *[]string          `json:"artists"`
			Songs        *[]models.Candidate `json:"songs"`
			Tags         []string           `json:"tags"`
			Difficulty   string             `json:"difficulty"`
		}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, malformed(err)
		}
		if raw.PlaylistName == nil {
			return nil, malformed(errors.New(`missing "playlistName"`))
		}

		result := &models.PlaylistResult{
			PlaylistName: *raw.PlaylistName,
			Description:  raw.Description,
			Tags:         raw.Tags,
			Difficulty:   raw.Difficulty,
		}

		if shape == models.ShapePlaylist {
			if raw.Artists == nil {
				return nil, malformed(errors.New(`missing "artists"`))
			}
			result.Artists = cleanNames(*raw.Artists)
		} else {
			if raw.Songs == nil {
				return nil, malformed(errors.New(`missing "songs"`))
			}
			result.Songs = *raw.Songs
		}

		return &models.GenerationResponse{Shape: shape, Playlist: result}, nil

	default:
		return nil, fmt.Errorf("%w: unknown response shape %d", shared.ErrInvalidArgument, shape)
	}
}

// ParseHints decodes a quiz-hint reply.
func ParseHints(text string) (*models.HintSet, error) {
	payload := StripFences(text)

	var hints models.HintSet
	if err := json.Unmarshal([]byte(payload), &hints); err != nil {
		return nil, &shared.MalformedResponseError{Payload: shared.Truncate(payload, maxPayloadEcho), Err: err}
	}
	if len(hints.Hints) == 0 {
		return nil, &shared.MalformedResponseError{Payload: shared.Truncate(payload, maxPayloadEcho), Err: errors.New(`missing "hints"`)}
	}
	return &hints, nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
