package models

// ResponseShape selects the JSON shape the language model is asked for.
type ResponseShape int

const (
	// ShapeArtistList is {"artists": [...]}, used for accumulator batches.
	ShapeArtistList ResponseShape = iota
	// ShapePlaylist is {"playlistName", "description", "artists", "tags", "difficulty"}.
	ShapePlaylist
	// ShapeSongPlaylist is like ShapePlaylist with "songs" candidates instead of artists.
	ShapeSongPlaylist
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeArtistList:
		return "artist_list"
	case ShapePlaylist:
		return "playlist"
	case ShapeSongPlaylist:
		return "song_playlist"
	default:
		return "unknown"
	}
}

// GenerationRequest is one call to the language model.
type GenerationRequest struct {
	Prompt     string
	Count      int
	Exclusions []string
	Shape      ResponseShape
}

// ArtistListResult is the decoded ShapeArtistList payload.
type ArtistListResult struct {
	Artists []string `json:"artists"`
}

// PlaylistResult is the decoded ShapePlaylist or ShapeSongPlaylist payload.
type PlaylistResult struct {
	PlaylistName string      `json:"playlistName"`
	Description  string      `json:"description"`
	Artists      []string    `json:"artists,omitempty"`
	Songs        []Candidate `json:"songs,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Difficulty   string      `json:"difficulty,omitempty"`
}

// GenerationResponse is a tagged union: exactly one of ArtistList or Playlist is set, matching Shape.
type GenerationResponse struct {
	Shape      ResponseShape
	ArtistList *ArtistListResult
	Playlist   *PlaylistResult
}

// Names returns the artist names carried by the response regardless of its shape.
func (r *GenerationResponse) Names() []string {
	if r == nil {
		return nil
	}
	switch {
	case r.ArtistList != nil:
		return r.ArtistList.Artists
	case r.Playlist != nil:
		return r.Playlist.Artists
	default:
		return nil
	}
}

// TrackQuery is a catalog search for a single song.
type TrackQuery struct {
	Artist string
	Track  string
	Limit  int
}

// CatalogMatch is one catalog search hit.
type CatalogMatch struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	AlbumArtURL string `json:"albumArt,omitempty"`
}

// Hint is a single quiz hint.
type Hint struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// HintSet holds graded quiz hints plus a trivia line for one song.
type HintSet struct {
	Hints  []Hint `json:"hints"`
	Trivia string `json:"trivia,omitempty"`
}
