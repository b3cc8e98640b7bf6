package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/services"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/desertthunder/hitline/internal/tasks"
)

const (
	maxBodyBytes       = 64 << 10
	defaultSongCount   = 20
	defaultArtistTotal = 100
)

// PlaylistStore is the subset of the playlist repository used by the API.
type PlaylistStore interface {
	Create(playlist *models.PersistedPlaylist) error
	Get(id string) (*models.PersistedPlaylist, error)
	List(criteria map[string]any) ([]*models.PersistedPlaylist, error)
}

// APIOpts contains the dependencies of a [PlaylistHandler]. Only Engine is required.
type APIOpts struct {
	Engine          *tasks.PlaylistEngine
	Similar         services.SimilarArtists
	Store           PlaylistStore
	Metrics         *Metrics
	MinSongs        int // AI-mix results below this are rejected with 422
	MaxPromptLength int // Longer prompts are rejected with 400 (0 disables the check)
	Logger          *log.Logger
}

// PlaylistHandler serves the playlist generation API, stored history and the health check.
type PlaylistHandler struct {
	mux  *http.ServeMux
	opts APIOpts
}

type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type playlistRequest struct {
	Prompt     string `json:"prompt"`
	SongCount  *int   `json:"songCount"`
	TotalCount *int   `json:"totalCount"`
}

type expandRequest struct {
	Artists []string `json:"artists"`
	Count   *int     `json:"count"`
}

type hintsRequest struct {
	Artist string `json:"artist"`
	Track  string `json:"track"`
	Year   int    `json:"year"`
}

// storedPlaylist is the JSON view of a history entry.
type storedPlaylist struct {
	ID        string                `json:"id"`
	Sequence  int                   `json:"sequence"`
	Prompt    string                `json:"prompt"`
	Source    models.PlaylistSource `json:"source"`
	CreatedAt time.Time             `json:"createdAt"`
	Playlist  models.Playlist       `json:"playlist"`
}

func toStored(p *models.PersistedPlaylist) storedPlaylist {
	return storedPlaylist{
		ID:        p.ID(),
		Sequence:  p.Sequence(),
		Prompt:    p.Prompt(),
		Source:    p.Source(),
		CreatedAt: p.CreatedAt(),
		Playlist:  p.Playlist(),
	}
}

// NewPlaylistHandler creates a [PlaylistHandler] from opts.
func NewPlaylistHandler(opts APIOpts) *PlaylistHandler {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	h := &PlaylistHandler{mux: http.NewServeMux(), opts: opts}
	h.mux.HandleFunc("POST /api/hitline-playlist", h.smallPlaylist)
	h.mux.HandleFunc("POST /api/hitline-playlist-large", h.largePlaylist)
	h.mux.HandleFunc("POST /api/ai-mix", h.aiMix)
	h.mux.HandleFunc("POST /api/expand", h.expand)
	h.mux.HandleFunc("POST /api/hints", h.hints)
	h.mux.HandleFunc("GET /api/lastfm-similar", h.similar)
	h.mux.HandleFunc("GET /api/playlists", h.listPlaylists)
	h.mux.HandleFunc("GET /api/playlists/{id}", h.getPlaylist)
	h.mux.HandleFunc("GET /health", h.health)
	return h
}

// Routes returns the method-qualified patterns this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{
		"POST /api/hitline-playlist",
		"POST /api/hitline-playlist-large",
		"POST /api/ai-mix",
		"POST /api/expand",
		"POST /api/hints",
		"GET /api/lastfm-similar",
		"GET /api/playlists",
		"GET /api/playlists/{id}",
		"GET /health",
	}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *PlaylistHandler) smallPlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !h.decode(w, r, &req) || !h.checkPrompt(w, req.Prompt) {
		return
	}

	count := valueOr(req.SongCount, defaultSongCount)
	h.opts.Logger.Info("generating playlist", "prompt", req.Prompt, "count", count)

	res := h.opts.Engine.GenerateSmallPlaylist(r.Context(), req.Prompt, count, nil)
	h.respondPlaylist(w, "small", req.Prompt, models.SourceSmall, res)
}

func (h *PlaylistHandler) largePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !h.decode(w, r, &req) || !h.checkPrompt(w, req.Prompt) {
		return
	}

	total := valueOr(req.TotalCount, defaultArtistTotal)
	h.opts.Logger.Info("generating large playlist", "prompt", req.Prompt, "total", total)

	res := h.opts.Engine.GenerateLargePlaylist(r.Context(), req.Prompt, total, nil)
	h.respondPlaylist(w, "large", req.Prompt, models.SourceLarge, res)
}

func (h *PlaylistHandler) aiMix(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !h.decode(w, r, &req) || !h.checkPrompt(w, req.Prompt) {
		return
	}

	count := valueOr(req.SongCount, defaultSongCount)
	h.opts.Logger.Info("generating ai mix", "prompt", req.Prompt, "count", count)

	res := h.opts.Engine.CreateValidatedPlaylist(r.Context(), req.Prompt, count, nil)
	if res.Success {
		if err := res.Playlist.RequireMinimum(h.opts.MinSongs); err != nil {
			h.opts.Metrics.ObservePlaylist("mix", false)
			h.fail(w, err)
			return
		}
	}
	h.respondPlaylist(w, "mix", req.Prompt, models.SourceMix, res)
}

func (h *PlaylistHandler) expand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.opts.Engine.ExpandPlaylist(r.Context(), req.Artists, valueOr(req.Count, 10), nil)
	h.opts.Metrics.ObservePlaylist("expand", res.Success)
	if !res.Success {
		writeJSON(w, statusFor(res.Err()), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PlaylistHandler) hints(w http.ResponseWriter, r *http.Request) {
	var req hintsRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.opts.Engine.GenerateHints(r.Context(), req.Artist, req.Track, req.Year)
	if !res.Success {
		writeJSON(w, statusFor(res.Err()), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PlaylistHandler) similar(w http.ResponseWriter, r *http.Request) {
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))
	if artist == "" {
		h.fail(w, fmt.Errorf("%w: artist query parameter is required", shared.ErrMissingArgument))
		return
	}
	if h.opts.Similar == nil {
		h.fail(w, fmt.Errorf("%w: Last.fm API key not configured", shared.ErrServiceUnavailable))
		return
	}

	raw, err := h.opts.Similar.SimilarRaw(r.Context(), artist)
	if err != nil {
		h.opts.Logger.Error("last.fm lookup failed", "artist", artist, "err", err)
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (h *PlaylistHandler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	if h.opts.Store == nil {
		h.fail(w, fmt.Errorf("%w: history database not configured", shared.ErrServiceUnavailable))
		return
	}

	q := r.URL.Query()
	criteria := map[string]any{"type": q.Get("type"), "source": q.Get("source")}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			h.fail(w, fmt.Errorf("%w: limit must be a non-negative integer", shared.ErrInvalidArgument))
			return
		}
		criteria["limit"] = limit
	}

	playlists, err := h.opts.Store.List(criteria)
	if err != nil {
		h.fail(w, err)
		return
	}

	out := make([]storedPlaylist, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, toStored(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "playlists": out})
}

func (h *PlaylistHandler) getPlaylist(w http.ResponseWriter, r *http.Request) {
	if h.opts.Store == nil {
		h.fail(w, fmt.Errorf("%w: history database not configured", shared.ErrServiceUnavailable))
		return
	}

	p, err := h.opts.Store.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "playlist": toStored(p)})
}

func (h *PlaylistHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "hitline server is running"})
}

// respondPlaylist writes res, saving successful playlists to the store when one is configured.
func (h *PlaylistHandler) respondPlaylist(w http.ResponseWriter, flow, prompt string, source models.PlaylistSource, res tasks.Result) {
	h.opts.Metrics.ObservePlaylist(flow, res.Success)

	if !res.Success {
		h.opts.Logger.Warn("playlist generation failed", "flow", flow, "err", res.Error)
		writeJSON(w, statusFor(res.Err()), res)
		return
	}

	if h.opts.Store != nil {
		stored := models.NewPersistedPlaylist(0, prompt, source, *res.Playlist)
		if err := h.opts.Store.Create(stored); err != nil {
			h.opts.Logger.Error("failed to save playlist", "name", res.Playlist.Name, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PlaylistHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.fail(w, fmt.Errorf("%w: invalid JSON body: %v", shared.ErrInvalidInput, err))
		return false
	}
	return true
}

func (h *PlaylistHandler) checkPrompt(w http.ResponseWriter, prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		h.fail(w, fmt.Errorf("%w: prompt is required", shared.ErrInvalidInput))
		return false
	}
	if n := h.opts.MaxPromptLength; n > 0 && len([]rune(prompt)) > n {
		h.fail(w, fmt.Errorf("%w: prompt longer than %d characters", shared.ErrInvalidInput, n))
		return false
	}
	return true
}

func (h *PlaylistHandler) fail(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), failureBody{Success: false, Error: err.Error()})
}

// statusFor maps an error onto the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInsufficientResults):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrUpstream), errors.Is(err, shared.ErrMalformedResponse), errors.Is(err, shared.ErrAPIRequest):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}

func valueOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
