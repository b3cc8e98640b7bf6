package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/services"
	"github.com/desertthunder/hitline/internal/shared"
)

// Result is the outcome of a top-level playlist operation.
//
// Success results carry a Playlist; failures carry a non-empty Error message.
type Result struct {
	Success  bool             `json:"success"`
	Playlist *models.Playlist `json:"playlist,omitempty"`
	Error    string           `json:"error,omitempty"`
	err      error
}

// Err returns the underlying error of a failed result, or nil.
func (r Result) Err() error {
	return r.err
}

// ExpandResult is the outcome of [PlaylistEngine.ExpandPlaylist].
type ExpandResult struct {
	Success bool     `json:"success"`
	Artists []string `json:"artists,omitempty"`
	Error   string   `json:"error,omitempty"`
	err     error
}

func (r ExpandResult) Err() error {
	return r.err
}

// HintsResult is the outcome of [PlaylistEngine.GenerateHints].
type HintsResult struct {
	Success bool            `json:"success"`
	Hints   *models.HintSet `json:"hints,omitempty"`
	Error   string          `json:"error,omitempty"`
	err     error
}

func (r HintsResult) Err() error {
	return r.err
}

// EngineOpts contains the collaborators and tuning knobs of a [PlaylistEngine].
type EngineOpts struct {
	Generator     services.Generator
	Catalog       services.Catalog
	Hints         services.HintGenerator
	BatchSize     int                                             // Accumulator batch ceiling (default: 30)
	Pacing        time.Duration                                   // Pause between accumulator batches
	Workers       int                                             // Concurrent catalog lookups (default: 1)
	StrictBatches bool                                            // First failed batch aborts a large playlist
	MaxCount      int                                             // Largest count or total accepted (default: 1000)
	Sleep         func(ctx context.Context, d time.Duration) error // Pacing implementation override
	Logger        *log.Logger
}

// PlaylistEngine runs the three playlist flows plus the expand and hint extras.
//
// Every operation converts failures (panics included) into a failed result.
type PlaylistEngine struct {
	generator   services.Generator
	catalog     services.Catalog
	hints       services.HintGenerator
	accumulator *Accumulator
	validator   *Validator
	maxCount    int
	logger      *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine from opts. Missing services surface as [shared.ErrServiceUnavailable] at call time.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = DefaultMaxCount
	}

	e := &PlaylistEngine{
		generator: opts.Generator,
		catalog:   opts.Catalog,
		hints:     opts.Hints,
		maxCount:  opts.MaxCount,
		logger:    opts.Logger,
	}
	if opts.Generator != nil {
		e.accumulator = NewAccumulator(opts.Generator, AccumulatorOpts{
			BatchSize: opts.BatchSize,
			Pacing:    opts.Pacing,
			Strict:    opts.StrictBatches,
			Sleep:     opts.Sleep,
			Logger:    opts.Logger,
		})
	}
	if opts.Catalog != nil {
		e.validator = NewValidator(opts.Catalog, opts.Workers, opts.Logger)
	}
	return e
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error(), err: err}
}

func success(p *models.Playlist) Result {
	return Result{Success: true, Playlist: p}
}

func (e *PlaylistEngine) recoverResult(op string, res *Result) {
	if r := recover(); r != nil {
		e.logger.Error("operation panicked", "op", op, "panic", r)
		*res = failure(fmt.Errorf("%s: internal error: %v", op, r))
	}
}

// DefaultMaxCount is the largest count or total an engine accepts unless configured otherwise.
const DefaultMaxCount = 1000

// prepare normalizes prompt and validates count.
func (e *PlaylistEngine) prepare(prompt string, count int, progress chan<- ProgressUpdate) (string, error) {
	clean := strings.TrimSpace(shared.Normalize(prompt))
	if clean == "" {
		return "", fmt.Errorf("%w: prompt is empty after normalization", shared.ErrInvalidInput)
	}
	if count <= 0 {
		return "", fmt.Errorf("%w: count must be positive, got %d", shared.ErrInvalidInput, count)
	}
	if count > e.maxCount {
		return "", fmt.Errorf("%w: count %d exceeds the limit of %d", shared.ErrInvalidInput, count, e.maxCount)
	}
	sendProgress(progress, normalizeUpdate(clean))
	return clean, nil
}

// GenerateSmallPlaylist asks the model for one themed artist playlist of about count names.
func (e *PlaylistEngine) GenerateSmallPlaylist(ctx context.Context, prompt string, count int, progress chan<- ProgressUpdate) (res Result) {
	defer e.recoverResult("small playlist", &res)

	clean, err := e.prepare(prompt, count, progress)
	if err != nil {
		return failure(err)
	}
	if e.generator == nil {
		return failure(fmt.Errorf("%w: generation service not configured", shared.ErrServiceUnavailable))
	}

	sendProgress(progress, generateUpdate(count, models.ShapePlaylist))
	resp, err := e.generator.Generate(ctx, models.GenerationRequest{Prompt: clean, Count: count, Shape: models.ShapePlaylist})
	if err != nil {
		return failure(fmt.Errorf("failed to generate playlist: %w", err))
	}
	if resp == nil || resp.Playlist == nil {
		return failure(&shared.MalformedResponseError{Err: errors.New("expected a playlist result")})
	}

	pl := resp.Playlist
	p := AssembleArtists(PlaylistMeta{
		Name:        pl.PlaylistName,
		Description: pl.Description,
		Tags:        pl.Tags,
		Difficulty:  pl.Difficulty,
	}, dedupe(pl.Artists))

	e.logger.Info("playlist generated", "name", p.Name, "artists", p.TotalCount)
	sendProgress(progress, assembleUpdate(p))
	return success(p)
}

// GenerateLargePlaylist accumulates up to total unique artists in paced batches.
func (e *PlaylistEngine) GenerateLargePlaylist(ctx context.Context, prompt string, total int, progress chan<- ProgressUpdate) (res Result) {
	defer e.recoverResult("large playlist", &res)

	clean, err := e.prepare(prompt, total, progress)
	if err != nil {
		return failure(err)
	}
	if e.accumulator == nil {
		return failure(fmt.Errorf("%w: generation service not configured", shared.ErrServiceUnavailable))
	}

	names, err := e.accumulator.Accumulate(ctx, clean, total, progress)
	if err != nil {
		return failure(fmt.Errorf("failed to accumulate artists: %w", err))
	}

	p := AssembleArtists(PlaylistMeta{
		Name:        MegamixName(clean),
		Description: fmt.Sprintf("Eine umfassende Sammlung von %d Künstlern zum Thema: %s", len(names), clean),
		Tags:        []string{strings.Fields(clean)[0]},
		Difficulty:  string(models.DifficultyMedium),
	}, names)

	e.logger.Info("large playlist generated", "name", p.Name, "artists", p.TotalCount, "target", total)
	sendProgress(progress, assembleUpdate(p))
	return success(p)
}

// CreateValidatedPlaylist asks the model for song candidates and keeps those found in the catalog.
func (e *PlaylistEngine) CreateValidatedPlaylist(ctx context.Context, prompt string, count int, progress chan<- ProgressUpdate) (res Result) {
	defer e.recoverResult("validated playlist", &res)

	clean, err := e.prepare(prompt, count, progress)
	if err != nil {
		return failure(err)
	}
	if e.generator == nil {
		return failure(fmt.Errorf("%w: generation service not configured", shared.ErrServiceUnavailable))
	}
	if e.validator == nil {
		return failure(fmt.Errorf("%w: catalog service not configured", shared.ErrServiceUnavailable))
	}

	sendProgress(progress, generateUpdate(count, models.ShapeSongPlaylist))
	resp, err := e.generator.Generate(ctx, models.GenerationRequest{Prompt: clean, Count: count, Shape: models.ShapeSongPlaylist})
	if err != nil {
		return failure(fmt.Errorf("failed to generate song candidates: %w", err))
	}
	if resp == nil || resp.Playlist == nil {
		return failure(&shared.MalformedResponseError{Err: errors.New("expected a song playlist result")})
	}

	pl := resp.Playlist
	candidates := dedupeCandidates(pl.Songs)

	songs, err := e.validator.Validate(ctx, candidates, progress)
	if err != nil {
		return failure(fmt.Errorf("validation interrupted: %w", err))
	}

	p := AssembleSongs(PlaylistMeta{
		Name:        pl.PlaylistName,
		Description: pl.Description,
		Tags:        pl.Tags,
		Difficulty:  pl.Difficulty,
	}, songs)

	e.logger.Info("validated playlist generated", "name", p.Name, "candidates", len(candidates), "validated", p.TotalCount)
	sendProgress(progress, assembleUpdate(p))
	return success(p)
}

// ExpandPlaylist suggests up to count artists similar to existing that are not already in it.
func (e *PlaylistEngine) ExpandPlaylist(ctx context.Context, existing []string, count int, progress chan<- ProgressUpdate) (res ExpandResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("operation panicked", "op", "expand", "panic", r)
			err := fmt.Errorf("expand: internal error: %v", r)
			res = ExpandResult{Error: err.Error(), err: err}
		}
	}()
	fail := func(err error) ExpandResult {
		return ExpandResult{Error: err.Error(), err: err}
	}

	existing = dedupe(existing)
	if len(existing) == 0 {
		return fail(fmt.Errorf("%w: no existing artists given", shared.ErrInvalidInput))
	}
	if count <= 0 {
		return fail(fmt.Errorf("%w: count must be positive, got %d", shared.ErrInvalidInput, count))
	}
	if count > e.maxCount {
		return fail(fmt.Errorf("%w: count %d exceeds the limit of %d", shared.ErrInvalidInput, count, e.maxCount))
	}
	if e.generator == nil {
		return fail(fmt.Errorf("%w: generation service not configured", shared.ErrServiceUnavailable))
	}

	prompt := ExpandPrompt(existing)
	sendProgress(progress, generateUpdate(count, models.ShapeArtistList))
	resp, err := e.generator.Generate(ctx, models.GenerationRequest{
		Prompt:     prompt,
		Count:      count,
		Exclusions: existing,
		Shape:      models.ShapeArtistList,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to expand playlist: %w", err))
	}

	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		seen[a] = struct{}{}
	}

	added := []string{}
	for _, name := range resp.Names() {
		if len(added) >= count {
			break
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		added = append(added, name)
	}
	return ExpandResult{Success: true, Artists: added}
}

// GenerateHints produces graded quiz hints for one song.
func (e *PlaylistEngine) GenerateHints(ctx context.Context, artist, track string, year int) (res HintsResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("operation panicked", "op", "hints", "panic", r)
			err := fmt.Errorf("hints: internal error: %v", r)
			res = HintsResult{Error: err.Error(), err: err}
		}
	}()
	fail := func(err error) HintsResult {
		return HintsResult{Error: err.Error(), err: err}
	}

	if strings.TrimSpace(artist) == "" || strings.TrimSpace(track) == "" {
		return fail(fmt.Errorf("%w: artist and track are required", shared.ErrInvalidInput))
	}
	if e.hints == nil {
		return fail(fmt.Errorf("%w: hint service not configured", shared.ErrServiceUnavailable))
	}

	set, err := e.hints.Hints(ctx, artist, track, year)
	if err != nil {
		return fail(fmt.Errorf("failed to generate hints: %w", err))
	}
	return HintsResult{Success: true, Hints: set}
}

// MegamixName capitalizes the first letter of prompt and appends " Megamix".
func MegamixName(prompt string) string {
	if prompt == "" {
		return "Megamix"
	}
	return strings.ToUpper(prompt[:1]) + prompt[1:] + " Megamix"
}

// ExpandPrompt describes the artists a playlist should be expanded around.
func ExpandPrompt(existing []string) string {
	return fmt.Sprintf("aehnliche Kuenstler wie %s (stilistisch passend, aus aehnlicher Aera, fuer ein Musik-Quiz geeignet)", strings.Join(existing, ", "))
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func dedupeCandidates(cs []models.Candidate) []models.Candidate {
	seen := make(map[string]struct{}, len(cs))
	out := make([]models.Candidate, 0, len(cs))
	for _, c := range cs {
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		seen[c.Key()] = struct{}{}
		out = append(out, c)
	}
	return out
}
