package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/hitline/internal/formatter"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/desertthunder/hitline/internal/tasks"
	"github.com/urfave/cli/v3"
)

// GenerateSmall runs the single-call artist playlist flow.
func (r *Runner) GenerateSmall(ctx context.Context, cmd *cli.Command) error {
	return r.generate(ctx, cmd, models.SourceSmall, cmd.Int("count"))
}

// GenerateLarge runs the batched artist playlist flow.
func (r *Runner) GenerateLarge(ctx context.Context, cmd *cli.Command) error {
	return r.generate(ctx, cmd, models.SourceLarge, cmd.Int("total"))
}

// GenerateMix runs the validated song flow and rejects playlists below generation.min_songs.
func (r *Runner) GenerateMix(ctx context.Context, cmd *cli.Command) error {
	return r.generate(ctx, cmd, models.SourceMix, cmd.Int("count"))
}

func (r *Runner) generate(ctx context.Context, cmd *cli.Command, source models.PlaylistSource, count int) error {
	prompt, err := r.promptArg(cmd)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if cmd.String("output") != "" {
		if format, err = formatter.ParseFormat(format); err != nil {
			return err
		}
	}

	r.logger.Info("generating playlist", "source", source, "count", count)

	var res tasks.Result
	title := fmt.Sprintf("Generating %s playlist...", source)
	if err := r.withProgress(ctx, title, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) {
		switch source {
		case models.SourceLarge:
			res = r.engine.GenerateLargePlaylist(ctx, prompt, count, progress)
		case models.SourceMix:
			res = r.engine.CreateValidatedPlaylist(ctx, prompt, count, progress)
		default:
			res = r.engine.GenerateSmallPlaylist(ctx, prompt, count, progress)
		}
	}); err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("generation failed: %w", resultErr(res.Err(), res.Error))
	}
	if source == models.SourceMix {
		if err := res.Playlist.RequireMinimum(r.config.Generation.MinSongs); err != nil {
			return err
		}
	}

	if cmd.Bool("save") {
		if err := r.savePlaylist(prompt, source, res.Playlist); err != nil {
			return err
		}
	}

	if output := cmd.String("output"); output != "" {
		files, err := formatter.WriteExport(res.Playlist, format, output, false)
		if err != nil {
			return fmt.Errorf("failed to export playlist: %w", err)
		}
		for _, f := range files {
			r.logger.Info("playlist exported", "file", f)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}
	r.printPlaylist(res.Playlist)
	return nil
}

func (r *Runner) savePlaylist(prompt string, source models.PlaylistSource, p *models.Playlist) error {
	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	stored := models.NewPersistedPlaylist(0, prompt, source, *p)
	if err := store.Create(stored); err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}
	r.logger.Info("playlist saved", "id", stored.ID(), "sequence", stored.Sequence())
	return nil
}

// GenerateExpand suggests artists that fit the given list.
func (r *Runner) GenerateExpand(ctx context.Context, cmd *cli.Command) error {
	existing := cmd.StringSlice("artist")
	count := cmd.Int("count")

	var res tasks.ExpandResult
	if err := r.withProgress(ctx, "Expanding playlist...", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) {
		res = r.engine.ExpandPlaylist(ctx, existing, count, progress)
	}); err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("expand failed: %w", resultErr(res.Err(), res.Error))
	}
	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d suggested artists", len(res.Artists)))
	for i, a := range res.Artists {
		r.writePlain("%3d. %s\n", i+1, a)
	}
	return nil
}

// GenerateHints produces quiz hints for one song.
func (r *Runner) GenerateHints(ctx context.Context, cmd *cli.Command) error {
	artist, track, year := cmd.String("artist"), cmd.String("track"), cmd.Int("year")

	var res tasks.HintsResult
	if err := r.withProgress(ctx, "Writing hints...", func(ctx context.Context, _ chan<- tasks.ProgressUpdate) {
		res = r.engine.GenerateHints(ctx, artist, track, year)
	}); err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("hints failed: %w", resultErr(res.Err(), res.Error))
	}
	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s - %s", artist, track))
	for _, h := range res.Hints.Hints {
		r.writePlain("[%s] %s\n", r.yellow.Sprint(h.Level), h.Text)
	}
	if res.Hints.Trivia != "" {
		r.writePlainln("Trivia: %s", res.Hints.Trivia)
	}
	return nil
}

// Similar prints artists similar to the one given as arguments.
func (r *Runner) Similar(ctx context.Context, cmd *cli.Command) error {
	artist := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if artist == "" {
		return fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}
	if r.similar == nil {
		return fmt.Errorf("%w: Last.fm is not configured (set LASTFM_API_KEY)", shared.ErrServiceUnavailable)
	}

	if cmd.Bool("json") {
		raw, err := r.similar.SimilarRaw(ctx, artist)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", raw)
	}

	names, err := r.similar.Similar(ctx, artist)
	if err != nil {
		return err
	}
	r.writePlainHeader(fmt.Sprintf("Artists similar to %s", artist))
	for i, n := range names {
		r.writePlain("%3d. %s\n", i+1, n)
	}
	return nil
}

// promptArg joins the positional arguments into one prompt and checks its length.
func (r *Runner) promptArg(cmd *cli.Command) (string, error) {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}
	if limit := r.config.Generation.MaxPromptLength; limit > 0 && len([]rune(prompt)) > limit {
		return "", fmt.Errorf("%w: prompt is longer than %d characters", shared.ErrInvalidInput, limit)
	}
	return prompt, nil
}

func (r *Runner) printPlaylist(p *models.Playlist) {
	r.writePlainHeader(p.Name)
	if p.Description != "" {
		r.writePlain("%s\n", p.Description)
	}
	if len(p.Tags) > 0 {
		r.writePlain("Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	r.writePlain("Difficulty: %s\n\n", p.Difficulty)

	if p.Type == models.PlaylistTypeSongs {
		for i, s := range p.Songs {
			line := fmt.Sprintf("%s - %s", s.Artist, s.Title)
			if s.Year > 0 {
				line = fmt.Sprintf("%s (%d)", line, s.Year)
			}
			r.writePlain("%3d. %s\n", i+1, line)
		}
	} else {
		for i, a := range p.Artists {
			r.writePlain("%3d. %s\n", i+1, a)
		}
	}

	r.writePlainln("%s", r.green.Sprintf("✓ %d %s", p.Len(), p.Type))
}

// resultErr recovers an error from a failed result, preferring the wrapped error.
func resultErr(err error, msg string) error {
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "unknown error"
	}
	return errors.New(msg)
}
