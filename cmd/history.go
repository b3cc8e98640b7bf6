package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/desertthunder/hitline/internal/tasks"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON view of a saved playlist.
type historyEntry struct {
	ID        string                `json:"id"`
	Sequence  int                   `json:"sequence"`
	Prompt    string                `json:"prompt"`
	Source    models.PlaylistSource `json:"source"`
	CreatedAt time.Time             `json:"createdAt"`
	Playlist  models.Playlist       `json:"playlist"`
}

func toHistoryEntries(playlists []*models.PersistedPlaylist) []historyEntry {
	entries := make([]historyEntry, len(playlists))
	for i, p := range playlists {
		entries[i] = historyEntry{
			ID:        p.ID(),
			Sequence:  p.Sequence(),
			Prompt:    p.Prompt(),
			Source:    p.Source(),
			CreatedAt: p.CreatedAt(),
			Playlist:  p.Playlist(),
		}
	}
	return entries
}

// HistoryList lists saved playlists, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	playlists, err := store.List(map[string]any{
		"type":   cmd.String("type"),
		"source": cmd.String("source"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(toHistoryEntries(playlists), cmd.Bool("pretty"))
	}
	r.printHistory(playlists)
	return nil
}

// HistoryShow prints one saved playlist.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := store.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(toHistoryEntries([]*models.PersistedPlaylist{p})[0], cmd.Bool("pretty"))
	}
	pl := p.Playlist()
	r.printPlaylist(&pl)
	r.writePlain("Prompt: %s\nSource: %s\nCreated: %s\n", p.Prompt(), p.Source(), p.CreatedAt().Format(time.RFC3339))
	return nil
}

// HistoryFind ranks saved playlists by a fuzzy match on name and prompt.
func (r *Runner) HistoryFind(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	playlists, err := store.Search(query, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to search playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(toHistoryEntries(playlists), cmd.Bool("pretty"))
	}
	if len(playlists) == 0 {
		r.writePlain("%s\n", r.yellow.Sprintf("No playlists match %q", query))
		return nil
	}
	r.printHistory(playlists)
	return nil
}

// HistoryExport writes saved playlists to files through the bulk exporter.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	all := cmd.Bool("all")
	if len(ids) == 0 && !all {
		return fmt.Errorf("%w: pass playlist ids or --all", shared.ErrMissingArgument)
	}
	if len(ids) > 0 && all {
		return fmt.Errorf("%w: cannot combine ids with --all", shared.ErrInvalidArgument)
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if all {
		playlists, err := store.List(map[string]any{})
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		for _, p := range playlists {
			ids = append(ids, p.ID())
		}
		if len(ids) == 0 {
			r.writePlain("%s\n", r.yellow.Sprint("No saved playlists to export"))
			return nil
		}
	}

	opts := tasks.BulkExportOpts{
		Format:         cmd.String("format"),
		OutputDir:      cmd.String("output"),
		NumWorkers:     cmd.Int("workers"),
		DownloadCovers: cmd.Bool("covers"),
	}

	var result *tasks.BulkExportResult
	var exportErr error
	title := fmt.Sprintf("Exporting %d playlists...", len(ids))
	if err := r.withProgress(ctx, title, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) {
		result, exportErr = r.engine.BulkExport(ctx, progress, store, ids, opts)
	}); err != nil {
		return err
	}
	if exportErr != nil {
		return fmt.Errorf("export failed: %w", exportErr)
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest:  %s\n", result.ManifestPath)
	r.writePlain("%s\n", r.green.Sprintf("Exported: %d/%d", result.SuccessfulExports, result.TotalPlaylists))
	if result.FailedExports > 0 {
		r.writePlain("%s\n", r.red.Sprintf("Failed: %d", result.FailedExports))
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.PlaylistName, res.Error)
			}
		}
	}
	return nil
}

// HistoryDelete soft-deletes a saved playlist.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(id); err != nil {
		return err
	}
	r.writePlain("%s\n", r.green.Sprintf("✓ Deleted %s", id))
	return nil
}

func (r *Runner) printHistory(playlists []*models.PersistedPlaylist) {
	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for _, p := range playlists {
		pl := p.Playlist()
		r.writePlain("%s  %s\n", r.bold.Sprint(p.Name()), r.yellow.Sprintf("[%s]", p.Source()))
		r.writePlain("   ID: %s\n", p.ID())
		r.writePlain("   %d %s • %s\n", pl.Len(), pl.Type, p.CreatedAt().Format("2006-01-02 15:04"))
		if p.Prompt() != "" {
			r.writePlain("   Prompt: %s\n", p.Prompt())
		}
		r.writePlain("\n")
	}
}
