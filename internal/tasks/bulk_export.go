package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/hitline/internal/formatter"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
)

// PlaylistStore loads stored playlists by ID.
type PlaylistStore interface {
	Get(id string) (*models.PersistedPlaylist, error)
}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format         string // Export format: json, csv, markdown, txt
	OutputDir      string // Base output directory (default: hitline_export_{epoch})
	NumWorkers     int    // Concurrent workers (default: 5)
	DownloadCovers bool   // Fetch album art as cover image for markdown exports
}

// PlaylistExportJob is one unit of work for an export worker.
type PlaylistExportJob struct {
	Index    int
	Playlist *models.PersistedPlaylist
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult // In the order of the requested IDs
}

// BulkExport exports stored playlists concurrently and writes a manifest summarizing the results.
//
// Playlists that fail to load or write are recorded as failed results; the export carries on with the rest.
func (e *PlaylistEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	store PlaylistStore,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}

	format, err := formatter.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("hitline_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, len(ids)),
	}

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan indexedExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if ctx.Err() != nil {
				return
			}

			pl, err := store.Get(id)
			if err != nil {
				results <- indexedExportResult{i, PlaylistExportResult{
					PlaylistID:   id,
					PlaylistName: fmt.Sprintf("Unknown (%s)", id),
					Error:        fmt.Errorf("failed to load playlist: %w", err),
				}}
				continue
			}

			sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), pl.Name()))
			jobs <- PlaylistExportJob{Index: i, Playlist: pl}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	filled := make([]bool, len(ids))
	for res := range results {
		completed++
		result.Results[res.index] = res.result
		filled[res.index] = true

		if res.result.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.result.PlaylistName, len(res.result.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.result.PlaylistName, res.result.Error))
		}
	}

	for i, ok := range filled {
		if !ok {
			result.Results[i] = PlaylistExportResult{PlaylistID: ids[i], Error: fmt.Errorf("export cancelled: %w", ctx.Err())}
			result.FailedExports++
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(buildManifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

type indexedExportResult struct {
	index  int
	result PlaylistExportResult
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- indexedExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- indexedExportResult{job.Index, e.exportSinglePlaylist(job, opts)}
	}
}

// exportSinglePlaylist exports a single playlist to the appropriate format.
func (e *PlaylistEngine) exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.Playlist.ID(),
		PlaylistName: j.Playlist.Name(),
		Files:        []string{},
	}

	p := j.Playlist.Playlist()
	base := filepath.Join(opts.OutputDir, j.Playlist.ID())

	files, err := formatter.WriteExport(&p, opts.Format, base, opts.DownloadCovers)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = files
	result.Success = true
	return result
}

func buildManifest(r *BulkExportResult, format string) *formatter.ExportManifest {
	m := &formatter.ExportManifest{
		ExportedAt:      time.Now(),
		Format:          format,
		OutputDirectory: r.OutputDirectory,
		Total:           r.TotalPlaylists,
		Succeeded:       r.SuccessfulExports,
		Failed:          r.FailedExports,
		Entries:         make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			ID:      res.PlaylistID,
			Name:    res.PlaylistName,
			Success: res.Success,
			Files:   res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}
