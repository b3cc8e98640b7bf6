package tasks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/services"
	"github.com/desertthunder/hitline/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Validator looks up candidates in a catalog and keeps the ones it finds.
type Validator struct {
	catalog services.Catalog
	workers int
	logger  *log.Logger
}

// NewValidator creates a Validator running at most workers lookups at once (minimum 1).
func NewValidator(catalog services.Catalog, workers int, logger *log.Logger) *Validator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Validator{catalog: catalog, workers: workers, logger: logger}
}

// Validate resolves each candidate against the catalog.
//
// Candidates without a match or whose lookup fails are logged and dropped. The result keeps the input order.
// The only error returned is the context's.
func (v *Validator) Validate(ctx context.Context, candidates []models.Candidate, progress chan<- ProgressUpdate) ([]models.ValidatedSong, error) {
	slots := make([]*models.ValidatedSong, len(candidates))
	total := len(candidates)
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			song, err := v.lookup(gctx, c)
			step := int(done.Add(1))
			switch {
			case err == nil:
				slots[i] = song
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, shared.ErrInvalidInput):
				v.logger.Warn("candidate without artist skipped", "track", c.Track)
			case errors.Is(err, shared.ErrNoMatchFound):
				v.logger.Warn("song not found", "artist", c.Artist, "track", c.Track)
			default:
				v.logger.Warn("catalog lookup failed", "artist", c.Artist, "track", c.Track, "err", err)
			}
			sendProgress(progress, validateUpdate(step, total, c, err == nil))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return compact(slots), err
	}
	if err := ctx.Err(); err != nil {
		return compact(slots), err
	}
	return compact(slots), nil
}

func (v *Validator) lookup(ctx context.Context, c models.Candidate) (*models.ValidatedSong, error) {
	if c.Artist == "" {
		return nil, shared.ErrInvalidInput
	}

	matches, err := v.catalog.SearchTracks(ctx, models.TrackQuery{Artist: c.Artist, Track: c.Track, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, shared.ErrNoMatchFound
	}

	m := matches[0]
	title := c.Track
	if title == "" {
		title = m.Name
	}
	return &models.ValidatedSong{
		Artist:      c.Artist,
		Title:       title,
		Year:        c.Year,
		CatalogID:   m.ID,
		PreviewURL:  m.PreviewURL,
		AlbumArtURL: m.AlbumArtURL,
		AIReason:    c.Reason,
	}, nil
}

func compact(slots []*models.ValidatedSong) []models.ValidatedSong {
	out := make([]models.ValidatedSong, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
