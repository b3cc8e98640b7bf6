package tasks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/services"
)

// DefaultBatchSize is the largest number of names requested in one generation call.
const DefaultBatchSize = 30

// AccumulatorOpts configures an [Accumulator].
type AccumulatorOpts struct {
	BatchSize int                                             // Names per generation call (default: 30)
	Pacing    time.Duration                                   // Pause between batches
	Strict    bool                                            // Abort on the first failed batch
	Sleep     func(ctx context.Context, d time.Duration) error // Pause implementation (default: context-aware timer)
	Logger    *log.Logger
}

// Accumulator collects a large list of unique artist names through repeated, paced generation calls.
//
// Each call carries every name gathered so far as its exclusion list.
type Accumulator struct {
	generator services.Generator
	batchSize int
	pacing    time.Duration
	strict    bool
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *log.Logger
}

// NewAccumulator creates an Accumulator around gen.
func NewAccumulator(gen services.Generator, opts AccumulatorOpts) *Accumulator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pacing < 0 {
		opts.Pacing = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Accumulator{
		generator: gen,
		batchSize: opts.BatchSize,
		pacing:    opts.Pacing,
		strict:    opts.Strict,
		sleep:     opts.Sleep,
		logger:    opts.Logger,
	}
}

// Accumulate gathers up to target unique names for prompt.
//
// The returned slice never holds duplicates (case-sensitive) nor more than target names; its length is authoritative.
// A failed batch is skipped unless the accumulator is strict. When no batch succeeded, the last batch error is returned.
// On cancellation the names gathered so far are returned together with the context error.
func (a *Accumulator) Accumulate(ctx context.Context, prompt string, target int, progress chan<- ProgressUpdate) ([]string, error) {
	acc := make([]string, 0, max(min(target, a.batchSize), 0))
	if target <= 0 {
		return acc, nil
	}

	batches := (target-1)/a.batchSize + 1
	seen := make(map[string]struct{}, min(target, a.batchSize))

	var lastErr error
	for i := 0; i < batches && len(acc) < target; i++ {
		if err := ctx.Err(); err != nil {
			return acc, err
		}

		current := min(a.batchSize, target-len(acc))
		sendProgress(progress, batchUpdate(i+1, batches, len(acc), target))

		resp, err := a.generator.Generate(ctx, models.GenerationRequest{
			Prompt:     prompt,
			Count:      current,
			Exclusions: slices.Clone(acc),
			Shape:      models.ShapeArtistList,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return acc, ctxErr
			}
			if a.strict {
				return acc, fmt.Errorf("batch %d/%d failed: %w", i+1, batches, err)
			}
			a.logger.Warn("batch failed, continuing", "batch", i+1, "batches", batches, "err", err)
			lastErr = err
		} else {
			added := 0
			for _, name := range resp.Names() {
				if len(acc) >= target {
					break
				}
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				acc = append(acc, name)
				added++
			}
			a.logger.Debug("batch accumulated", "batch", i+1, "added", added, "total", len(acc))
			sendProgress(progress, batchDoneUpdate(i+1, batches, added, len(acc)))
		}

		if i < batches-1 && len(acc) < target {
			if err := a.sleep(ctx, a.pacing); err != nil {
				return acc, err
			}
		}
	}

	if len(acc) == 0 && lastErr != nil {
		return acc, lastErr
	}
	return acc, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
