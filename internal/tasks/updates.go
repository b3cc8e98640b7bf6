package tasks

import (
	"fmt"

	"github.com/desertthunder/hitline/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Normalize Phase = iota
	Generate
	AccumulateBatch
	ValidateCandidates
	AssemblePlaylist
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case Normalize:
		return "normalize"
	case Generate:
		return "generate"
	case AccumulateBatch:
		return "accumulate_batch"
	case ValidateCandidates:
		return "validate_candidates"
	case AssemblePlaylist:
		return "assemble_playlist"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func normalizeUpdate(prompt string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Normalize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Prompt: %s", prompt),
		Data:    prompt,
	}
}

func generateUpdate(count int, shape models.ResponseShape) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Generate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Asking the model for %d entries (%s)...", count, shape),
	}
}

func batchUpdate(step, total, have, target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AccumulateBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Generating batch (%d/%d artists so far)...", step, total, have, target),
	}
}

func batchDoneUpdate(step, total, added, have int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AccumulateBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] +%d new artists (%d total)", step, total, added, have),
		Data:    have,
	}
}

func validateUpdate(step, total int, c models.Candidate, found bool) ProgressUpdate {
	mark := "✓"
	if !found {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   ValidateCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, c.Artist, c.Track),
		Data:    c,
	}
}

func assembleUpdate(p *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist assembled: %s (%d entries)", p.Name, p.TotalCount),
		Data:    p,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
