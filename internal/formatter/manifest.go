package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/hitline/internal/shared"
)

// ManifestEntry describes one exported playlist.
type ManifestEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ExportManifest summarizes a bulk export.
type ExportManifest struct {
	ExportedAt      time.Time       `json:"exported_at"`
	Format          string          `json:"format"`
	OutputDirectory string          `json:"output_directory"`
	Total           int             `json:"total"`
	Succeeded       int             `json:"succeeded"`
	Failed          int             `json:"failed"`
	Entries         []ManifestEntry `json:"entries"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *ExportManifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
