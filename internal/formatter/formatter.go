// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ParseFormat maps user input onto a supported format.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// ExportToCSV converts a playlist to CSV.
//
// Artist playlists have columns Position, Artist; song playlists add Title, Year, CatalogID, PreviewURL, AlbumArt, Reason.
func ExportToCSV(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	var rows [][]string
	if p.Type == models.PlaylistTypeSongs {
		rows = append(rows, []string{"Position", "Artist", "Title", "Year", "CatalogID", "PreviewURL", "AlbumArt", "Reason"})
		for i, s := range p.Songs {
			year := ""
			if s.Year > 0 {
				year = strconv.Itoa(s.Year)
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), s.Artist, s.Title, year, s.CatalogID, s.PreviewURL, s.AlbumArtURL, s.AIReason})
		}
	} else {
		rows = append(rows, []string{"Position", "Artist"})
		for i, a := range p.Artists {
			rows = append(rows, []string{strconv.Itoa(i + 1), a})
		}
	}

	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown with an optional cover image.
func ExportToMarkdown(p *models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if p.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", p.Description)
	}

	fmt.Fprintf(&buf, "**Entries**: %d\n", p.TotalCount)
	fmt.Fprintf(&buf, "**Difficulty**: %s\n", p.Difficulty)
	if len(p.Tags) > 0 {
		fmt.Fprintf(&buf, "**Tags**: %s\n", strings.Join(p.Tags, ", "))
	}
	buf.WriteString("\n")

	if p.Type == models.PlaylistTypeSongs {
		buf.WriteString("## Songs\n\n")
		for i, s := range p.Songs {
			fmt.Fprintf(&buf, "%d. %s - %s", i+1, s.Artist, s.Title)
			if s.Year > 0 {
				fmt.Fprintf(&buf, " (%d)", s.Year)
			}
			buf.WriteString("\n")
			if s.AlbumArtURL != "" {
				fmt.Fprintf(&buf, "   ![%s](%s)\n", s.Title, s.AlbumArtURL)
			}
			if s.AIReason != "" {
				fmt.Fprintf(&buf, "   _%s_\n", s.AIReason)
			}
		}
	} else {
		buf.WriteString("## Artists\n\n")
		for i, a := range p.Artists {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, a)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&buf, "Entries: %d\n\n", p.TotalCount)

	if p.Type == models.PlaylistTypeSongs {
		for i, s := range p.Songs {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, s.Artist, s.Title)
		}
	} else {
		for i, a := range p.Artists {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, a)
		}
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without entries)
func ToMetadataJSON(p *models.Playlist) ([]byte, error) {
	meta := struct {
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Type        models.PlaylistType `json:"type"`
		Tags        []string            `json:"tags"`
		Difficulty  models.Difficulty   `json:"difficulty"`
		TotalCount  int                 `json:"totalCount"`
	}{p.Name, p.Description, p.Type, p.Tags, p.Difficulty, p.TotalCount}
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile  string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Creates {base}_entries.csv and {base}_metadata.json
func WriteCSVExport(p *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(p.Name)
	}

	csvData, err := ExportToCSV(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		EntriesFile:  entriesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(p *models.Playlist, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(p.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			log.Warn("failed to download cover image", "url", imageURL, "err", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				log.Warn("failed to save cover image", "path", coverImagePath, "err", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(p, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {slug}_entries.txt as the filename.
func WriteTextExport(p *models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(p.Name) + "_entries.txt"
	}

	textData, err := ExportToText(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full playlist as indented JSON.
func WriteJSONExport(p *models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(p.Name) + ".json"
	}

	data, err := shared.MarshalJSON(p, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// WriteExport writes p in format under base and returns the files created.
//
// json and txt write base.json and base.txt, csv writes base_entries.csv and base_metadata.json,
// and markdown treats base as a directory holding README.md.
//
// Markdown exports of song playlists use the first album art as cover image when downloadCover is set.
func WriteExport(p *models.Playlist, format, base string, downloadCover bool) ([]string, error) {
	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(p, base)
		if err != nil {
			return nil, err
		}
		return []string{res.EntriesFile, res.MetadataFile}, nil

	case FormatMarkdown:
		var imageURL string
		if downloadCover {
			imageURL = coverURL(p)
		}
		res, err := WriteMarkdownExport(p, base, imageURL)
		if err != nil {
			return nil, err
		}
		return res.Files, nil

	case FormatText:
		path := base
		if path != "" {
			path += ".txt"
		}
		f, err := WriteTextExport(p, path)
		if err != nil {
			return nil, err
		}
		return []string{f}, nil

	case FormatJSON:
		path := base
		if path != "" {
			path += ".json"
		}
		f, err := WriteJSONExport(p, path)
		if err != nil {
			return nil, err
		}
		return []string{f}, nil

	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

func coverURL(p *models.Playlist) string {
	for _, s := range p.Songs {
		if s.AlbumArtURL != "" {
			return s.AlbumArtURL
		}
	}
	return ""
}

// Slug turns a playlist name into a lowercase file-name-safe string.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(shared.Normalize(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "playlist"
	}
	return s
}
