// package formatter renders a listed playlist as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
)

const watchURL = "https://www.youtube.com/watch?v="

// Format names an export layout accepted by `plcopy list --format`.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText}

// ParseFormat resolves a user-supplied format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want csv, markdown or text)", shared.ErrInvalidArgument, s)
}

// Extension is the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".csv"
	}
}

// ToCSV writes one row per item with columns: Position, Video ID, Title, Item ID
func ToCSV(items []services.PlaylistItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Video ID", "Title", "Item ID"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{strconv.Itoa(item.Position), item.VideoID, item.Title, item.ID}
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

// ToMarkdown renders a numbered list of watch links under a heading for the playlist.
func ToMarkdown(playlistID string, items []services.PlaylistItem) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Playlist %s\n\n", playlistID)
	fmt.Fprintf(&buf, "**Videos**: %d\n\n", len(items))
	buf.WriteString("## Videos\n\n")

	for i, item := range items {
		title := item.Title
		if title == "" {
			title = item.VideoID
		}
		fmt.Fprintf(&buf, "%d. [%s](%s%s)\n", i+1, escapeMarkdown(title), watchURL, item.VideoID)
	}
	return buf.Bytes()
}

// ToText renders the playlist as numbered "video ID - title" lines.
func ToText(playlistID string, items []services.PlaylistItem) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", playlistID)
	fmt.Fprintf(&buf, "Videos: %d\n\n", len(items))

	for i, item := range items {
		if item.Title == "" {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, item.VideoID)
			continue
		}
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, item.VideoID, item.Title)
	}
	return buf.Bytes()
}

// Render produces the export for f.
func Render(f Format, playlistID string, items []services.PlaylistItem) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ToCSV(items)
	case FormatMarkdown:
		return ToMarkdown(playlistID, items), nil
	case FormatText:
		return ToText(playlistID, items), nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// WriteExport renders items and writes them to path, creating parent directories.
//
// An empty path defaults to {playlistID}{ext} in the working directory. Returns the path written.
func WriteExport(f Format, playlistID string, items []services.PlaylistItem, path string) (string, error) {
	if path == "" {
		path = playlistID + f.Extension()
	}

	data, err := Render(f, playlistID, items)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", f, err)
	}
	return path, nil
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
