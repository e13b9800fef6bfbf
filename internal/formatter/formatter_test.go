package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
	th "github.com/desertthunder/plcopy/internal/testing"
)

func sampleItems() []services.PlaylistItem {
	return []services.PlaylistItem{
		{ID: "item-1", VideoID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", Position: 0},
		{ID: "item-2", VideoID: "9bZkp7q19f0", Title: "Gangnam Style, [Official]", Position: 1},
		{ID: "item-3", VideoID: "kJQP7kiw5Fk", Position: 2},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"text", FormatText},
		{" txt ", FormatText},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ToCSV", func(t *testing.T) {
		data, err := ToCSV(sampleItems())
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Position,Video ID,Title,Item ID" {
			t.Errorf("unexpected header %v", records[0])
		}
		if records[2][2] != "Gangnam Style, [Official]" {
			t.Errorf("title with comma not preserved: %q", records[2][2])
		}
		if records[3][0] != "2" || records[3][1] != "kJQP7kiw5Fk" {
			t.Errorf("unexpected third row %v", records[3])
		}
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		output := string(ToMarkdown("PLsource", sampleItems()))

		if !strings.Contains(output, "# Playlist PLsource") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Videos**: 3") {
			t.Errorf("Markdown missing video count")
		}
		if !strings.Contains(output, "1. [Never Gonna Give You Up](https://www.youtube.com/watch?v=dQw4w9WgXcQ)") {
			t.Errorf("Markdown missing first link, got: %s", output)
		}
		if !strings.Contains(output, `2. [Gangnam Style, \[Official\]]`) {
			t.Errorf("Markdown brackets not escaped, got: %s", output)
		}
		if !strings.Contains(output, "3. [kJQP7kiw5Fk](https://www.youtube.com/watch?v=kJQP7kiw5Fk)") {
			t.Errorf("untitled video should fall back to its ID, got: %s", output)
		}
	})

	t.Run("ToText", func(t *testing.T) {
		output := string(ToText("PLsource", sampleItems()))

		for _, want := range []string{
			"Playlist: PLsource",
			"Videos: 3",
			"1. dQw4w9WgXcQ - Never Gonna Give You Up",
			"3. kJQP7kiw5Fk\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		for _, f := range Formats {
			data, err := Render(f, "PLempty", nil)
			if err != nil {
				t.Errorf("%s: unexpected error %v", f, err)
			}
			if len(data) == 0 {
				t.Errorf("%s: expected header output", f)
			}
		}
	})

	t.Run("Render unknown", func(t *testing.T) {
		if _, err := Render(Format("xml"), "PL", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("WithDefaultPath", func(t *testing.T) {
		dir := t.TempDir()
		wd := th.MustGetwd(t)
		th.MustChdir(t, dir)
		defer th.MustChdir(t, wd)

		path, err := WriteExport(FormatMarkdown, "PLsource", sampleItems(), "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "PLsource.md" {
			t.Errorf("expected default path PLsource.md, got %s", path)
		}
		th.AssertFileExists(t, filepath.Join(dir, "PLsource.md"))
	})

	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "videos.csv")

		written, err := WriteExport(FormatCSV, "PLsource", sampleItems(), path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Position,Video ID,Title,Item ID") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if _, err := WriteExport(FormatText, "PL", nil, blocker); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := WriteExport(FormatText, "PL", nil, filepath.Join(blocker, "nested.txt")); err == nil {
			t.Error("expected error writing beneath a regular file")
		}
	})
}
