package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
	th "github.com/desertthunder/musicplayer/internal/testing"
)

func testExport() *PlaylistExport {
	return &PlaylistExport{
		Playlist: models.Playlist{
			ID:     1,
			Title:  "Road Trip",
			Folder: "Road_Trip",
			URL:    "https://www.youtube.com/playlist?list=PLtest",
		},
		Songs: []models.Song{
			{ID: 1, PlaylistID: 1, Title: "Song One", Filename: "Song_One.m4a", URL: "https://youtube.com/watch?v=a"},
			{ID: 2, PlaylistID: 1, Title: "Song, Two", Filename: "Song_Two.webm", URL: "https://youtube.com/watch?v=b"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportM3U", func(t *testing.T) {
		data, err := ExportM3U(testExport())
		if err != nil {
			t.Fatalf("ExportM3U failed: %v", err)
		}

		want := strings.Join([]string{
			"#EXTM3U",
			"#PLAYLIST:Road Trip",
			"#EXTINF:-1,Song One",
			"Road_Trip/Song_One.m4a",
			"#EXTINF:-1,Song, Two",
			"Road_Trip/Song_Two.webm",
			"",
		}, "\n")
		if string(data) != want {
			t.Errorf("unexpected M3U output:\n%s", data)
		}
	})

	t.Run("ExportM3U flattens multiline titles", func(t *testing.T) {
		export := testExport()
		export.Songs[0].Title = "Song\nOne"

		data, _ := ExportM3U(export)
		if !strings.Contains(string(data), "#EXTINF:-1,Song One\n") {
			t.Errorf("expected title on a single line, got:\n%s", data)
		}
	})

	t.Run("ExportCSV", func(t *testing.T) {
		data, err := ExportCSV(testExport())
		if err != nil {
			t.Fatalf("ExportCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "ID,Title,Filename,Path,URL" {
			t.Errorf("CSV missing headers, got: %v", records[0])
		}
		if records[2][1] != "Song, Two" {
			t.Errorf("expected quoted title to round trip, got %q", records[2][1])
		}
		if records[1][3] != "Road_Trip/Song_One.m4a" {
			t.Errorf("unexpected path %q", records[1][3])
		}
	})

	t.Run("ExportJSON", func(t *testing.T) {
		data, err := ExportJSON(testExport())
		if err != nil {
			t.Fatalf("ExportJSON failed: %v", err)
		}

		var got PlaylistExport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Playlist.Title != "Road Trip" || len(got.Songs) != 2 {
			t.Errorf("unexpected export %+v", got)
		}
	})

	t.Run("ExportJSON with no songs", func(t *testing.T) {
		data, err := ExportJSON(&PlaylistExport{Playlist: models.Playlist{Title: "Empty"}})
		if err != nil {
			t.Fatalf("ExportJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"songs": []`) {
			t.Errorf("expected empty songs array, got:\n%s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"m3u", FormatM3U, false},
		{"CSV", FormatCSV, false},
		{" json ", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("ParseFormat(%q): expected ErrInvalidArgument, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "trip.m3u")

		written, err := WriteExport(testExport(), FormatM3U, target)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != target {
			t.Errorf("expected %s, got %s", target, written)
		}
		if content := th.MustReadFile(t, target); !strings.HasPrefix(content, "#EXTM3U") {
			t.Errorf("unexpected file content %q", content)
		}
	})

	t.Run("default path", func(t *testing.T) {
		t.Chdir(t.TempDir())

		written, err := WriteExport(testExport(), FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "Road_Trip.csv" {
			t.Errorf("expected Road_Trip.csv, got %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("unwritable path", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "missing", "trip.json")
		if _, err := WriteExport(testExport(), FormatJSON, target); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
