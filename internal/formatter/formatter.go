// package formatter exports a playlist and its songs to M3U, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatM3U  Format = "m3u"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatM3U, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q (want m3u, csv or json)", shared.ErrInvalidArgument, s)
	}
}

// PlaylistExport is a playlist together with its songs.
type PlaylistExport struct {
	Playlist models.Playlist `json:"playlist"`
	Songs    []models.Song   `json:"songs"`
}

// SongPath is the location of a song relative to the upload root.
func (e *PlaylistExport) SongPath(s models.Song) string {
	return path.Join(e.Playlist.Folder, s.Filename)
}

// ExportM3U writes an extended M3U playlist. Entries point at <folder>/<filename>, so the file plays when
// saved in the upload root.
func ExportM3U(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("#EXTM3U\n")
	buf.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", oneLine(export.Playlist.Title)))
	for _, song := range export.Songs {
		buf.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", oneLine(song.Title)))
		buf.WriteString(export.SongPath(song) + "\n")
	}

	return buf.Bytes(), nil
}

// ExportCSV converts a playlist's songs to CSV format with columns: ID, Title, Filename, Path, URL
func ExportCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Filename", "Path", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			strconv.FormatInt(song.ID, 10),
			song.Title,
			song.Filename,
			export.SongPath(song),
			song.URL,
		}
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

// ExportJSON renders the playlist and songs as indented JSON.
func ExportJSON(export *PlaylistExport) ([]byte, error) {
	out := *export
	if out.Songs == nil {
		out.Songs = []models.Song{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders export in format.
func Export(export *PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case FormatM3U:
		return ExportM3U(export)
	case FormatCSV:
		return ExportCSV(export)
	case FormatJSON:
		return ExportJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders export and writes it to filepath.
//
// Defaults to {playlist.Folder}.{format} as the filename.
func WriteExport(export *PlaylistExport, format Format, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.%s", export.Playlist.Folder, format)
	}

	data, err := Export(export, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filepath, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
