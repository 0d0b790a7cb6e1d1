package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/musicplayer/internal/formatter"
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/desertthunder/musicplayer/internal/tasks"
	"github.com/urfave/cli/v3"
)

func playlistCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}}
	}
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{Name: "json", Usage: "Output as JSON"}
	}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage mirrored playlists",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Mirror a playlist into the library",
				ArgsUsage: "<url>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Action:    r.PlaylistAdd,
			},
			{
				Name:      "sync",
				Usage:     "Bring a playlist in line with its remote source",
				ArgsUsage: "<id>",
				Arguments: idArg(),
				Action:    r.PlaylistSync,
			},
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistList,
			},
			{
				Name:      "songs",
				Usage:     "List the songs of a playlist",
				ArgsUsage: "<id>",
				Arguments: idArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.PlaylistSongs,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist, its songs and its folder",
				ArgsUsage: "<id>",
				Arguments: idArg(),
				Action:    r.PlaylistDelete,
			},
			{
				Name:      "export",
				Usage:     "Export a playlist to M3U, CSV or JSON",
				ArgsUsage: "<id>",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: m3u, csv or json",
						Value:   string(formatter.FormatM3U),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, \"-\" for stdout (default: <folder>.<format>)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// runSync executes fn while printing its progress updates.
func (r *Runner) runSync(fn func(progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)) (*tasks.SyncResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result, err := fn(progress)
	close(progress)
	<-done

	return result, err
}

func (r *Runner) printResult(result *tasks.SyncResult) {
	if result == nil {
		return
	}
	for _, song := range result.Added {
		r.writePlain("  + %s\n", song.Title)
	}
	for _, song := range result.Removed {
		r.writePlain("  - %s\n", song.Title)
	}
}

// PlaylistAdd mirrors the playlist at the url argument.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: playlist url", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	result, err := r.runSync(func(progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error) {
		return r.engine.Create(ctx, rawURL, progress)
	})
	r.printResult(result)
	if err != nil {
		if result != nil && len(result.Added) > 0 {
			r.writePlain("%d songs were downloaded before the failure and kept.\n", len(result.Added))
		}
		return err
	}

	r.writePlain("✓ Added '%s' (id %d) with %d songs\n", result.Playlist.Title, result.Playlist.ID, len(result.Added))
	return nil
}

// PlaylistSync downloads new songs and removes stale ones for the playlist id argument.
func (r *Runner) PlaylistSync(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	result, err := r.runSync(func(progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error) {
		return r.engine.Update(ctx, id, progress)
	})
	r.printResult(result)
	if err != nil {
		return err
	}

	r.writePlain("✓ Synced '%s': %d added, %d removed\n", result.Playlist.Title, len(result.Added), len(result.Removed))
	return nil
}

// PlaylistList prints every playlist.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	playlists, err := r.engine.Playlists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if playlists == nil {
			playlists = []models.Playlist{}
		}
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%4d  %s\n      %s\n", p.ID, p.Title, p.URL)
	}
	return nil
}

// PlaylistSongs prints the songs of the playlist id argument.
func (r *Runner) PlaylistSongs(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	playlist, err := r.engine.Playlist(ctx, id)
	if err != nil {
		return err
	}
	songs, err := r.engine.Songs(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if songs == nil {
			songs = []models.Song{}
		}
		return r.writeJSON(songs, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d songs)", playlist.Title, len(songs)))
	for i, s := range songs {
		r.writePlain("%3d. %s\n     %s/%s\n", i+1, s.Title, playlist.Folder, s.Filename)
	}
	return nil
}

// PlaylistDelete removes the playlist id argument along with its songs and folder.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.engine.Delete(ctx, id); err != nil {
		return err
	}
	r.writePlain("✓ Deleted playlist %d\n", id)
	return nil
}

// PlaylistExport writes the playlist id argument in the requested format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	playlist, err := r.engine.Playlist(ctx, id)
	if err != nil {
		return err
	}
	songs, err := r.engine.Songs(ctx, id)
	if err != nil {
		return err
	}
	export := &formatter.PlaylistExport{Playlist: *playlist, Songs: songs}

	output := cmd.String("output")
	if output == "-" {
		data, err := formatter.Export(export, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d songs to %s\n", len(songs), path)
	return nil
}
