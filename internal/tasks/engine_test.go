package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/musicplayer/internal/library"
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/repositories"
	"github.com/desertthunder/musicplayer/internal/shared"
	tu "github.com/desertthunder/musicplayer/internal/testing"
)

const playlistURL = "https://www.youtube.com/playlist?list=PLtest"

var testHosts = []string{"youtube.com", "m.youtube.com", "music.youtube.com"}

type fixture struct {
	engine    *Engine
	platform  *tu.FakePlatform
	playlists *repositories.PlaylistRepository
	songs     *repositories.SongRepository
	store     *library.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := shared.OpenLibraryDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := library.NewStore(filepath.Join(t.TempDir(), "uploads"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	f := &fixture{
		platform:  tu.NewFakePlatform(),
		playlists: repositories.NewPlaylistRepository(db),
		songs:     repositories.NewSongRepository(db),
		store:     store,
	}
	f.engine = NewEngine(EngineOpts{
		Platform:  f.platform,
		Playlists: f.playlists,
		Songs:     f.songs,
		Store:     store,
		Hosts:     testHosts,
		Logger:    shared.NewLogger(&strings.Builder{}),
	})
	return f
}

func (f *fixture) folderDir(p *models.Playlist) string {
	return filepath.Join(f.store.Root(), p.Folder)
}

func (f *fixture) mustSongs(t *testing.T, id int64) []models.Song {
	t.Helper()
	songs, err := f.songs.ListByPlaylist(id)
	if err != nil {
		t.Fatalf("failed to list songs: %v", err)
	}
	return songs
}

func TestEngineCreate(t *testing.T) {
	t.Run("downloads every video", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip",
			tu.FakeVideo("a", "First Song"),
			tu.FakeVideo("b", "Second Song"),
			tu.FakeVideo("c", "Third Song"),
		)

		result, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		playlists, _ := f.playlists.List()
		if len(playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(playlists))
		}
		p := playlists[0]
		if p.Title != "Road Trip" || p.Folder != "Road_Trip" || p.URL != playlistURL {
			t.Errorf("unexpected playlist %+v", p)
		}

		songs := f.mustSongs(t, p.ID)
		if len(songs) != 3 || len(result.Added) != 3 {
			t.Fatalf("expected 3 songs, got %d rows and %d added", len(songs), len(result.Added))
		}
		if n := tu.CountFiles(t, f.folderDir(&p)); n != 3 {
			t.Errorf("expected 3 files on disk, got %d", n)
		}

		seen := map[string]bool{}
		for _, s := range songs {
			if seen[s.URL] {
				t.Errorf("duplicate song url %s", s.URL)
			}
			seen[s.URL] = true
			if strings.Contains(s.URL, "www.") {
				t.Errorf("expected canonical url, got %s", s.URL)
			}
			if !strings.HasSuffix(s.Filename, ".m4a") {
				t.Errorf("expected filename with extension, got %s", s.Filename)
			}
			tu.AssertFileExists(t, filepath.Join(f.folderDir(&p), s.Filename))
		}
		if songs[0].Filename != "First_Song.m4a" {
			t.Errorf("expected First_Song.m4a, got %s", songs[0].Filename)
		}
	})

	t.Run("rejects foreign hosts", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.Create(context.Background(), "https://vimeo.com/showcase/1", nil)
		if !errors.Is(err, shared.ErrInvalidHost) {
			t.Fatalf("expected ErrInvalidHost, got %v", err)
		}
		if all, _ := f.playlists.List(); len(all) != 0 {
			t.Errorf("expected no playlists, got %d", len(all))
		}
	})

	t.Run("rejects missing url", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.engine.Create(context.Background(), "", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects duplicate titles", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))
		other := "https://youtube.com/playlist?list=PLother"
		f.platform.SetPlaylist(other, "Road Trip", tu.FakeVideo("b", "Second Song"))

		if _, err := f.engine.Create(context.Background(), playlistURL, nil); err != nil {
			t.Fatalf("first create failed: %v", err)
		}

		_, err := f.engine.Create(context.Background(), other, nil)
		if !errors.Is(err, shared.ErrDuplicatePlaylist) {
			t.Fatalf("expected ErrDuplicatePlaylist, got %v", err)
		}

		playlists, _ := f.playlists.List()
		if len(playlists) != 1 {
			t.Errorf("expected 1 playlist, got %d", len(playlists))
		}
		if n := f.platform.DownloadCount(); n != 1 {
			t.Errorf("expected 1 download, got %d", n)
		}
	})

	t.Run("title match is case sensitive", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip")
		other := "https://youtube.com/playlist?list=PLother"
		f.platform.SetPlaylist(other, "road trip")

		if _, err := f.engine.Create(context.Background(), playlistURL, nil); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		result, err := f.engine.Create(context.Background(), other, nil)
		if err != nil {
			t.Fatalf("second create failed: %v", err)
		}
		if result.Playlist.Folder == "Road_Trip" {
			t.Error("expected a distinct folder for the second playlist")
		}
	})

	t.Run("unsanitizable title uses a token folder", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "日本語", tu.FakeVideo("a", "曲"))

		result, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if len(result.Playlist.Folder) != 32 {
			t.Errorf("expected token folder, got %s", result.Playlist.Folder)
		}
		if name := result.Added[0].Filename; !strings.HasSuffix(name, ".m4a") || len(name) != 36 {
			t.Errorf("expected token filename, got %s", name)
		}
	})

	t.Run("repeated video titles don't overwrite", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Covers", tu.FakeVideo("a", "Hallelujah"), tu.FakeVideo("b", "Hallelujah"))

		result, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if result.Added[0].Filename == result.Added[1].Filename {
			t.Fatalf("expected distinct filenames, got %s twice", result.Added[0].Filename)
		}
		for _, s := range result.Added {
			got := tu.MustReadFile(t, filepath.Join(f.folderDir(result.Playlist), s.Filename))
			want := "audio:" + strings.TrimPrefix(s.URL, "https://youtube.com/watch?v=")
			if got != want {
				t.Errorf("file %s holds %q, want %q", s.Filename, got, want)
			}
		}
	})

	t.Run("failure keeps committed songs", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip",
			tu.FakeVideo("a", "First Song"),
			tu.FakeVideo("b", "Second Song"),
			tu.FakeVideo("c", "Third Song"),
		)
		f.platform.DownloadErr["b"] = errors.New("connection reset")

		result, err := f.engine.Create(context.Background(), playlistURL, nil)
		if !errors.Is(err, shared.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
		if result == nil || len(result.Added) != 1 {
			t.Fatalf("expected 1 committed song in result, got %+v", result)
		}

		p := result.Playlist
		if songs := f.mustSongs(t, p.ID); len(songs) != 1 {
			t.Errorf("expected 1 song row, got %d", len(songs))
		}
		if n := tu.CountFiles(t, f.folderDir(p)); n != 1 {
			t.Errorf("expected exactly 1 file and no partial download, got %d", n)
		}

		// The failed video is picked up by the next update.
		delete(f.platform.DownloadErr, "b")
		update, err := f.engine.Update(context.Background(), p.ID, nil)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if len(update.Added) != 2 {
			t.Errorf("expected 2 songs added by update, got %d", len(update.Added))
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))

		progress := make(chan ProgressUpdate, 16)
		if _, err := f.engine.Create(context.Background(), playlistURL, progress); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) == 0 || phases[0] != ResolvePlaylist || phases[len(phases)-1] != Complete {
			t.Errorf("unexpected phases %v", phases)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := f.engine.Create(ctx, playlistURL, nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if all, _ := f.playlists.List(); len(all) != 0 {
			t.Errorf("expected no playlists, got %d", len(all))
		}
	})
}

func TestEngineUpdate(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		f := newFixture(t)
		a, b, c := tu.FakeVideo("a", "First Song"), tu.FakeVideo("b", "Second Song"), tu.FakeVideo("c", "Third Song")
		f.platform.SetPlaylist(playlistURL, "Road Trip", a, b, c)

		created, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		p := created.Playlist
		removed := created.Added[1]

		d := tu.FakeVideo("d", "Fourth Song")
		f.platform.SetPlaylist(playlistURL, "Road Trip", a, c, d)

		result, err := f.engine.Update(context.Background(), p.ID, nil)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if len(result.Added) != 1 || len(result.Removed) != 1 {
			t.Fatalf("expected 1 added and 1 removed, got %d and %d", len(result.Added), len(result.Removed))
		}

		songs := f.mustSongs(t, p.ID)
		if len(songs) != 3 {
			t.Fatalf("expected 3 song rows, got %d", len(songs))
		}
		for _, s := range songs {
			if s.ID == removed.ID {
				t.Errorf("removed song %d still stored", s.ID)
			}
		}
		tu.AssertNoFile(t, filepath.Join(f.folderDir(p), removed.Filename))
		tu.AssertFileExists(t, filepath.Join(f.folderDir(p), result.Added[0].Filename))
		if n := tu.CountFiles(t, f.folderDir(p)); n != 3 {
			t.Errorf("expected 3 files on disk, got %d", n)
		}

		lookups := f.platform.VideoLookups
		if len(lookups) != 1 || lookups[0] != "https://youtube.com/watch?v=d" {
			t.Errorf("expected a metadata lookup for the new video only, got %v", lookups)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"), tu.FakeVideo("b", "Second Song"))

		created, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("b", "Second Song"), tu.FakeVideo("c", "Third Song"))

		if _, err := f.engine.Update(context.Background(), created.Playlist.ID, nil); err != nil {
			t.Fatalf("first update failed: %v", err)
		}
		second, err := f.engine.Update(context.Background(), created.Playlist.ID, nil)
		if err != nil {
			t.Fatalf("second update failed: %v", err)
		}
		if len(second.Added) != 0 || len(second.Removed) != 0 {
			t.Errorf("expected no changes on second update, got %d added and %d removed", len(second.Added), len(second.Removed))
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.engine.Update(context.Background(), 404, nil); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("busy while creating", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip")
		created, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		f.engine.mu.Lock()
		f.engine.creating[created.Playlist.ID] = true
		f.engine.mu.Unlock()

		if _, err := f.engine.Update(context.Background(), created.Playlist.ID, nil); !errors.Is(err, shared.ErrPlaylistBusy) {
			t.Errorf("expected ErrPlaylistBusy from update, got %v", err)
		}
		if err := f.engine.Delete(context.Background(), created.Playlist.ID); !errors.Is(err, shared.ErrPlaylistBusy) {
			t.Errorf("expected ErrPlaylistBusy from delete, got %v", err)
		}
	})

	t.Run("metadata failure aborts before delete", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))
		created, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("z", "New Song"))
		f.platform.VideoErr["z"] = errors.New("video unavailable")

		if _, err := f.engine.Update(context.Background(), created.Playlist.ID, nil); !errors.Is(err, shared.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
		if songs := f.mustSongs(t, created.Playlist.ID); len(songs) != 1 {
			t.Errorf("expected the existing song to survive a failed add, got %d rows", len(songs))
		}
	})
}

type failingSongs struct {
	*repositories.SongRepository
}

func (failingSongs) Create(*models.Song) error { return errors.New("disk I/O error") }

func TestEngineInsertFailureRemovesFile(t *testing.T) {
	f := newFixture(t)
	f.engine.songs = failingSongs{f.songs}
	f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))

	result, err := f.engine.Create(context.Background(), playlistURL, nil)
	if err == nil {
		t.Fatal("expected error when the song row can't be written")
	}
	if n := tu.CountFiles(t, f.folderDir(result.Playlist)); n != 0 {
		t.Errorf("expected no orphaned files, got %d", n)
	}
}

func TestEngineDelete(t *testing.T) {
	t.Run("removes rows and files", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"), tu.FakeVideo("b", "Second Song"))
		created, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		dir := f.folderDir(created.Playlist)
		tu.AssertDirExists(t, dir)

		if err := f.engine.Delete(context.Background(), created.Playlist.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if all, _ := f.playlists.List(); len(all) != 0 {
			t.Errorf("expected no playlists, got %d", len(all))
		}
		if songs := f.mustSongs(t, created.Playlist.ID); len(songs) != 0 {
			t.Errorf("expected no songs, got %d", len(songs))
		}
		tu.AssertNoFile(t, dir)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		f := newFixture(t)
		if err := f.engine.Delete(context.Background(), 12345); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("title can be reused", func(t *testing.T) {
		f := newFixture(t)
		f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))
		created, _ := f.engine.Create(context.Background(), playlistURL, nil)
		if err := f.engine.Delete(context.Background(), created.Playlist.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		again, err := f.engine.Create(context.Background(), playlistURL, nil)
		if err != nil {
			t.Fatalf("recreate failed: %v", err)
		}
		if again.Playlist.Folder != "Road_Trip" {
			t.Errorf("expected freed folder to be reused, got %s", again.Playlist.Folder)
		}
	})
}

func TestEngineQueries(t *testing.T) {
	f := newFixture(t)
	f.platform.SetPlaylist(playlistURL, "Road Trip", tu.FakeVideo("a", "First Song"))
	created, err := f.engine.Create(context.Background(), playlistURL, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	playlists, err := f.engine.Playlists(context.Background())
	if err != nil || len(playlists) != 1 {
		t.Fatalf("expected 1 playlist, got %v, %v", playlists, err)
	}

	p, err := f.engine.Playlist(context.Background(), created.Playlist.ID)
	if err != nil || p.Title != "Road Trip" {
		t.Errorf("unexpected playlist %+v, %v", p, err)
	}

	songs, err := f.engine.Songs(context.Background(), created.Playlist.ID)
	if err != nil || len(songs) != 1 {
		t.Errorf("expected 1 song, got %v, %v", songs, err)
	}

	none, err := f.engine.Songs(context.Background(), 999)
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty list for unknown playlist, got %v, %v", none, err)
	}
}
