package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicplayer/internal/library"
	"github.com/desertthunder/musicplayer/internal/metrics"
	"github.com/desertthunder/musicplayer/internal/repositories"
	"github.com/desertthunder/musicplayer/internal/services"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/desertthunder/musicplayer/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, file store and sync engine are opened lazily by [Runner.open] so commands like setup
// work before anything exists on disk.
type Runner struct {
	config     *shared.Config
	configPath string
	platform   services.VideoPlatform
	logger     *log.Logger
	output     io.Writer

	db        *sql.DB
	store     *library.Store
	playlists *repositories.PlaylistRepository
	songs     *repositories.SongRepository
	engine    *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Platform   services.VideoPlatform // defaults to the YouTube service built from Config
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		platform:   opts.Platform,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, playlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies the log level.
//
// A missing config file is not an error: the embedded defaults are used until setup writes one.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if !errors.Is(err, os.ErrNotExist) {
		return ctx, fmt.Errorf("failed to stat config: %w", err)
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("debug") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// SetLogger replaces the runner's logger. Must be called before [Runner.open].
func (r *Runner) SetLogger(logger *log.Logger) {
	logger.SetLevel(r.logger.GetLevel())
	r.logger = logger
}

// open connects to the library database, prepares the upload directory and builds the sync engine.
func (r *Runner) open() error {
	if r.engine != nil {
		return nil
	}

	metrics.Register()

	db, err := shared.OpenLibraryDatabase(r.config.Database)
	if err != nil {
		return err
	}

	store := library.NewStore(r.config.Library.UploadDir)
	if err := store.Init(); err != nil {
		db.Close()
		return err
	}

	if r.platform == nil {
		r.platform = services.NewYouTubeService(services.YouTubeOpts{
			HTTPTimeout:       r.config.Platform.HTTPTimeoutDuration(),
			VideoTimeout:      r.config.Platform.VideoTimeoutDuration(),
			RequestsPerSecond: r.config.Platform.RequestsPerSecond,
			Logger:            r.logger,
		})
	}

	r.db = db
	r.store = store
	r.playlists = repositories.NewPlaylistRepository(db)
	r.songs = repositories.NewSongRepository(db)
	r.engine = tasks.NewEngine(tasks.EngineOpts{
		Platform:  r.platform,
		Playlists: r.playlists,
		Songs:     r.songs,
		Store:     store,
		Hosts:     r.config.Platform.Hosts,
		Logger:    r.logger,
	})
	r.logger.Debug("library opened", "db", r.config.Database.Path, "uploads", store.Root())
	return nil
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.engine = nil
	return err
}

// printProgress writes progress updates to the output until the channel is closed.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	for update := range progress {
		r.writePlain("%s\n", update.Message)
	}
	close(done)
}

func parseID(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
