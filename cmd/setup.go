package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/musicplayer/internal/library"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a config file, initialize the database and create the upload directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file with the defaults",
			},
		},
		Action: r.Setup,
	}
}

// Setup writes the config file if needed, then creates the database and upload directory it names.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	_, statErr := os.Stat(configPath)
	switch {
	case statErr == nil && cmd.Bool("force"):
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to replace config file: %w", err)
		}
		fallthrough
	case errors.Is(statErr, os.ErrNotExist):
		r.logger.Info("creating config file from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
	case statErr != nil:
		return fmt.Errorf("failed to stat config: %w", statErr)
	default:
		r.logger.Info("using existing config file", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)
	if err := os.MkdirAll(filepath.Dir(config.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := library.NewStore(config.Library.UploadDir)
	if err := store.Init(); err != nil {
		return err
	}

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s (%d migrations applied)\n", config.Database.Path, applied)
	r.writePlain("✓ Uploads: %s\n", store.Root())
	return nil
}
