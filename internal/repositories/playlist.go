package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
)

// PlaylistRepository persists [models.Playlist] rows.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a playlist and sets its ID from the assigned row id.
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.Exec(
		"INSERT INTO playlists (title, folder, url) VALUES (?, ?, ?)",
		playlist.Title, playlist.Folder, playlist.URL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get playlist id: %w", err)
	}
	playlist.ID = id
	return nil
}

// Get retrieves a playlist by ID.
//
// Returns an error wrapping [shared.ErrPlaylistNotFound] when no row matches.
func (r *PlaylistRepository) Get(id int64) (*models.Playlist, error) {
	row := r.db.QueryRow("SELECT id, title, folder, url FROM playlists WHERE id = ?", id)
	p, err := r.scanOne(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrPlaylistNotFound, id)
	}
	return p, err
}

// ExistsByTitle reports whether a playlist with exactly this title is stored.
func (r *PlaylistRepository) ExistsByTitle(title string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM playlists WHERE title = ?)", title).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check playlist title: %w", err)
	}
	return exists, nil
}

// ExistsByFolder reports whether any playlist already owns folder.
func (r *PlaylistRepository) ExistsByFolder(folder string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM playlists WHERE folder = ?)", folder).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check playlist folder: %w", err)
	}
	return exists, nil
}

// List retrieves all playlists ordered by id.
func (r *PlaylistRepository) List() ([]models.Playlist, error) {
	rows, err := r.db.Query("SELECT id, title, folder, url FROM playlists ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Title, &p.Folder, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// Delete removes a playlist and every song it owns in one transaction.
//
// Deleting an id that does not exist is a no-op.
func (r *PlaylistRepository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM songs WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist songs: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist delete: %w", err)
	}
	return nil
}

// scanOne scans a single row into a [models.Playlist], passing [sql.ErrNoRows] through.
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.Title, &p.Folder, &p.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return &p, nil
}
