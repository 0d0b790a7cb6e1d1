package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
)

// SongRepository persists [models.Song] rows.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a song and sets its ID. Each call commits on its own.
func (r *SongRepository) Create(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.db.Exec(
		"INSERT INTO songs (playlist_id, title, filename, url) VALUES (?, ?, ?, ?)",
		song.PlaylistID, song.Title, song.Filename, song.URL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get song id: %w", err)
	}
	song.ID = id
	return nil
}

// ListByPlaylist retrieves the songs of a playlist in insertion order.
func (r *SongRepository) ListByPlaylist(playlistID int64) ([]models.Song, error) {
	rows, err := r.db.Query(
		"SELECT id, playlist_id, title, filename, url FROM songs WHERE playlist_id = ? ORDER BY id ASC",
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// CountByPlaylist returns how many songs a playlist owns.
func (r *SongRepository) CountByPlaylist(playlistID int64) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM songs WHERE playlist_id = ?", playlistID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

// DeleteMany removes the songs with the given ids in one transaction and returns how many rows went away.
//
// Unknown ids are ignored.
func (r *SongRepository) DeleteMany(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := deleteSongsByIDs(tx, ids)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit song delete: %w", err)
	}
	return n, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Song]
func (r *SongRepository) scanRow(rows *sql.Rows) (*models.Song, error) {
	var s models.Song
	if err := rows.Scan(&s.ID, &s.PlaylistID, &s.Title, &s.Filename, &s.URL); err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return &s, nil
}
