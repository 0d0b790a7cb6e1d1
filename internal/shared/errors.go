package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	ErrTimeout = fmt.Errorf("operation timed out")

	// Platform and download errors
	ErrPlatform         = fmt.Errorf("video platform request failed")
	ErrNoAudioStream    = fmt.Errorf("no audio stream available")
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrPlaylistBusy     = fmt.Errorf("playlist is being synced")
	ErrNotFound         = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrMissingArgument    = fmt.Errorf("missing required argument")
	ErrInvalidArgument    = fmt.Errorf("invalid argument")
	ErrInvalidHost        = fmt.Errorf("url is not a supported video platform")
	ErrDuplicatePlaylist  = fmt.Errorf("playlist already exists")
	ErrInvalidPathSegment = fmt.Errorf("invalid path segment")
)
