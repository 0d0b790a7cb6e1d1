package tasks

import (
	"fmt"

	"github.com/desertthunder/musicplayer/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolvePlaylist Phase = iota
	ReconcileSongs
	DownloadSongs
	RemoveSongs
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolvePlaylist:
		return "resolve_playlist"
	case ReconcileSongs:
		return "reconcile"
	case DownloadSongs:
		return "download_songs"
	case RemoveSongs:
		return "remove_songs"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolveUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving playlist %s...", url),
	}
}

func reconcileUpdate(diff Diff) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReconcileSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d to add, %d to remove", len(diff.ToAdd), len(diff.ToDelete)),
		Data:    diff,
	}
}

func downloadUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading %s...", step, total, title),
	}
}

func downloadedUpdate(step, total int, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, song.Filename),
		Data:    song,
	}
}

func removeUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveSongs,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Removed %d songs", total),
	}
}

func completeUpdate(p *models.Playlist, added, removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s: %d added, %d removed", p.Title, added, removed),
		Data:    p,
	}
}
