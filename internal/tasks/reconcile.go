package tasks

import (
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/shared"
)

// Diff is the work needed to bring stored songs in line with a remote playlist.
type Diff struct {
	ToAdd    []string      // canonical URLs of remote videos not stored yet, in remote order
	ToDelete []models.Song // stored songs whose URL is gone from the remote playlist
}

// Empty reports whether the diff has nothing to do.
func (d Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToDelete) == 0
}

// Reconcile compares stored songs S with remote video URLs R after host canonicalization:
// ToAdd = R − S and ToDelete = S − R. Duplicate remote URLs collapse to one entry.
func Reconcile(stored []models.Song, remote []string) Diff {
	storedKeys := make(map[string]bool, len(stored))
	for _, s := range stored {
		storedKeys[canonicalKey(s.URL)] = true
	}

	remoteKeys := make(map[string]bool, len(remote))
	var diff Diff
	for _, raw := range remote {
		key := canonicalKey(raw)
		if remoteKeys[key] {
			continue
		}
		remoteKeys[key] = true
		if !storedKeys[key] {
			diff.ToAdd = append(diff.ToAdd, key)
		}
	}

	for _, s := range stored {
		if !remoteKeys[canonicalKey(s.URL)] {
			diff.ToDelete = append(diff.ToDelete, s)
		}
	}
	return diff
}

// canonicalKey falls back to the raw string for URLs that don't parse.
func canonicalKey(raw string) string {
	key, err := shared.CanonicalURL(raw)
	if err != nil {
		return raw
	}
	return key
}
