// Package services defines the [VideoPlatform] interface for the remote video platform and implements it
// for YouTube.
//
// # Platform Interface
//
// The sync engine only sees [VideoPlatform]: resolve a playlist into its videos, fetch metadata for one
// video, and stream a video's audio track into a writer. Tests substitute an in-memory fake.
//
// # YouTube Implementation
//
// [YouTubeService] wraps github.com/kkdai/youtube/v2. Requests share a token bucket limiter
// (golang.org/x/time/rate) and each call runs under its own deadline. The audio stream with the highest
// bitrate is chosen and its container decides the returned file extension.
//
// # Error Handling
//
// Failures are wrapped with typed errors from the shared package:
//   - [shared.ErrPlatform] : the platform rejected or failed a lookup
//   - [shared.ErrNoAudioStream] : the video has no audio-only format
//   - [shared.ErrDownloadFailed] : the stream broke off or could not be written
//   - [shared.ErrTimeout] : a per-call deadline expired
package services
