package shared

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL strips a leading "www." from the host of raw and lowercases the host.
//
// Playlist listings and single video lookups disagree on the host they report, so two video
// URLs name the same video iff their canonical forms are equal.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	u.Host = canonicalHost(u.Host)
	return u.String(), nil
}

func canonicalHost(host string) string {
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}

// HostAllowed reports whether raw's host, after canonicalization, is one of hosts.
func HostAllowed(raw string, hosts []string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := canonicalHost(u.Hostname())
	for _, h := range hosts {
		if canonicalHost(h) == host {
			return true
		}
	}
	return false
}

// ValidatePlaylistURL checks that raw is an absolute http(s) URL on one of hosts.
func ValidatePlaylistURL(raw string, hosts []string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: no url provided", ErrMissingArgument)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: unsupported url scheme %q", ErrInvalidInput, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidInput)
	}

	if !HostAllowed(raw, hosts) {
		return fmt.Errorf("%w: %s", ErrInvalidHost, u.Hostname())
	}
	return nil
}
