package shared

import (
	"errors"
	"testing"
)

var testHosts = []string{"youtube.com", "m.youtube.com", "music.youtube.com"}

func TestCanonicalURL(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "www stripped", in: "https://www.example.com/watch?v=X", want: "https://example.com/watch?v=X"},
		{name: "already canonical", in: "https://example.com/watch?v=X", want: "https://example.com/watch?v=X"},
		{name: "host case", in: "https://WWW.YouTube.com/watch?v=abc", want: "https://youtube.com/watch?v=abc"},
		{name: "inner www kept", in: "https://m.www.example.com/a", want: "https://m.www.example.com/a"},
		{name: "port kept", in: "http://www.example.com:8080/a", want: "http://example.com:8080/a"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("www and bare agree", func(t *testing.T) {
		a, _ := CanonicalURL("https://www.example.com/watch?v=X")
		b, _ := CanonicalURL("https://example.com/watch?v=X")
		if a != b {
			t.Errorf("expected equal keys, got %q and %q", a, b)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := CanonicalURL("http://[::1"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestValidatePlaylistURL(t *testing.T) {
	tc := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "valid", in: "https://www.youtube.com/playlist?list=PL123"},
		{name: "valid bare host", in: "https://youtube.com/playlist?list=PL123"},
		{name: "music host", in: "https://music.youtube.com/playlist?list=PL123"},
		{name: "empty", in: "   ", wantErr: ErrMissingArgument},
		{name: "no scheme", in: "youtube.com/playlist?list=PL123", wantErr: ErrInvalidInput},
		{name: "ftp", in: "ftp://youtube.com/playlist", wantErr: ErrInvalidInput},
		{name: "other host", in: "https://vimeo.com/showcase/1", wantErr: ErrInvalidHost},
		{name: "lookalike host", in: "https://youtube.com.evil.test/playlist", wantErr: ErrInvalidHost},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlaylistURL(tt.in, testHosts)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
