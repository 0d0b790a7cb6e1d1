package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./musicplayer.db" {
			t.Errorf("expected database path ./musicplayer.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Library.UploadDir != "./uploads" {
			t.Errorf("expected upload dir ./uploads, got %s", config.Library.UploadDir)
		}

		if len(config.Platform.Hosts) == 0 {
			t.Error("expected default platform hosts")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
sync_timeout = "5m"

[platform]
hosts = ["example.com"]
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Server.SyncTimeoutDuration() != 5*time.Minute {
			t.Errorf("expected sync timeout 5m, got %s", config.Server.SyncTimeoutDuration())
		}

		if len(config.Platform.Hosts) != 1 || config.Platform.Hosts[0] != "example.com" {
			t.Errorf("expected hosts [example.com], got %v", config.Platform.Hosts)
		}

		if config.Library.UploadDir != "./uploads" {
			t.Errorf("missing keys should keep defaults, got upload dir %q", config.Library.UploadDir)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[library]\nupload_dir = \"\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Durations", func(t *testing.T) {
		p := PlatformConfig{HTTPTimeout: "nonsense", VideoTimeout: "-1s"}
		if p.HTTPTimeoutDuration() != 30*time.Second {
			t.Errorf("expected fallback for unparsable duration, got %s", p.HTTPTimeoutDuration())
		}
		if p.VideoTimeoutDuration() != 10*time.Minute {
			t.Errorf("expected fallback for negative duration, got %s", p.VideoTimeoutDuration())
		}
	})
}
