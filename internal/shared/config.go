package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Library  LibraryConfig  `toml:"library"`
	Platform PlatformConfig `toml:"platform"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	SyncTimeout       string `toml:"sync_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
}

// LibraryConfig locates the on-disk audio library.
type LibraryConfig struct {
	UploadDir string `toml:"upload_dir"`
}

// PlatformConfig controls outbound calls to the video platform.
type PlatformConfig struct {
	Hosts             []string `toml:"hosts"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	HTTPTimeout       string   `toml:"http_timeout"`
	VideoTimeout      string   `toml:"video_timeout"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr joins host and port into a listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SyncTimeoutDuration parses sync_timeout, defaulting to 30 minutes.
func (s ServerConfig) SyncTimeoutDuration() time.Duration {
	return parseDuration(s.SyncTimeout, 30*time.Minute)
}

// ReadHeaderTimeoutDuration parses read_header_timeout, defaulting to 10 seconds.
func (s ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return parseDuration(s.ReadHeaderTimeout, 10*time.Second)
}

// HTTPTimeoutDuration parses http_timeout, defaulting to 30 seconds.
func (p PlatformConfig) HTTPTimeoutDuration() time.Duration {
	return parseDuration(p.HTTPTimeout, 30*time.Second)
}

// VideoTimeoutDuration parses video_timeout, defaulting to 10 minutes.
func (p PlatformConfig) VideoTimeoutDuration() time.Duration {
	return parseDuration(p.VideoTimeout, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks the settings the application can't run without.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	if c.Library.UploadDir == "" {
		return fmt.Errorf("%w: library.upload_dir is empty", ErrInvalidConfig)
	}
	if len(c.Platform.Hosts) == 0 {
		return fmt.Errorf("%w: platform.hosts is empty", ErrInvalidConfig)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
