package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Report   ReportConfig   `toml:"report"`
	Update   UpdateConfig   `toml:"update"`
	Sources  []SourceConfig `toml:"sources"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ReportConfig controls the exported error report.
type ReportConfig struct {
	HelpTemplate string `toml:"help_template"`
	HelpURL      string `toml:"help_url"`
	FileName     string `toml:"file_name"`
	Dir          string `toml:"dir"`
}

// UpdateConfig contains library update job settings.
type UpdateConfig struct {
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	UserAgent      string  `toml:"user_agent"`
}

// SourceConfig registers a source display name for a numeric source ID.
type SourceConfig struct {
	ID   int64  `toml:"id"`
	Name string `toml:"name"`
	Lang string `toml:"lang"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
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
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects duplicate source IDs and negative update settings.
func (c *Config) Validate() error {
	seen := make(map[int64]bool, len(c.Sources))
	for _, s := range c.Sources {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate source id %d", ErrInvalidConfig, s.ID)
		}
		seen[s.ID] = true
	}

	if c.Update.RateLimit < 0 {
		return fmt.Errorf("%w: update.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.Update.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: update.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ReportPath returns the destination of the exported error report.
//
// Falls back to the user cache directory (or the system temp directory) when report.dir is empty.
func (c *Config) ReportPath() string {
	name := c.Report.FileName
	if name == "" {
		name = "updatelog_update_errors.txt"
	}

	dir := c.Report.Dir
	if dir == "" {
		if cache, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(cache, "updatelog")
		} else {
			dir = filepath.Join(os.TempDir(), "updatelog")
		}
	}
	return filepath.Join(dir, name)
}

// UpdateTimeout returns the per-item check timeout.
func (c *Config) UpdateTimeout() time.Duration {
	if c.Update.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Update.TimeoutSeconds) * time.Second
}
