package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Service contains connection settings for the remote generation service.
// Timeouts are in seconds, one per call class.
type Service struct {
	BaseURL         string `toml:"base_url"`
	AssetBaseURL    string `toml:"asset_base_url"`
	UserAgent       string `toml:"user_agent"`
	HealthTimeout   int    `toml:"health_timeout"`
	CatalogTimeout  int    `toml:"catalog_timeout"`
	GenerateTimeout int    `toml:"generate_timeout"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Paths contains local directories.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// Catalog controls the per-family pattern catalog cache.
type Catalog struct {
	// CacheTTLSeconds of 0 reloads the catalog on every family entry.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// Generation holds the settings a fresh generator starts with.
type Generation struct {
	DefaultDuration     int  `toml:"default_duration"`
	DefaultSamplingRate int  `toml:"default_sampling_rate"`
	ClampOutOfRange     bool `toml:"clamp_out_of_range"`
}

// Session controls opt-in persistence of the workflow snapshot.
type Session struct {
	Persist    bool   `toml:"persist"`
	InstanceID string `toml:"instance_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for signalgen.
//
// Configuration sections by subsystem:
//   - Service: remote generation service URLs and per-call timeouts
//   - Paths: download, state and log directories
//   - Catalog: pattern catalog cache lifetime
//   - Generation: default duration and sampling rate
//   - Session: opt-in workflow snapshot persistence
//   - Logging: log format, level, and retention
type Config struct {
	Service    Service    `toml:"service"`
	Paths      Paths      `toml:"paths"`
	Catalog    Catalog    `toml:"catalog"`
	Generation Generation `toml:"generation"`
	Session    Session    `toml:"session"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is applied to the process environment first so its
// values take part in environment overrides. The returned config has all path
// fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := loadDotEnv(""); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the download and log directories, plus the state
// directory when session persistence is enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DownloadDir, c.Paths.LogDir}
	if c.Session.Persist {
		dirs = append(dirs, c.Paths.StateDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SessionDBPath is the SQLite file used for persisted workflow snapshots.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.Paths.StateDir, "sessions.db")
}

// CatalogTTL returns the catalog cache lifetime.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.Catalog.CacheTTLSeconds) * time.Second
}

// Timeouts returns the per-call-class service timeouts.
func (c *Config) Timeouts() (health, catalog, generate, download time.Duration) {
	return seconds(c.Service.HealthTimeout),
		seconds(c.Service.CatalogTimeout),
		seconds(c.Service.GenerateTimeout),
		seconds(c.Service.DownloadTimeout)
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
