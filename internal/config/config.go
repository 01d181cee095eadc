// Package config provides configuration management for prproj-export.
// Values come from an optional YAML or TOML file, then environment variables,
// on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/heimdex/prproj-export/internal/timecode"
)

const (
	// Default values
	DefaultPort          = 8788
	DefaultLogLevel      = "info"
	DefaultDataDir       = ".prproj-export"
	DefaultMaxUploadMB   = 256
	DefaultWatchInterval = 5 * time.Second

	// Environment variable names
	EnvPort        = "PRPROJ_PORT"
	EnvLogLevel    = "PRPROJ_LOG_LEVEL"
	EnvDataDir     = "PRPROJ_DATA_DIR"
	EnvFPS         = "PRPROJ_FPS"
	EnvMaxUploadMB = "PRPROJ_MAX_UPLOAD_MB"
	EnvCache       = "PRPROJ_CACHE"
	EnvConfigFile  = "PRPROJ_CONFIG"

	// Database filename
	DBFilename = "prproj-export.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	FPS() int
	MaxUploadBytes() int64
	CacheEnabled() bool
	WatchInterval() time.Duration
	File() string
}

// FileConfig is the on-disk configuration. Zero values leave defaults alone.
type FileConfig struct {
	Port        int    `yaml:"port" toml:"port"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`
	DataDir     string `yaml:"data_dir" toml:"data_dir"`
	FPS         int    `yaml:"fps" toml:"fps"`
	MaxUploadMB int    `yaml:"max_upload_mb" toml:"max_upload_mb"`
	Cache       *bool  `yaml:"cache" toml:"cache"`

	Watch struct {
		IntervalSeconds int `yaml:"interval_seconds" toml:"interval_seconds"`
	} `yaml:"watch" toml:"watch"`
}

// EnvConfig holds the resolved configuration
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	fps           int
	maxUploadMB   int
	cache         bool
	watchInterval time.Duration
	file          string
}

// New resolves configuration from the file named by PRPROJ_CONFIG (if any)
// and the environment.
func New() (*EnvConfig, error) {
	return Load(os.Getenv(EnvConfigFile))
}

// Load resolves configuration from path (may be empty) and the environment.
// Environment variables override file values.
func Load(path string) (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:          DefaultPort,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
		fps:           timecode.DefaultFPS,
		maxUploadMB:   DefaultMaxUploadMB,
		cache:         true,
		watchInterval: DefaultWatchInterval,
	}

	if path != "" {
		fc, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg.apply(fc)
		cfg.file = path
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile decodes a .yaml, .yml or .toml configuration file.
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

func (c *EnvConfig) apply(fc *FileConfig) {
	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.FPS != 0 {
		c.fps = fc.FPS
	}
	if fc.MaxUploadMB != 0 {
		c.maxUploadMB = fc.MaxUploadMB
	}
	if fc.Cache != nil {
		c.cache = *fc.Cache
	}
	if fc.Watch.IntervalSeconds > 0 {
		c.watchInterval = time.Duration(fc.Watch.IntervalSeconds) * time.Second
	}
}

func (c *EnvConfig) applyEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		c.dataDir = dd
	}

	if f := os.Getenv(EnvFPS); f != "" {
		fps, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFPS, err)
		}
		c.fps = fps
	}

	if m := os.Getenv(EnvMaxUploadMB); m != "" {
		mb, err := strconv.Atoi(m)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxUploadMB, err)
		}
		c.maxUploadMB = mb
	}

	if v := os.Getenv(EnvCache); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCache, err)
		}
		c.cache = on
	}
	return nil
}

func (c *EnvConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.port)
	}
	if err := timecode.ValidateFPS(c.fps); err != nil {
		return fmt.Errorf("invalid fps: %w", err)
	}
	if c.maxUploadMB < 1 {
		return fmt.Errorf("invalid max upload size %d MB", c.maxUploadMB)
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// FPS returns the reference frame rate
func (c *EnvConfig) FPS() int {
	return c.fps
}

func (c *EnvConfig) MaxUploadBytes() int64 {
	return int64(c.maxUploadMB) << 20
}

func (c *EnvConfig) CacheEnabled() bool {
	return c.cache
}

func (c *EnvConfig) WatchInterval() time.Duration {
	return c.watchInterval
}

// File returns the configuration file that was loaded, if any
func (c *EnvConfig) File() string {
	return c.file
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
