package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvPort, EnvLogLevel, EnvDataDir, EnvFPS, EnvMaxUploadMB, EnvCache, EnvConfigFile} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.FPS() != 24 {
		t.Errorf("FPS = %d, want 24", cfg.FPS())
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should default to enabled")
	}
	if cfg.MaxUploadBytes() != DefaultMaxUploadMB<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}
	if cfg.WatchInterval() != DefaultWatchInterval {
		t.Errorf("WatchInterval = %v", cfg.WatchInterval())
	}
	if filepath.Base(cfg.DBPath()) != DBFilename {
		t.Errorf("DBPath = %s", cfg.DBPath())
	}
	if cfg.File() != "" {
		t.Errorf("File = %q, want empty", cfg.File())
	}
}

func TestNew_FromEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvFPS, "25")
	t.Setenv(EnvMaxUploadMB, "10")
	t.Setenv(EnvCache, "false")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 || cfg.LogLevel() != "debug" || cfg.DataDir() != dir {
		t.Errorf("env overrides not applied: port=%d level=%s dir=%s", cfg.Port(), cfg.LogLevel(), cfg.DataDir())
	}
	if cfg.FPS() != 25 {
		t.Errorf("FPS = %d, want 25", cfg.FPS())
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}
	if cfg.CacheEnabled() {
		t.Error("cache should be disabled")
	}
}

func TestNew_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvPort, "abc"},
		{EnvPort, "70000"},
		{EnvFPS, "0"},
		{EnvFPS, "x"},
		{EnvMaxUploadMB, "-1"},
		{EnvCache, "maybe"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := New(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
port: 9100
log_level: warn
fps: 30
cache: false
watch:
  interval_seconds: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port() != 9100 || cfg.LogLevel() != "warn" || cfg.FPS() != 30 {
		t.Errorf("yaml values not applied: port=%d level=%s fps=%d", cfg.Port(), cfg.LogLevel(), cfg.FPS())
	}
	if cfg.CacheEnabled() {
		t.Error("cache should be disabled by file")
	}
	if cfg.WatchInterval() != 2*time.Second {
		t.Errorf("WatchInterval = %v, want 2s", cfg.WatchInterval())
	}
	if cfg.File() != path {
		t.Errorf("File = %q, want %q", cfg.File(), path)
	}
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
port = 9200
fps = 60
max_upload_mb = 32

[watch]
interval_seconds = 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port() != 9200 || cfg.FPS() != 60 || cfg.MaxUploadBytes() != 32<<20 {
		t.Errorf("toml values not applied: port=%d fps=%d max=%d", cfg.Port(), cfg.FPS(), cfg.MaxUploadBytes())
	}
	if cfg.WatchInterval() != 10*time.Second {
		t.Errorf("WatchInterval = %v", cfg.WatchInterval())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yml", "port: 9100\nfps: 30\n")
	t.Setenv(EnvFPS, "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port = %d, want file value 9100", cfg.Port())
	}
	if cfg.FPS() != 25 {
		t.Errorf("FPS = %d, want env value 25", cfg.FPS())
	}
}

func TestNew_ReadsConfigFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "port: 9300\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != 9300 {
		t.Errorf("Port = %d, want 9300", cfg.Port())
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "config.json", "{}")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Load(writeFile(t, "config.yaml", "port: [1, 2")); err == nil {
		t.Error("expected error for invalid yaml")
	}
	if _, err := Load(writeFile(t, "config.toml", "fps = 5000\n")); err == nil {
		t.Error("expected error for out-of-range fps")
	}
}
