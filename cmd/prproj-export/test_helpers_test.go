package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/prproj-export/internal/config"
	"github.com/heimdex/prproj-export/internal/project/prtest"
)

func setupCLITestEnv(t *testing.T) string {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv(config.EnvDataDir, dataDir)
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(config.EnvCache, "")
	t.Setenv(config.EnvFPS, "")
	return dataDir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestProject writes a gzip project with a nested sequence under dir.
func writeTestProject(t *testing.T, dir, name string) string {
	t.Helper()
	b := prtest.NewBuilder()
	master := b.Sequence("seq-main", "Main")
	inner := b.Sequence("seq-inner", "Inner")

	inner.VideoTrack().Media("Broll_1234567", "/media/broll.mov", 0, 240)

	master.VideoTrack().
		Media("Intro.mov", "/media/intro.mov", 0, 577).
		Nested("seq-inner", 600, 840, 0)
	master.AudioTrack().Media("Score.wav", "/media/score.wav", 0, 840)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Gzip(), 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
