package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/prproj-export/internal/export"
)

func TestConvertWritesCSVToStdout(t *testing.T) {
	setupCLITestEnv(t)
	path := writeTestProject(t, t.TempDir(), "edit.prproj")

	out, _, err := runCLI(t, "convert", path)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "Type,Track,Name,ClipType,Source,StartTC,EndTC" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), out)
	}
	requireContains(t, lines[1], "Intro.mov")
	requireContains(t, lines[1], "00:00:24:01")
	requireContains(t, lines[2], "Broll_1234567")
	requireContains(t, lines[3], "Audio")
}

func TestConvertJSONToFile(t *testing.T) {
	setupCLITestEnv(t)
	dir := t.TempDir()
	path := writeTestProject(t, dir, "edit.prproj")
	target := filepath.Join(dir, "rows.json")

	_, stderr, err := runCLI(t, "convert", path, "--format", "json", "-o", target, "--expand-nested=false")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, stderr, "wrote 3 rows")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Sequence != "Main" || doc.FPS != 24 || doc.RowCount != 3 {
		t.Fatalf("document = %+v", doc)
	}
	if doc.Rows[1].ClipType != "Nested Sequence" {
		t.Errorf("unexpanded nest row = %+v", doc.Rows[1])
	}
}

func TestConvertManyToOutputDir(t *testing.T) {
	setupCLITestEnv(t)
	in, out := t.TempDir(), t.TempDir()
	a := writeTestProject(t, in, "a.prproj")
	b := writeTestProject(t, in, "b.prproj")

	_, stderr, err := runCLI(t, "convert", a, b, "--output-dir", out, "-j", "2", "--format", "edl")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, stderr, "converted 2 projects")

	for _, name := range []string{"a.edl", "b.edl"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		requireContains(t, string(data), "TITLE: Main")
	}
}

func TestConvertManyNeedsOutputDir(t *testing.T) {
	setupCLITestEnv(t)
	in := t.TempDir()
	a := writeTestProject(t, in, "a.prproj")
	b := writeTestProject(t, in, "b.prproj")

	_, _, err := runCLI(t, "convert", a, b)
	if err == nil {
		t.Fatal("expected error without --output-dir")
	}
	requireContains(t, err.Error(), "--output-dir")
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	setupCLITestEnv(t)
	path := writeTestProject(t, t.TempDir(), "edit.prproj")

	if _, _, err := runCLI(t, "convert", path, "--format", "xlsx"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConvertReportsMalformedProject(t *testing.T) {
	setupCLITestEnv(t)
	path := filepath.Join(t.TempDir(), "broken.prproj")
	if err := os.WriteFile(path, []byte("<nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, "convert", path)
	if err == nil {
		t.Fatal("expected error for malformed project")
	}
	requireContains(t, err.Error(), "broken.prproj")
}

func TestConvertManyRejectsMissingOutputDir(t *testing.T) {
	setupCLITestEnv(t)
	in := t.TempDir()
	a := writeTestProject(t, in, "a.prproj")
	b := writeTestProject(t, in, "b.prproj")
	missing := filepath.Join(in, "exports")

	_, _, err := runCLI(t, "convert", a, b, "--output-dir", missing)
	if err == nil {
		t.Fatal("expected error for missing output directory")
	}
	requireContains(t, err.Error(), "output directory "+missing+" does not exist")
}
