package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/project"
)

func TestSequencesJSON(t *testing.T) {
	setupCLITestEnv(t)
	path := writeTestProject(t, t.TempDir(), "edit.prproj")

	out, _, err := runCLI(t, "sequences", path, "--json")
	if err != nil {
		t.Fatalf("sequences: %v", err)
	}
	var seqs []project.SequenceInfo
	if err := json.Unmarshal([]byte(out), &seqs); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(seqs) != 2 {
		t.Fatalf("expected 2 sequences, got %d", len(seqs))
	}
	if !seqs[0].Master || seqs[0].Name != "Main" || seqs[0].NestedRefs != 1 {
		t.Errorf("master summary = %+v", seqs[0])
	}
	if seqs[1].Master {
		t.Errorf("nested sequence marked master: %+v", seqs[1])
	}
}

func TestSequencesTable(t *testing.T) {
	setupCLITestEnv(t)
	path := writeTestProject(t, t.TempDir(), "edit.prproj")

	out, _, err := runCLI(t, "sequences", path)
	if err != nil {
		t.Fatalf("sequences: %v", err)
	}
	requireContains(t, out, "Main")
	requireContains(t, out, "Inner")
	requireContains(t, out, "Duration")
}

func TestHistoryLifecycle(t *testing.T) {
	setupCLITestEnv(t)
	path := writeTestProject(t, t.TempDir(), "edit.prproj")

	if _, _, err := runCLI(t, "convert", path); err != nil {
		t.Fatalf("convert: %v", err)
	}

	out, _, err := runCLI(t, "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var list []catalog.Conversion
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 conversion, got %d", len(list))
	}
	c := list[0]
	if c.Status != catalog.StatusCompleted || c.Filename != "edit.prproj" || c.RowCount != 3 {
		t.Fatalf("conversion = %+v", c)
	}

	out, _, err = runCLI(t, "history")
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, c.ID[:8])
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, "history", "show", c.ID)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.HasPrefix(out, "Type,Track,Name") {
		t.Errorf("show output = %q", out)
	}
	requireContains(t, out, "Intro.mov")

	out, _, err = runCLI(t, "history", "delete", c.ID)
	if err != nil {
		t.Fatalf("history delete: %v", err)
	}
	requireContains(t, out, "Deleted")

	if _, _, err := runCLI(t, "history", "delete", c.ID); err == nil {
		t.Fatal("expected error deleting twice")
	}
	out, _, err = runCLI(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No conversions")
}

func TestConvertReusesCachedConversion(t *testing.T) {
	setupCLITestEnv(t)
	path := writeTestProject(t, t.TempDir(), "edit.prproj")

	first, _, err := runCLI(t, "convert", path)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	second, _, err := runCLI(t, "convert", path)
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}
	if first != second {
		t.Errorf("cached output differs:\n%s\n---\n%s", first, second)
	}

	out, _, err := runCLI(t, "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var list []catalog.Conversion
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("cache hit recorded a new conversion: %d entries", len(list))
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	t.Setenv("PRPROJ_PORT", "not-a-port")

	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "prproj-export ")
}

func TestRenderRowsExtended(t *testing.T) {
	out := renderRows(nil, true)
	requireContains(t, out, "StockID")
	requireContains(t, out, "Title")
}
