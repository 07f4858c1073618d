package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return lines
}

func TestExport(t *testing.T) {
	st := setupStore(t)
	seed(t, st,
		snippet.Snippet{Content: "print(1)", Timestamp: 100, Language: stringPtr("python"), Summary: stringPtr("prints #python")},
		snippet.Snippet{Content: "<b>&</b>", Timestamp: 200, Tags: stringPtr("html")},
	)
	dir := t.TempDir()
	cfg := config.DefaultConfig()

	out, err := Export(context.Background(), st, cfg, dir, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
	if filepath.Dir(out.Path) != dir || !strings.HasPrefix(filepath.Base(out.Path), "intelliclip-") {
		t.Errorf("Path = %q", out.Path)
	}

	lines := readLines(t, out.Path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var header ExportHeader
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	if !header.IntelliclipExport || header.SchemaVersion != ExportSchemaVersion || header.Count != 2 {
		t.Errorf("header = %+v", header)
	}

	// Oldest first.
	var first, second ExportRecord
	json.Unmarshal([]byte(lines[1]), &first)
	json.Unmarshal([]byte(lines[2]), &second)
	if first.Content != "print(1)" || second.Content != "<b>&</b>" {
		t.Errorf("records out of order: %q, %q", first.Content, second.Content)
	}
	if !strings.Contains(lines[2], "<b>&</b>") {
		t.Errorf("HTML escaped in export: %s", lines[2])
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestExport_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.jsonl")

	out, err := Export(context.Background(), setupStore(t), config.DefaultConfig(), dir, ExportInput{Path: path})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 0 || len(readLines(t, path)) != 1 {
		t.Errorf("out = %+v", out)
	}
}

func TestExport_RejectsPaths(t *testing.T) {
	st := setupStore(t)
	dir := t.TempDir()
	cfg := config.DefaultConfig()

	for _, path := range []string{
		filepath.Join(dir, "out.json"),
		filepath.Join(dir, "..", "out.jsonl"),
		filepath.Join(t.TempDir(), "elsewhere.jsonl"),
	} {
		if _, err := Export(context.Background(), st, cfg, dir, ExportInput{Path: path}); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("Export(%q) = %v, want INVALID_REQUEST", path, err)
		}
	}
}

func TestExport_UnsafePathsAllowed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")

	if _, err := Export(context.Background(), setupStore(t), cfg, t.TempDir(), ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export not written: %v", err)
	}
}
