package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.DefaultConfig()

	src := setupStore(t)
	seed(t, src,
		snippet.Snippet{Content: "SELECT 1;", Timestamp: 100, Language: stringPtr("sql"), Tags: stringPtr("db,query")},
		snippet.Snippet{Content: "plain", Timestamp: 200, Summary: stringPtr("a **note**")},
	)
	exp, err := Export(ctx, src, cfg, dir, ExportInput{Path: filepath.Join(dir, "all.jsonl")})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := setupStore(t)
	out, err := Import(ctx, dst, cfg, dir, ImportInput{Path: exp.Path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 || out.Skipped != 0 || len(out.Errors) != 0 {
		t.Fatalf("out = %+v", out)
	}

	want, _ := src.List(ctx)
	got, _ := dst.List(ctx)
	if len(got) != len(want) {
		t.Fatalf("got %d snippets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Content != want[i].Content ||
			got[i].Timestamp != want[i].Timestamp ||
			snippet.Deref(got[i].Language) != snippet.Deref(want[i].Language) ||
			snippet.Deref(got[i].Tags) != snippet.Deref(want[i].Tags) ||
			snippet.Deref(got[i].Summary) != snippet.Deref(want[i].Summary) {
			t.Errorf("snippet %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImport_Modes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "mixed.jsonl",
		`{"_intelliclip_export":true,"schema_version":"1.0","count":3}`,
		`{"content":"ok","timestamp":5,"tags":"b, a"}`,
		`{not json`,
		`{"content":"   ","timestamp":6}`,
		`{"content":"also ok","timestamp":7,"language":" Go "}`,
	)

	t.Run("error mode writes nothing", func(t *testing.T) {
		st := setupStore(t)
		out, err := Import(ctx, st, config.DefaultConfig(), dir, ImportInput{Path: path})
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if out.Imported != 0 || len(out.Errors) != 2 {
			t.Fatalf("out = %+v", out)
		}
		if out.Errors[0].Line != 3 || out.Errors[0].Code != "PARSE_ERROR" {
			t.Errorf("first error = %+v", out.Errors[0])
		}
		if out.Errors[1].Line != 4 || out.Errors[1].Code != "INVALID_RECORD" {
			t.Errorf("second error = %+v", out.Errors[1])
		}
		if n, _ := st.Count(ctx); n != 0 {
			t.Errorf("count = %d, want 0", n)
		}
	})

	t.Run("skip mode keeps valid lines", func(t *testing.T) {
		st := setupStore(t)
		out, err := Import(ctx, st, config.DefaultConfig(), dir, ImportInput{Path: path, Mode: ImportModeSkip})
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if out.Imported != 2 || out.Skipped != 2 || len(out.IDs) != 2 {
			t.Fatalf("out = %+v", out)
		}

		items, _ := st.List(ctx)
		if items[0].Content != "also ok" || snippet.Deref(items[0].Language) != "go" {
			t.Errorf("newest = %+v", items[0])
		}
		if snippet.Deref(items[1].Tags) != "a,b" {
			t.Errorf("tags = %v, want a,b", items[1].Tags)
		}
	})
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	st := setupStore(t)
	cfg := config.DefaultConfig()

	if _, err := Import(context.Background(), st, cfg, dir, ImportInput{Path: filepath.Join(dir, "missing.jsonl")}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing file: err = %v, want NOT_FOUND", err)
	}
	path := writeFile(t, dir, "x.jsonl", `{"content":"x"}`)
	if _, err := Import(context.Background(), st, cfg, dir, ImportInput{Path: path, Mode: "merge"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad mode: err = %v, want INVALID_REQUEST", err)
	}
}
