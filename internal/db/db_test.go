package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/intelliclip/internal/config"
)

func TestInit(t *testing.T) {
	// Use temp directory for test isolation
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	// Verify database file was created
	dbPath := filepath.Join(tmpDir, FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	// Verify exports directory was created
	exportsDir := filepath.Join(tmpDir, "exports")
	info, err := os.Stat(exportsDir)
	if os.IsNotExist(err) {
		t.Errorf("exports directory not created at %s", exportsDir)
	} else if !info.IsDir() {
		t.Errorf("exports path is not a directory")
	}

	// Verify WAL mode is active
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	cols, err := Columns(context.Background(), db, "snippets")
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	for _, want := range []string{"id", "content", "timestamp", "language", "tags", "summary"} {
		if !cols[want] {
			t.Errorf("column %q missing after Init", want)
		}
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir := filepath.Join(tmpDir, "nested", "path", ".intelliclip")

	db, err := Init(baseDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		t.Errorf("base directory not created at %s", baseDir)
	}
}

func TestUserVersion(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO snippets (content, timestamp, language, tags, summary) VALUES ('keep me', 1, 'go', 'a,b', 'sum')`); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	before, err := Columns(ctx, db, "snippets")
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}

	// Run twice more; each run must be a no-op
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+2, err)
		}
	}

	after, err := Columns(ctx, db, "snippets")
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("column count changed: before %d, after %d", len(before), len(after))
	}

	var content, language, tags, summary string
	err = db.QueryRow(`SELECT content, language, tags, summary FROM snippets`).Scan(&content, &language, &tags, &summary)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if content != "keep me" || language != "go" || tags != "a,b" || summary != "sum" {
		t.Errorf("row changed by migration: %q %q %q %q", content, language, tags, summary)
	}
}

func TestMigrate_AddsMissingColumnsToLegacyTable(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	// Build a legacy database that predates tags/language/summary
	dbPath := filepath.Join(tmpDir, FileName)
	legacy, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	_, err = legacy.Exec(`
		CREATE TABLE snippets (
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  content TEXT NOT NULL,
		  timestamp INTEGER NOT NULL
		);
		INSERT INTO snippets (content, timestamp) VALUES ('old one', 100), ('old two', 200);
	`)
	if err != nil {
		t.Fatalf("seed legacy db: %v", err)
	}
	legacy.Close()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() on legacy db error = %v", err)
	}
	defer db.Close()

	cols, err := Columns(ctx, db, "snippets")
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	for _, col := range optionalColumns {
		if !cols[col] {
			t.Errorf("column %q not added", col)
		}
	}

	items, err := ListAll(ctx, db)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, s := range items {
		if s.Language != nil || s.Tags != nil || s.Summary != nil {
			t.Errorf("snippet %d: new columns should be NULL, got %v %v %v", s.ID, s.Language, s.Tags, s.Summary)
		}
	}
	if items[0].Content != "old two" {
		t.Errorf("items[0].Content = %q, want %q", items[0].Content, "old two")
	}
}

func TestConfigurePool(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	ConfigurePool(db, nil)
	ConfigurePool(db, &config.Config{DBMaxOpenConns: 1, DBMaxIdleConns: 1})

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}
