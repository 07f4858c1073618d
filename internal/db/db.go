package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/intelliclip/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// FileName is the database file created inside the base directory.
const FileName = "intelliclip.db"

// optionalColumns are added on startup when missing. Order matters only
// for log readability; every column defaults to NULL.
var optionalColumns = []string{"tags", "language", "summary"}

// Init initializes the SQLite database at baseDir/intelliclip.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.intelliclip.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Create exports subdirectory
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// Migrate brings the schema up to date. It is additive and idempotent:
// the base table is created if missing, each optional column is added
// only when absent, and existing rows are never rewritten.
func Migrate(ctx context.Context, db *sql.DB) error {
	base := `
	CREATE TABLE IF NOT EXISTS snippets (
	  id        INTEGER PRIMARY KEY AUTOINCREMENT,
	  content   TEXT NOT NULL,
	  timestamp INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, base); err != nil {
		return fmt.Errorf("create snippets table: %w", err)
	}

	existing, err := Columns(ctx, db, "snippets")
	if err != nil {
		return err
	}
	for _, col := range optionalColumns {
		if existing[col] {
			continue
		}
		// Column names come from optionalColumns, never from input.
		if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE snippets ADD COLUMN %s TEXT", col)); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}

	index := `CREATE INDEX IF NOT EXISTS idx_snippets_timestamp ON snippets(timestamp DESC, id DESC);`
	if _, err := db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}

	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}
	if version < CurrentSchemaVersion {
		if err := SetUserVersion(db, CurrentSchemaVersion); err != nil {
			return err
		}
	}

	return nil
}

// Columns returns the set of column names of table.
func Columns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table_info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table_info: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table_info: %w", err)
	}
	return cols, nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
