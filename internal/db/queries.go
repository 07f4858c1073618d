package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

const selectColumns = `SELECT id, content, timestamp, language, tags, summary FROM snippets`

const insertQuery = `INSERT INTO snippets (content, timestamp, language, tags, summary) VALUES (?, ?, ?, ?, ?)`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert stores a new snippet and returns its id. s.ID is ignored.
func Insert(ctx context.Context, db *sql.DB, s *snippet.Snippet) (int64, error) {
	return insert(ctx, db, s)
}

func insert(ctx context.Context, ex execer, s *snippet.Snippet) (int64, error) {
	result, err := ex.ExecContext(ctx, insertQuery,
		s.Content, s.Timestamp,
		toNullString(s.Language), toNullString(s.Tags), toNullString(s.Summary),
	)
	if err != nil {
		return 0, errors.NewStorage(fmt.Errorf("insert snippet: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewStorage(fmt.Errorf("insert snippet: %w", err))
	}
	return id, nil
}

// InsertMany stores snippets in one transaction and returns their new ids
// in input order. Either all rows are written or none.
func InsertMany(ctx context.Context, db *sql.DB, snippets []snippet.Snippet) ([]int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewStorage(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(snippets))
	for i := range snippets {
		id, err := insert(ctx, tx, &snippets[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewStorage(fmt.Errorf("commit transaction: %w", err))
	}
	return ids, nil
}

// ListAll returns every snippet, newest first. Ties on timestamp are broken
// by id so later inserts list first.
func ListAll(ctx context.Context, db *sql.DB) ([]snippet.Snippet, error) {
	rows, err := db.QueryContext(ctx, selectColumns+` ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, errors.NewStorage(fmt.Errorf("list snippets: %w", err))
	}
	defer rows.Close()

	items := []snippet.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, errors.NewStorage(fmt.Errorf("scan snippet: %w", err))
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage(fmt.Errorf("list snippets: %w", err))
	}
	return items, nil
}

// GetByID retrieves a snippet by id.
func GetByID(ctx context.Context, db *sql.DB, id int64) (*snippet.Snippet, error) {
	row := db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	s, err := scanSnippet(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewStorage(fmt.Errorf("get snippet: %w", err))
	}
	return s, nil
}

// Count returns the number of stored snippets.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippets`).Scan(&n); err != nil {
		return 0, errors.NewStorage(fmt.Errorf("count snippets: %w", err))
	}
	return n, nil
}

// Delete removes a snippet permanently. Returns ErrNotFound if no row matched.
func Delete(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return errors.NewStorage(fmt.Errorf("delete snippet: %w", err))
	}
	return requireRow(result, id)
}

// Update applies a patch and bumps the timestamp to MAX(now, timestamp+1),
// keeping it strictly increasing per record. Returns ErrNotFound if no row
// matched. Nullable fields set to "" are stored as NULL.
func Update(ctx context.Context, db *sql.DB, id int64, p snippet.Patch, now int64) error {
	if p.Empty() {
		return errors.NewInvalidRequest("at least one field must be provided")
	}

	var (
		sets []string
		args []any
	)
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.Language != nil {
		sets = append(sets, "language = ?")
		args = append(args, emptyToNull(*p.Language))
	}
	if p.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, emptyToNull(*p.Tags))
	}
	if p.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, emptyToNull(*p.Summary))
	}
	sets = append(sets, "timestamp = MAX(?, timestamp + 1)")
	args = append(args, now, id)

	query := `UPDATE snippets SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewStorage(fmt.Errorf("update snippet: %w", err))
	}
	return requireRow(result, id)
}

// SetSummary writes the summary column without bumping the timestamp, so
// background enrichment never reorders the listing. Returns ErrNotFound if
// no row matched.
func SetSummary(ctx context.Context, db *sql.DB, id int64, summary string) error {
	result, err := db.ExecContext(ctx, `UPDATE snippets SET summary = ? WHERE id = ?`, emptyToNull(summary), id)
	if err != nil {
		return errors.NewStorage(fmt.Errorf("set summary: %w", err))
	}
	return requireRow(result, id)
}

// requireRow converts a zero-row result into ErrNotFound.
func requireRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorage(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnippet scans a single row into a Snippet struct.
func scanSnippet(row rowScanner) (*snippet.Snippet, error) {
	var (
		s        snippet.Snippet
		language sql.NullString
		tags     sql.NullString
		summary  sql.NullString
	)

	if err := row.Scan(&s.ID, &s.Content, &s.Timestamp, &language, &tags, &summary); err != nil {
		return nil, err
	}

	s.Language = fromNullString(language)
	s.Tags = fromNullString(tags)
	s.Summary = fromNullString(summary)

	return &s, nil
}

// emptyToNull maps "" to NULL for nullable columns.
func emptyToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
