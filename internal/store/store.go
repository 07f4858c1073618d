// Package store is the single owner of durable snippet state. Every other
// component reads and mutates snippets through a *Store; nothing caches
// record state across calls.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/hpungsan/intelliclip/internal/db"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

// Store wraps the database handle with the snippet record contract.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over an initialized database.
func New(database *sql.DB, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: database, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// Create inserts a new snippet stamped with the current time.
// Storage faults are returned as STORAGE errors and are fatal for the caller.
func (s *Store) Create(ctx context.Context, content string, language, summary *string) (int64, error) {
	return s.Insert(ctx, &snippet.Snippet{
		Content:  content,
		Language: language,
		Summary:  summary,
	})
}

// Insert stores a fully-formed snippet. A zero Timestamp is replaced with
// the current time; ID is ignored.
func (s *Store) Insert(ctx context.Context, sn *snippet.Snippet) (int64, error) {
	rec := *sn
	if rec.Timestamp == 0 {
		rec.Timestamp = s.nowMillis()
	}
	id, err := db.Insert(ctx, s.db, &rec)
	if err != nil {
		s.logger.Error("store: insert failed", "error", err)
		return 0, err
	}
	s.logger.Debug("store: saved snippet",
		"id", id,
		"language", snippet.Deref(rec.Language),
		"has_summary", rec.Summary != nil,
	)
	return id, nil
}

// InsertMany stores fully-formed snippets atomically, stamping zero
// timestamps with the current time. Returns the new ids in input order.
func (s *Store) InsertMany(ctx context.Context, snippets []snippet.Snippet) ([]int64, error) {
	now := s.nowMillis()
	recs := make([]snippet.Snippet, len(snippets))
	for i, sn := range snippets {
		recs[i] = sn
		if recs[i].Timestamp == 0 {
			recs[i].Timestamp = now
		}
	}
	ids, err := db.InsertMany(ctx, s.db, recs)
	if err != nil {
		s.logger.Error("store: bulk insert failed", "count", len(recs), "error", err)
		return nil, err
	}
	s.logger.Debug("store: saved snippets", "count", len(ids))
	return ids, nil
}

// List returns all snippets ordered by timestamp descending.
// An empty store yields an empty, non-nil slice.
func (s *Store) List(ctx context.Context) ([]snippet.Snippet, error) {
	return db.ListAll(ctx, s.db)
}

// Get returns one snippet or a NOT_FOUND error.
func (s *Store) Get(ctx context.Context, id int64) (*snippet.Snippet, error) {
	return db.GetByID(ctx, s.db, id)
}

// Count returns the number of stored snippets.
func (s *Store) Count(ctx context.Context) (int, error) {
	return db.Count(ctx, s.db)
}

// Delete removes a snippet. Deleting a missing id logs a warning and
// succeeds. Returns whether a row was removed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	err := db.Delete(ctx, s.db, id)
	if errors.Is(err, errors.ErrNotFound) {
		s.logger.Warn("store: no snippet to delete", "id", id)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Debug("store: deleted snippet", "id", id)
	return true, nil
}

// UpdateContent replaces the snippet content.
func (s *Store) UpdateContent(ctx context.Context, id int64, content string) error {
	_, err := s.Patch(ctx, id, snippet.Patch{Content: &content})
	return err
}

// UpdateTags replaces the tag string. Nil clears the column.
func (s *Store) UpdateTags(ctx context.Context, id int64, tags *string) error {
	_, err := s.Patch(ctx, id, snippet.Patch{Tags: nonNil(tags)})
	return err
}

// UpdateLanguage replaces the language tag. Nil clears the column.
func (s *Store) UpdateLanguage(ctx context.Context, id int64, language *string) error {
	_, err := s.Patch(ctx, id, snippet.Patch{Language: nonNil(language)})
	return err
}

// UpdateSummary replaces the summary. Nil clears the column.
func (s *Store) UpdateSummary(ctx context.Context, id int64, summary *string) error {
	_, err := s.Patch(ctx, id, snippet.Patch{Summary: nonNil(summary)})
	return err
}

// ResolveSummary records an enrichment outcome. Unlike UpdateSummary it
// leaves the timestamp alone, so listing order reflects captures and user
// edits only. A record deleted while enrichment was in flight makes this a
// logged no-op.
func (s *Store) ResolveSummary(ctx context.Context, id int64, summary *string) error {
	err := db.SetSummary(ctx, s.db, id, snippet.Deref(summary))
	if errors.Is(err, errors.ErrNotFound) {
		s.logger.Warn("store: snippet gone before summary write-back", "id", id)
		return nil
	}
	if err != nil {
		s.logger.Error("store: summary write-back failed", "id", id, "error", err)
		return err
	}
	s.logger.Debug("store: summary resolved", "id", id)
	return nil
}

// Patch applies the named field changes with a single timestamp bump.
// A missing id logs a warning and returns (false, nil).
func (s *Store) Patch(ctx context.Context, id int64, p snippet.Patch) (bool, error) {
	err := db.Update(ctx, s.db, id, p, s.nowMillis())
	fields := strings.Join(p.Fields(), ",")
	if errors.Is(err, errors.ErrNotFound) {
		s.logger.Warn("store: no snippet to update", "id", id, "fields", fields)
		return false, nil
	}
	if err != nil {
		s.logger.Error("store: update failed", "id", id, "fields", fields, "error", err)
		return false, err
	}
	s.logger.Debug("store: updated snippet", "id", id, "fields", fields)
	return true, nil
}

// nonNil turns a nil nullable value into "" so the column is cleared
// rather than skipped.
func nonNil(v *string) *string {
	if v == nil {
		empty := ""
		return &empty
	}
	return v
}
