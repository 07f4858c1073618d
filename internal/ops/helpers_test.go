package ops

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hpungsan/intelliclip/internal/db"
	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

func stringPtr(s string) *string { return &s }

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return store.New(database, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// seed inserts snippets with explicit timestamps and returns their ids.
func seed(t *testing.T, st *store.Store, snippets ...snippet.Snippet) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(snippets))
	for i := range snippets {
		id, err := st.Insert(context.Background(), &snippets[i])
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}
