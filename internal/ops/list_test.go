package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

func TestList_OrderAndFilters(t *testing.T) {
	st := setupStore(t)
	ids := seed(t, st,
		snippet.Snippet{Content: "a", Timestamp: 100, Language: stringPtr("go"), Tags: stringPtr("cli")},
		snippet.Snippet{Content: "b", Timestamp: 300, Language: stringPtr("python")},
		snippet.Snippet{Content: "c", Timestamp: 200, Language: stringPtr("go"), Tags: stringPtr("net,cli")},
	)

	tests := []struct {
		name  string
		input ListInput
		want  []int64
	}{
		{"all newest first", ListInput{}, []int64{ids[1], ids[2], ids[0]}},
		{"language filter", ListInput{Language: "GO"}, []int64{ids[2], ids[0]}},
		{"tag filter", ListInput{Tag: "CLI"}, []int64{ids[2], ids[0]}},
		{"both filters", ListInput{Language: "go", Tag: "net"}, []int64{ids[2]}},
		{"limit", ListInput{Limit: 2}, []int64{ids[1], ids[2]}},
		{"offset", ListInput{Limit: 2, Offset: 2}, []int64{ids[0]}},
		{"offset past end", ListInput{Offset: 10}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := List(context.Background(), st, tt.input)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(out.Items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(out.Items), len(tt.want))
			}
			for i, id := range tt.want {
				if out.Items[i].ID != id {
					t.Errorf("item %d = %d, want %d", i, out.Items[i].ID, id)
				}
			}
		})
	}
}

func TestList_Pagination(t *testing.T) {
	st := setupStore(t)
	seed(t, st,
		snippet.Snippet{Content: "a", Timestamp: 1},
		snippet.Snippet{Content: "b", Timestamp: 2},
		snippet.Snippet{Content: "c", Timestamp: 3},
	)

	out, err := List(context.Background(), st, ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Page.Total != 3 || !out.Page.HasMore {
		t.Errorf("page = %+v, want total 3 has_more", out.Page)
	}

	out, err = List(context.Background(), st, ListInput{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Page.HasMore {
		t.Errorf("page = %+v, want no more", out.Page)
	}
}

func TestList_Empty(t *testing.T) {
	out, err := List(context.Background(), setupStore(t), ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Items == nil || len(out.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil", out.Items)
	}
}

func TestList_InvalidPaging(t *testing.T) {
	st := setupStore(t)
	for _, in := range []ListInput{{Limit: -1}, {Limit: MaxListLimit + 1}, {Offset: -1}} {
		if _, err := List(context.Background(), st, in); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("List(%+v) = %v, want INVALID_REQUEST", in, err)
		}
	}
}
