package search

import (
	"testing"

	"github.com/hpungsan/intelliclip/internal/snippet"
)

func stringPtr(s string) *string { return &s }

func fixture() []snippet.Snippet {
	return []snippet.Snippet{
		{ID: 1, Content: "fn main() { println!(\"hi\"); }", Timestamp: 100, Language: stringPtr("rust"), Tags: stringPtr("cli,rust")},
		{ID: 2, Content: "trust the process", Timestamp: 200},
		{ID: 3, Content: "def two_sum(nums, target): pass", Timestamp: 300, Language: stringPtr("python"),
			Summary: stringPtr("Solves **Two Sum** using a *hash map*.\n#leetcode")},
		{ID: 4, Content: "SELECT id FROM users", Timestamp: 400, Language: stringPtr("sql")},
	}
}

func ids(results []Result) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.Snippet.ID
	}
	return out
}

func TestSearch_ExactTagRanksFirst(t *testing.T) {
	idx := New(fixture(), DefaultOptions())

	results := idx.Search("rust")
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Snippet.ID != 1 {
		t.Errorf("top result = %d, want 1 (results %v)", results[0].Snippet.ID, ids(results))
	}
	if results[0].Score != 0 {
		t.Errorf("exact tag score = %v, want 0", results[0].Score)
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	idx := New(fixture(), DefaultOptions())
	for _, q := range []string{"", "   ", "\n\t"} {
		if got := idx.Search(q); got != nil {
			t.Errorf("Search(%q) = %v, want nil", q, ids(got))
		}
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	idx := New(fixture(), DefaultOptions())

	results := idx.Search("select ID")
	if len(results) == 0 || results[0].Snippet.ID != 4 {
		t.Fatalf("results = %v, want 4 first", ids(results))
	}
	if results[0].Field != FieldContent {
		t.Errorf("field = %q, want content", results[0].Field)
	}
}

func TestSearch_Typo(t *testing.T) {
	idx := New(fixture(), DefaultOptions())

	results := idx.Search("pyhton")
	if len(results) == 0 || results[0].Snippet.ID != 3 {
		t.Fatalf("results = %v, want 3 first", ids(results))
	}
	if results[0].Score <= 0 || results[0].Score > DefaultThreshold {
		t.Errorf("typo score = %v", results[0].Score)
	}
}

func TestSearch_SummaryMarkdownFlattened(t *testing.T) {
	idx := New(fixture(), DefaultOptions())

	results := idx.Search("hash map")
	if len(results) == 0 || results[0].Snippet.ID != 3 {
		t.Fatalf("results = %v, want 3 first", ids(results))
	}
	if results[0].Field != FieldSummary {
		t.Errorf("field = %q, want summary", results[0].Field)
	}
}

func TestSearch_MultiTermAverages(t *testing.T) {
	idx := New(fixture(), DefaultOptions())

	// Neither term order appears verbatim, both words do.
	results := idx.Search("users select")
	if len(results) == 0 || results[0].Snippet.ID != 4 {
		t.Fatalf("results = %v, want 4 first", ids(results))
	}
}

func TestSearch_NoMatch(t *testing.T) {
	idx := New(fixture(), DefaultOptions())
	if got := idx.Search("kubernetes"); len(got) != 0 {
		t.Errorf("results = %v, want none", ids(got))
	}
}

func TestSearch_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		query     string
		want      []int64
	}{
		{"zero accepts exact field only", 0, "python", []int64{3}},
		{"zero rejects substring", 0, "pyth", nil},
		{"one accepts all", 1, "zzzz", []int64{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := New(fixture(), Options{Threshold: tt.threshold})
			got := ids(idx.Search(tt.query))
			if len(got) != len(tt.want) {
				t.Fatalf("results = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("results = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSearch_TiesByTimestampDesc(t *testing.T) {
	snippets := []snippet.Snippet{
		{ID: 1, Content: "hello", Timestamp: 10},
		{ID: 2, Content: "hello", Timestamp: 30},
		{ID: 3, Content: "hello", Timestamp: 20},
	}
	got := ids(New(snippets, DefaultOptions()).Search("hello"))
	want := []int64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSearch_SubstringPositionWeighted(t *testing.T) {
	snippets := []snippet.Snippet{
		{ID: 1, Content: "the matching word is late: needle", Timestamp: 10},
		{ID: 2, Content: "needle first", Timestamp: 5},
	}
	results := New(snippets, DefaultOptions()).Search("needle")
	if len(results) != 2 || results[0].Snippet.ID != 2 {
		t.Fatalf("results = %v, want 2 first", ids(results))
	}
	if results[0].Score >= results[1].Score {
		t.Errorf("earlier hit should score lower: %v >= %v", results[0].Score, results[1].Score)
	}
}

func TestScoreHelpers(t *testing.T) {
	if d := normalized("abc", "abc"); d != 0 {
		t.Errorf("normalized equal = %v", d)
	}
	if d := normalized("abc", "xyz"); d != 1 {
		t.Errorf("normalized disjoint = %v", d)
	}
	if p := prefix("héllo", 2); p != "hé" {
		t.Errorf("prefix = %q", p)
	}
	if got := tokenize("foo(bar), #tag baz_qux"); len(got) != 4 || got[2] != "#tag" {
		t.Errorf("tokenize = %v", got)
	}
}
