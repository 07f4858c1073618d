package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/search"
	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query     string
	Threshold *float64 // optional override of config search_threshold
	Limit     int
	Offset    int
}

// SearchItem is a snippet with its match score. Score and Field are omitted
// for unranked results.
type SearchItem struct {
	snippet.Snippet
	Score *float64 `json:"score,omitempty"`
	Field string   `json:"field,omitempty"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Query  string       `json:"query"`
	Ranked bool         `json:"ranked"`
	Items  []SearchItem `json:"items"`
	Page   Page         `json:"page"`
}

// Search ranks snippets against the query over a fresh snapshot. An empty
// query returns the unfiltered listing, newest first.
func Search(ctx context.Context, st *store.Store, cfg *config.Config, input SearchInput) (*SearchOutput, error) {
	threshold := cfg.Threshold()
	if input.Threshold != nil {
		threshold = *input.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.NewInvalidRequest("threshold must be between 0 and 1")
	}

	all, err := st.List(ctx)
	if err != nil {
		return nil, wrap("search", err)
	}

	query := strings.TrimSpace(input.Query)
	var items []SearchItem
	if query == "" {
		items = make([]SearchItem, len(all))
		for i, s := range all {
			items[i] = SearchItem{Snippet: s}
		}
	} else {
		results := search.New(all, search.Options{Threshold: threshold}).Search(query)
		items = make([]SearchItem, len(results))
		for i, r := range results {
			score := r.Score
			items[i] = SearchItem{Snippet: r.Snippet, Score: &score, Field: r.Field}
		}
	}

	start, end, page, err := paginate(input.Limit, input.Offset, len(items))
	if err != nil {
		return nil, err
	}
	return &SearchOutput{
		Query:  query,
		Ranked: query != "",
		Items:  items[start:end],
		Page:   page,
	}, nil
}
