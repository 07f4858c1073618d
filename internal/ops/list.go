package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Language string // optional exact filter, case-insensitive
	Tag      string // optional tag filter, case-insensitive
	Limit    int
	Offset   int
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []snippet.Snippet `json:"items"`
	Page  Page              `json:"page"`
}

// List returns snippets newest first.
func List(ctx context.Context, st *store.Store, input ListInput) (*ListOutput, error) {
	all, err := st.List(ctx)
	if err != nil {
		return nil, wrap("list", err)
	}

	items := filter(all, input.Language, input.Tag)
	start, end, page, err := paginate(input.Limit, input.Offset, len(items))
	if err != nil {
		return nil, err
	}
	return &ListOutput{Items: items[start:end], Page: page}, nil
}

func filter(items []snippet.Snippet, language, tag string) []snippet.Snippet {
	language = strings.TrimSpace(language)
	tag = strings.TrimSpace(tag)
	if language == "" && tag == "" {
		return items
	}

	out := make([]snippet.Snippet, 0, len(items))
	for _, s := range items {
		if language != "" && !strings.EqualFold(snippet.Deref(s.Language), language) {
			continue
		}
		if tag != "" && !hasTag(s.TagList(), tag) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
