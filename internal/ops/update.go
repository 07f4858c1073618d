package ops

import (
	"context"

	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

// UpdateOutput is returned by the single-field update operations. Updated
// is false when the id did not exist; that is not an error.
type UpdateOutput struct {
	ID      int64 `json:"id"`
	Updated bool  `json:"updated"`
}

// UpdateContentInput contains parameters for UpdateContent.
type UpdateContentInput struct {
	ID      int64
	Content string
}

// UpdateContent replaces a snippet's content. Blank content is rejected.
func UpdateContent(ctx context.Context, st *store.Store, input UpdateContentInput) (*UpdateOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	if err := contentError(input.Content); err != nil {
		return nil, err
	}
	return patch(ctx, st, "update_content", input.ID, snippet.Patch{Content: &input.Content})
}

// UpdateTagsInput contains parameters for UpdateTags.
type UpdateTagsInput struct {
	ID   int64
	Tags string // comma-delimited; normalized before storing, "" clears
}

// UpdateTags replaces a snippet's tags after normalization.
func UpdateTags(ctx context.Context, st *store.Store, input UpdateTagsInput) (*UpdateOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	tags := snippet.NormalizeTags(input.Tags)
	return patch(ctx, st, "update_tags", input.ID, snippet.Patch{Tags: &tags})
}

// UpdateLanguageInput contains parameters for UpdateLanguage.
type UpdateLanguageInput struct {
	ID       int64
	Language string // "" clears
}

// UpdateLanguage corrects a snippet's language tag.
func UpdateLanguage(ctx context.Context, st *store.Store, input UpdateLanguageInput) (*UpdateOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	language := snippet.Deref(snippet.CleanLanguage(&input.Language))
	return patch(ctx, st, "update_language", input.ID, snippet.Patch{Language: &language})
}

// UpdateSummaryInput contains parameters for UpdateSummary.
type UpdateSummaryInput struct {
	ID      int64
	Summary *string // nil clears
}

// UpdateSummary replaces a snippet's summary.
func UpdateSummary(ctx context.Context, st *store.Store, input UpdateSummaryInput) (*UpdateOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	summary := snippet.Deref(input.Summary)
	return patch(ctx, st, "update_summary", input.ID, snippet.Patch{Summary: &summary})
}

// EditInput contains parameters for Edit. Nil fields are left unchanged.
type EditInput struct {
	ID      int64
	Content *string
	Tags    *string
}

// EditOutput contains the result of the Edit operation.
type EditOutput struct {
	ID      int64    `json:"id"`
	Changed bool     `json:"changed"`
	Fields  []string `json:"fields,omitempty"`
}

// Edit applies a combined content and tags edit. Fields equal to the stored
// values (tags compared after normalization) are skipped; when nothing
// differs the record, including its timestamp, is left untouched.
func Edit(ctx context.Context, st *store.Store, input EditInput) (*EditOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	if input.Content == nil && input.Tags == nil {
		return nil, errors.NewInvalidRequest("content or tags must be provided")
	}
	if input.Content != nil {
		if err := contentError(*input.Content); err != nil {
			return nil, err
		}
	}

	current, err := st.Get(ctx, input.ID)
	if errors.Is(err, errors.ErrNotFound) {
		return &EditOutput{ID: input.ID}, nil
	}
	if err != nil {
		return nil, wrap("edit", err)
	}

	var p snippet.Patch
	if input.Content != nil && *input.Content != current.Content {
		p.Content = input.Content
	}
	if input.Tags != nil && !snippet.TagsEqual(input.Tags, current.Tags) {
		tags := snippet.NormalizeTags(*input.Tags)
		p.Tags = &tags
	}
	if p.Empty() {
		return &EditOutput{ID: input.ID}, nil
	}

	touched, err := st.Patch(ctx, input.ID, p)
	if err != nil {
		return nil, wrap("edit", err)
	}
	out := &EditOutput{ID: input.ID, Changed: touched}
	if touched {
		out.Fields = p.Fields()
	}
	return out, nil
}

func patch(ctx context.Context, st *store.Store, op string, id int64, p snippet.Patch) (*UpdateOutput, error) {
	touched, err := st.Patch(ctx, id, p)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &UpdateOutput{ID: id, Updated: touched}, nil
}
