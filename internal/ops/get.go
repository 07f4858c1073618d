package ops

import (
	"context"

	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID int64
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	snippet.Snippet
}

// Get returns one snippet, or NOT_FOUND.
func Get(ctx context.Context, st *store.Store, input GetInput) (*GetOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	s, err := st.Get(ctx, input.ID)
	if err != nil {
		return nil, wrap("get", err)
	}
	return &GetOutput{Snippet: *s}, nil
}
