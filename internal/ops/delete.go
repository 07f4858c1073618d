package ops

import (
	"context"

	"github.com/hpungsan/intelliclip/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID int64
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// Delete removes a snippet permanently. A missing id succeeds with
// deleted=false.
func Delete(ctx context.Context, st *store.Store, input DeleteInput) (*DeleteOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}
	deleted, err := st.Delete(ctx, input.ID)
	if err != nil {
		return nil, wrap("delete", err)
	}
	return &DeleteOutput{ID: input.ID, Deleted: deleted}, nil
}
