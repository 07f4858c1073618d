// Package ops implements the validated operations every adapter (CLI, MCP,
// HTTP) exposes. Each returns (*Output, error) where a non-nil error is
// always an *errors.SnipError.
package ops

import (
	"context"
	stderrors "errors"

	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

// Listing limits.
const (
	DefaultListLimit = 0 // 0 = no limit
	MaxListLimit     = 1000
)

// Page applies limit/offset to a full result set and reports whether more
// items follow.
type Page struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// ValidateID rejects non-positive ids.
func ValidateID(id int64) error {
	if id <= 0 {
		return errors.NewInvalidRequest("id must be a positive integer")
	}
	return nil
}

// paginate validates limit/offset and returns the bounds for n items.
func paginate(limit, offset, n int) (start, end int, page Page, err error) {
	if limit < 0 || limit > MaxListLimit {
		return 0, 0, Page{}, errors.NewInvalidRequest("limit must be between 0 and 1000")
	}
	if offset < 0 {
		return 0, 0, Page{}, errors.NewInvalidRequest("offset must not be negative")
	}
	start = offset
	if start > n {
		start = n
	}
	end = n
	if limit > 0 && start+limit < n {
		end = start + limit
	}
	return start, end, Page{Limit: limit, Offset: offset, Total: n, HasMore: end < n}, nil
}

// contentError validates snippet content for edits.
func contentError(content string) error {
	if snippet.IsBlank(content) {
		return errors.NewInvalidRequest("content must not be empty")
	}
	return nil
}

// wrap turns any error into a SnipError, mapping context errors to CANCELLED.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewCancelled(op)
	}
	return errors.NewInternal(err)
}
