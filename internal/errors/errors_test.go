package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestSnipError_Error(t *testing.T) {
	err := &SnipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "snippet not found",
	}

	expected := "NOT_FOUND: snippet not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("content is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "content is required" {
		t.Errorf("Message = %q, want %q", err.Message, "content is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound(42)

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != int64(42) {
		t.Errorf("Details[id] = %v, want 42", err.Details["id"])
	}
}

func TestNewAIBlocked(t *testing.T) {
	err := NewAIBlocked("SAFETY", map[string]any{"block_reason": "SAFETY"})

	if err.Code != ErrAIBlocked {
		t.Errorf("Code = %q, want %q", err.Code, ErrAIBlocked)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Message != "AI prompt feedback: SAFETY" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["block_reason"] != "SAFETY" {
		t.Errorf("Details[block_reason] = %v, want SAFETY", err.Details["block_reason"])
	}

	bare := NewAIBlocked("", nil)
	if bare.Message != "AI prompt blocked" {
		t.Errorf("Message = %q, want %q", bare.Message, "AI prompt blocked")
	}
}

func TestNewStorage_Unwraps(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := NewStorage(cause)

	if err.Code != ErrStorage {
		t.Errorf("Code = %q, want %q", err.Code, ErrStorage)
	}
	if !stderrors.Is(err, cause) {
		t.Error("NewStorage should wrap its cause")
	}
}

func TestNewAIFailed(t *testing.T) {
	err := NewAIFailed(nil)
	if err.Message != "unknown AI generation error" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}

	err = NewAIFailed(fmt.Errorf("quota exceeded"))
	if err.Message != "quota exceeded" {
		t.Errorf("Message = %q, want %q", err.Message, "quota exceeded")
	}
}

func TestNewAINotConfigured(t *testing.T) {
	err := NewAINotConfigured()
	if err.Code != ErrAINotConfigured || err.Status != 503 {
		t.Errorf("got %s/%d, want AI_NOT_CONFIGURED/503", err.Code, err.Status)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound(1), ErrNotFound, true},
		{"different code", NewNotFound(1), ErrInvalidRequest, false},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFound(1)), ErrNotFound, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInternal(t *testing.T) {
	nf := NewNotFound(3)
	if got := Internal(nf); got != nf {
		t.Error("Internal should return an existing SnipError unchanged")
	}

	got := Internal(fmt.Errorf("boom"))
	if got.Code != ErrInternal {
		t.Errorf("Code = %q, want INTERNAL", got.Code)
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/missing.jsonl")

	if err.Code != ErrNotFound || err.Status != 404 {
		t.Errorf("got %s/%d, want NOT_FOUND/404", err.Code, err.Status)
	}
	if err.Details["path"] != "/tmp/missing.jsonl" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		err    *SnipError
		public bool
		want   string
	}{
		{NewInvalidRequest("bad id"), true, "bad id"},
		{NewNotFound(3), true, "snippet not found: 3"},
		{NewStorage(fmt.Errorf("open /tmp/x.db: denied")), false, "a storage error occurred"},
		{NewInternal(fmt.Errorf("boom")), false, "an internal error occurred"},
	}

	for _, tt := range tests {
		if got := tt.err.Public(); got != tt.public {
			t.Errorf("%s: Public() = %v, want %v", tt.err.Code, got, tt.public)
		}
		if got := tt.err.PublicMessage(); got != tt.want {
			t.Errorf("%s: PublicMessage() = %q, want %q", tt.err.Code, got, tt.want)
		}
	}
}
