// Package enrich generates machine-written summaries for stored snippets.
//
// A Summarizer turns a prompt into response text. The Worker runs one
// summarization per captured snippet off the capture path and writes the
// outcome back through the store.
package enrich

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hpungsan/intelliclip/internal/config"
)

// Summarizer generates text for a prompt.
type Summarizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SummarizerFunc adapts a plain function to Summarizer.
type SummarizerFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f SummarizerFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// SafetyRating is one provider safety category assessment.
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability,omitempty"`
	Blocked     bool   `json:"blocked,omitempty"`
}

// BlockedError reports that the provider refused a prompt on safety or
// policy grounds.
type BlockedError struct {
	Reason  string
	Message string
	Ratings []SafetyRating
}

func (e *BlockedError) Error() string {
	var b strings.Builder
	b.WriteString("prompt blocked")
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " (%s)", e.Message)
	}
	return b.String()
}

// Feedback returns the provider feedback as a JSON-friendly map.
func (e *BlockedError) Feedback() map[string]any {
	fb := map[string]any{}
	if e.Reason != "" {
		fb["block_reason"] = e.Reason
	}
	if e.Message != "" {
		fb["block_reason_message"] = e.Message
	}
	if len(e.Ratings) > 0 {
		ratings := append([]SafetyRating(nil), e.Ratings...)
		sort.Slice(ratings, func(i, j int) bool { return ratings[i].Category < ratings[j].Category })
		fb["safety_ratings"] = ratings
	}
	return fb
}

// FromConfig builds the configured provider. It returns (nil, nil) when no
// API key is set; a nil Summarizer means enrichment is not configured.
func FromConfig(ctx context.Context, cfg *config.Config) (Summarizer, error) {
	if cfg == nil || !cfg.AIEnabled() {
		return nil, nil
	}
	g, err := NewGemini(ctx, GeminiConfig{
		APIKey: cfg.AIAPIKey,
		Model:  cfg.AIModel,
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
