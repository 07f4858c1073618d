package ops

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/hpungsan/intelliclip/internal/enrich"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

// MaxPromptChars bounds a free-form prompt.
const MaxPromptChars = 100_000

// AskInput contains parameters for the Ask operation.
type AskInput struct {
	Prompt string
}

// AskOutput contains the result of the Ask and AskAbout operations.
type AskOutput struct {
	Response string `json:"response"`
}

// Ask sends a free-form prompt to the summarizer. A nil summarizer yields
// AI_NOT_CONFIGURED; a policy refusal yields AI_BLOCKED with the provider's
// feedback in Details.
func Ask(ctx context.Context, summarizer enrich.Summarizer, input AskInput) (*AskOutput, error) {
	if summarizer == nil {
		return nil, errors.NewAINotConfigured()
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.NewInvalidRequest("prompt must not be empty")
	}
	if len(input.Prompt) > MaxPromptChars {
		return nil, errors.NewInvalidRequest("prompt too long")
	}

	response, err := summarizer.Generate(ctx, input.Prompt)
	if err != nil {
		return nil, aiError(ctx, err)
	}
	return &AskOutput{Response: response}, nil
}

// AskAboutInput contains parameters for the AskAbout operation.
type AskAboutInput struct {
	ID int64
}

// AskAbout asks the summarizer to explain a stored snippet.
func AskAbout(ctx context.Context, st *store.Store, summarizer enrich.Summarizer, input AskAboutInput) (*AskOutput, error) {
	if summarizer == nil {
		return nil, errors.NewAINotConfigured()
	}
	out, err := Get(ctx, st, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}
	prompt := enrich.AskAboutPrompt(out.Content, snippet.Deref(out.Language))
	return Ask(ctx, summarizer, AskInput{Prompt: prompt})
}

func aiError(ctx context.Context, err error) error {
	var blocked *enrich.BlockedError
	if stderrors.As(err, &blocked) {
		return errors.NewAIBlocked(blocked.Reason, blocked.Feedback())
	}
	if ctx.Err() != nil {
		return errors.NewCancelled("ask")
	}
	return errors.NewAIFailed(err)
}
