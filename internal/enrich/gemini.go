package enrich

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hpungsan/intelliclip/internal/config"
)

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini is a Summarizer backed by the Gemini API.
type Gemini struct {
	models *genai.Models
	model  string
	config *genai.GenerateContentConfig
}

// safetyCategories are all sent with threshold BLOCK_NONE.
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// NewGemini creates a Gemini client.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	settings := make([]*genai.SafetySetting, 0, len(safetyCategories))
	for _, c := range safetyCategories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}

	return &Gemini{
		models: client.Models,
		model:  model,
		config: &genai.GenerateContentConfig{SafetySettings: settings},
	}, nil
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn and returns the response text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if blocked := blockedFrom(resp); blocked != nil {
		return "", blocked
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// blockedFrom extracts a BlockedError when the response was refused.
func blockedFrom(resp *genai.GenerateContentResponse) *BlockedError {
	if resp == nil {
		return nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return &BlockedError{
			Reason:  string(fb.BlockReason),
			Message: fb.BlockReasonMessage,
			Ratings: convertRatings(fb.SafetyRatings),
		}
	}
	for _, c := range resp.Candidates {
		if c != nil && c.FinishReason == genai.FinishReasonSafety {
			return &BlockedError{
				Reason:  string(c.FinishReason),
				Message: c.FinishMessage,
				Ratings: convertRatings(c.SafetyRatings),
			}
		}
	}
	return nil
}

func convertRatings(in []*genai.SafetyRating) []SafetyRating {
	if len(in) == 0 {
		return nil
	}
	out := make([]SafetyRating, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		out = append(out, SafetyRating{
			Category:    string(r.Category),
			Probability: string(r.Probability),
			Blocked:     r.Blocked,
		})
	}
	return out
}
