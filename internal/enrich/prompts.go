package enrich

import (
	"fmt"
	"strings"
)

const summaryInstruction = "Please provide a concise summary of the following %s in at most 3-4 lines, " +
	"depending on what the content needs. If it is a solution to a well-known problem " +
	"(LeetCode, CSES or similar problem sets) or uses a standard data structure " +
	"(hash map, linked list, set...) or algorithm (dynamic programming, backtracking, BFS, " +
	"two pointers...), mention it, but only if it matters; otherwise just say what it does. " +
	"Also add at least one relevant #tag for easy search of the snippet. " +
	"Focus on the main purpose or key points:\n\n%s"

const askAboutInstruction = "Tell me more about this %s. Explain what it does, " +
	"how it works, and anything worth knowing before reusing it.\n\n```%s\n%s\n```"

// subject phrases the content kind for a prompt ("python snippet", "content").
func subject(language, fallback string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return fallback
	}
	return language + " snippet"
}

// SummaryPrompt builds the enrichment prompt for a captured snippet.
func SummaryPrompt(content, language string) string {
	return fmt.Sprintf(summaryInstruction, subject(language, "content"), content)
}

// AskAboutPrompt builds a free-form explanation prompt for a stored snippet.
func AskAboutPrompt(content, language string) string {
	return fmt.Sprintf(askAboutInstruction, subject(language, "snippet"), strings.TrimSpace(language), content)
}
