package web

import (
	"encoding/json"
	"net/http"

	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/markdown"
	"github.com/hpungsan/intelliclip/internal/ops"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

// snippetView is a snippet with its summary rendered to HTML.
type snippetView struct {
	snippet.Snippet
	SummaryHTML string `json:"summary_html,omitempty"`
}

type searchView struct {
	ops.SearchItem
	SummaryHTML string `json:"summary_html,omitempty"`
}

func newSnippetView(s snippet.Snippet) snippetView {
	return snippetView{Snippet: s, SummaryHTML: summaryHTML(s.Summary)}
}

func summaryHTML(summary *string) string {
	if summary == nil || *summary == "" {
		return ""
	}
	return markdown.HTML(*summary)
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// renderError writes the {"error":{...}} payload. Messages and details of
// INTERNAL and STORAGE errors stay server-side.
func (h *handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	sErr, ok := errors.As(err)
	if !ok {
		sErr = errors.NewInternal(err)
	}
	if sErr.Status >= 500 {
		h.logger.Error("web: request failed", "path", r.URL.Path, "code", sErr.Code, "error", err)
	}

	errorObj := map[string]any{
		"code":    string(sErr.Code),
		"message": sErr.PublicMessage(),
		"status":  sErr.Status,
	}
	if sErr.Public() && sErr.Details != nil {
		errorObj["details"] = sErr.Details
	}
	renderJSON(w, sErr.Status, map[string]any{"error": errorObj})
}
