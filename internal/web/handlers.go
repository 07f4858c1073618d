package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hpungsan/intelliclip/internal/capture"
	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/enrich"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/ops"
	"github.com/hpungsan/intelliclip/internal/store"
)

// maxBodyBytes bounds request bodies; a snippet body is one JSON object.
const maxBodyBytes = 8 << 20

// handlers contains the HTTP route handlers.
type handlers struct {
	store      *store.Store
	cfg        *config.Config
	trigger    capture.Capturer
	broker     *capture.Broker
	worker     *enrich.Worker
	summarizer enrich.Summarizer
	logger     *slog.Logger
	version    string
}

func newHandlers(deps Deps) *handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &handlers{
		store:      deps.Store,
		cfg:        deps.Config,
		trigger:    deps.Trigger,
		broker:     deps.Broker,
		worker:     deps.Worker,
		summarizer: deps.Summarizer,
		logger:     logger,
		version:    deps.Version,
	}
}

type listResponse struct {
	Items []snippetView `json:"items"`
	Page  ops.Page      `json:"page"`
}

type searchResponse struct {
	Query  string       `json:"query"`
	Ranked bool         `json:"ranked"`
	Items  []searchView `json:"items"`
	Page   ops.Page     `json:"page"`
}

// HandleHealth handles GET /api/health.
func (h *handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	resp := map[string]any{
		"status":     "ok",
		"version":    h.version,
		"snippets":   count,
		"ai_enabled": h.summarizer != nil,
	}
	if h.worker.Enabled() {
		resp["enrichment"] = h.worker.Stats()
	}
	renderJSON(w, http.StatusOK, resp)
}

// HandleList handles GET /api/snippets. With ?q= it searches instead.
func (h *handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(r, "limit")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if query := q.Get("q"); query != "" {
		h.search(w, r, query, limit, offset)
		return
	}

	result, err := ops.List(r.Context(), h.store, ops.ListInput{
		Language: q.Get("language"),
		Tag:      q.Get("tag"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	items := make([]snippetView, 0, len(result.Items))
	for _, s := range result.Items {
		items = append(items, newSnippetView(s))
	}
	renderJSON(w, http.StatusOK, listResponse{Items: items, Page: result.Page})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request, query string, limit, offset int) {
	input := ops.SearchInput{Query: query, Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.renderError(w, r, errors.NewInvalidRequest("threshold must be a number"))
			return
		}
		input.Threshold = &threshold
	}

	result, err := ops.Search(r.Context(), h.store, h.cfg, input)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	items := make([]searchView, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, searchView{SearchItem: it, SummaryHTML: summaryHTML(it.Summary)})
	}
	renderJSON(w, http.StatusOK, searchResponse{
		Query:  result.Query,
		Ranked: result.Ranked,
		Items:  items,
		Page:   result.Page,
	})
}

// HandleCapture handles POST /api/snippets.
func (h *handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	result, err := ops.Capture(r.Context(), h.trigger, ops.CaptureInput{Text: body.Text})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	renderJSON(w, status, result)
}

// HandleGet handles GET /api/snippets/{id}.
func (h *handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	result, err := ops.Get(r.Context(), h.store, ops.GetInput{ID: id})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, newSnippetView(result.Snippet))
}

// HandleDelete handles DELETE /api/snippets/{id}.
func (h *handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	result, err := ops.Delete(r.Context(), h.store, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleEdit handles PATCH /api/snippets/{id}.
func (h *handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var body struct {
		Content *string `json:"content"`
		Tags    *string `json:"tags"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	result, err := ops.Edit(r.Context(), h.store, ops.EditInput{ID: id, Content: body.Content, Tags: body.Tags})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleUpdateContent handles PUT /api/snippets/{id}/content.
func (h *handlers) HandleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.update(w, r)(ops.UpdateContent(r.Context(), h.store, ops.UpdateContentInput{ID: id, Content: body.Content}))
}

// HandleUpdateTags handles PUT /api/snippets/{id}/tags.
func (h *handlers) HandleUpdateTags(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var body struct {
		Tags string `json:"tags"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.update(w, r)(ops.UpdateTags(r.Context(), h.store, ops.UpdateTagsInput{ID: id, Tags: body.Tags}))
}

// HandleUpdateLanguage handles PUT /api/snippets/{id}/language.
func (h *handlers) HandleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var body struct {
		Language string `json:"language"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.update(w, r)(ops.UpdateLanguage(r.Context(), h.store, ops.UpdateLanguageInput{ID: id, Language: body.Language}))
}

// HandleUpdateSummary handles PUT /api/snippets/{id}/summary.
func (h *handlers) HandleUpdateSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var body struct {
		Summary *string `json:"summary"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.update(w, r)(ops.UpdateSummary(r.Context(), h.store, ops.UpdateSummaryInput{ID: id, Summary: body.Summary}))
}

// HandleAsk handles POST /api/ask.
func (h *handlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	result, err := ops.Ask(r.Context(), h.summarizer, ops.AskInput{Prompt: body.Prompt})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleAskAbout handles POST /api/snippets/{id}/ask.
func (h *handlers) HandleAskAbout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	result, err := ops.AskAbout(r.Context(), h.store, h.summarizer, ops.AskAboutInput{ID: id})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// update returns a sink for single-field update results.
func (h *handlers) update(w http.ResponseWriter, r *http.Request) func(*ops.UpdateOutput, error) {
	return func(out *ops.UpdateOutput, err error) {
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
	}
}

// id parses the {id} URL parameter, writing a 400 on failure.
func (h *handlers) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.renderError(w, r, errors.NewInvalidRequest(fmt.Sprintf("invalid id: %q", raw)))
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into dst, writing a 400 on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.renderError(w, r, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
		return false
	}
	return true
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}
