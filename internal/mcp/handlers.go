package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/intelliclip/internal/capture"
	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/enrich"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/ops"
	"github.com/hpungsan/intelliclip/internal/store"
)

// Deps are the components the tool handlers call into.
type Deps struct {
	Store      *store.Store
	Config     *config.Config
	Trigger    capture.Capturer
	Summarizer enrich.Summarizer // nil when AI is not configured
	ExportsDir string
	Logger     *slog.Logger
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store      *store.Store
	cfg        *config.Config
	trigger    capture.Capturer
	summarizer enrich.Summarizer
	exportsDir string
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		store:      deps.Store,
		cfg:        deps.Config,
		trigger:    deps.Trigger,
		summarizer: deps.Summarizer,
		exportsDir: deps.ExportsDir,
		logger:     loggerOrDefault(deps.Logger),
	}
}

// Request types for each tool

// CaptureRequest represents the arguments for snippet_capture.
type CaptureRequest struct {
	Text string `json:"text"`
}

// ListRequest represents the arguments for snippet_list.
type ListRequest struct {
	Language string `json:"language,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for snippet_search.
type SearchRequest struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

// IDRequest represents the arguments for tools addressing one snippet.
type IDRequest struct {
	ID int64 `json:"id"`
}

// UpdateContentRequest represents the arguments for snippet_update_content.
type UpdateContentRequest struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// UpdateTagsRequest represents the arguments for snippet_update_tags.
type UpdateTagsRequest struct {
	ID   int64  `json:"id"`
	Tags string `json:"tags"`
}

// UpdateLanguageRequest represents the arguments for snippet_update_language.
type UpdateLanguageRequest struct {
	ID       int64  `json:"id"`
	Language string `json:"language"`
}

// UpdateSummaryRequest represents the arguments for snippet_update_summary.
type UpdateSummaryRequest struct {
	ID      int64   `json:"id"`
	Summary *string `json:"summary,omitempty"`
}

// EditRequest represents the arguments for snippet_edit.
type EditRequest struct {
	ID      int64   `json:"id"`
	Content *string `json:"content,omitempty"`
	Tags    *string `json:"tags,omitempty"`
}

// ExportRequest represents the arguments for snippet_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for snippet_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// AskRequest represents the arguments for ai_ask.
type AskRequest struct {
	Prompt string `json:"prompt"`
}

// Handler implementations

// HandleCapture handles the snippet_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Capture(ctx, h.trigger, ops.CaptureInput{Text: input.Text}))
}

// HandleList handles the snippet_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.List(ctx, h.store, ops.ListInput{
		Language: input.Language,
		Tag:      input.Tag,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}))
}

// HandleSearch handles the snippet_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Search(ctx, h.store, h.cfg, ops.SearchInput{
		Query:     input.Query,
		Threshold: input.Threshold,
		Limit:     input.Limit,
		Offset:    input.Offset,
	}))
}

// HandleGet handles the snippet_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Get(ctx, h.store, ops.GetInput{ID: input.ID}))
}

// HandleDelete handles the snippet_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Delete(ctx, h.store, ops.DeleteInput{ID: input.ID}))
}

// HandleUpdateContent handles the snippet_update_content tool call.
func (h *Handlers) HandleUpdateContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateContentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.UpdateContent(ctx, h.store, ops.UpdateContentInput{ID: input.ID, Content: input.Content}))
}

// HandleUpdateTags handles the snippet_update_tags tool call.
func (h *Handlers) HandleUpdateTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateTagsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.UpdateTags(ctx, h.store, ops.UpdateTagsInput{ID: input.ID, Tags: input.Tags}))
}

// HandleUpdateLanguage handles the snippet_update_language tool call.
func (h *Handlers) HandleUpdateLanguage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateLanguageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.UpdateLanguage(ctx, h.store, ops.UpdateLanguageInput{ID: input.ID, Language: input.Language}))
}

// HandleUpdateSummary handles the snippet_update_summary tool call.
func (h *Handlers) HandleUpdateSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateSummaryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.UpdateSummary(ctx, h.store, ops.UpdateSummaryInput{ID: input.ID, Summary: input.Summary}))
}

// HandleEdit handles the snippet_edit tool call.
func (h *Handlers) HandleEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EditRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Edit(ctx, h.store, ops.EditInput{ID: input.ID, Content: input.Content, Tags: input.Tags}))
}

// HandleExport handles the snippet_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Export(ctx, h.store, h.cfg, h.exportsDir, ops.ExportInput{Path: input.Path}))
}

// HandleImport handles the snippet_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Import(ctx, h.store, h.cfg, h.exportsDir, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	}))
}

// HandleAsk handles the ai_ask tool call.
func (h *Handlers) HandleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AskRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Ask(ctx, h.summarizer, ops.AskInput{Prompt: input.Prompt}))
}

// HandleAskAbout handles the snippet_ask_about tool call.
func (h *Handlers) HandleAskAbout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.AskAbout(ctx, h.store, h.summarizer, ops.AskAboutInput{ID: input.ID}))
}

// Result helpers

// respond turns an ops result into a tool result.
func respond(out any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// INTERNAL and STORAGE details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := errors.As(err); ok {
		msg := sErr.PublicMessage()
		// Keep any context wrapped around the SnipError.
		if prefix := strings.TrimSuffix(err.Error(), sErr.Error()); sErr.Public() && prefix != err.Error() && prefix != "" {
			msg = prefix + msg
		}
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
			"status":  sErr.Status,
		}
		if sErr.Public() && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
