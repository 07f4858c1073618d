// Package mcp exposes the snippet operations as MCP tools over stdio.
package mcp

import (
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"snippet_capture": {
		def:     captureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"snippet_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"snippet_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"snippet_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"snippet_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"snippet_update_content": {
		def:     updateContentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateContent },
	},
	"snippet_update_tags": {
		def:     updateTagsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateTags },
	},
	"snippet_update_language": {
		def:     updateLanguageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateLanguage },
	},
	"snippet_update_summary": {
		def:     updateSummaryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateSummary },
	},
	"snippet_edit": {
		def:     editToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEdit },
	},
	"snippet_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"snippet_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"snippet_ask_about": {
		def:     askAboutToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAskAbout },
	},
	"ai_ask": {
		def:     askToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAsk },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the snippet tools registered.
// Tools listed in cfg.DisabledTools are excluded; unknown names are logged.
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"intelliclip",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	var disabledNames []string
	if h.cfg != nil {
		disabledNames = h.cfg.DisabledTools
	}
	if unknown := ValidateDisabledTools(disabledNames); len(unknown) > 0 {
		h.logger.Warn("mcp: unknown tools in disabled_tools", "tools", unknown)
	}
	disabled := make(map[string]bool, len(disabledNames))
	for _, name := range disabledNames {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	h.logger.Debug("mcp: server ready", "tools", len(toolRegistry)-len(disabled))
	return s
}

// Run serves MCP over stdio until stdin closes.
func Run(deps Deps, version string) error {
	s := NewServer(deps, version)
	return server.ServeStdio(s)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
