package mcp

import "github.com/mark3labs/mcp-go/mcp"

var idParam = mcp.WithNumber("id",
	mcp.Required(),
	mcp.Description("Snippet id"),
)

var captureToolDef = mcp.NewTool("snippet_capture",
	mcp.WithDescription("Store text as a new snippet. The language is detected automatically and a summary is generated in the background when AI is configured. Blank text is ignored (created=false)."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Text to capture")),
)

var listToolDef = mcp.NewTool("snippet_list",
	mcp.WithDescription("List snippets, newest first."),
	mcp.WithString("language", mcp.Description("Only snippets with this language")),
	mcp.WithString("tag", mcp.Description("Only snippets carrying this tag (case-insensitive)")),
	mcp.WithNumber("limit", mcp.Description("Maximum items to return (0 = all, max 1000)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var searchToolDef = mcp.NewTool("snippet_search",
	mcp.WithDescription("Fuzzy search over content, language, tags and summary. Best matches first; an empty query lists everything."),
	mcp.WithString("query", mcp.Description("Search text")),
	mcp.WithNumber("threshold", mcp.Description("Match looseness between 0 (exact substrings only) and 1 (anything); defaults to the configured threshold")),
	mcp.WithNumber("limit", mcp.Description("Maximum items to return (0 = all, max 1000)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var getToolDef = mcp.NewTool("snippet_get",
	mcp.WithDescription("Fetch one snippet by id."),
	idParam,
)

var deleteToolDef = mcp.NewTool("snippet_delete",
	mcp.WithDescription("Delete a snippet permanently. A missing id succeeds with deleted=false."),
	idParam,
)

var updateContentToolDef = mcp.NewTool("snippet_update_content",
	mcp.WithDescription("Replace a snippet's content. Blank content is rejected."),
	idParam,
	mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
)

var updateTagsToolDef = mcp.NewTool("snippet_update_tags",
	mcp.WithDescription("Replace a snippet's tags. Tags are comma-separated; they are trimmed, deduplicated and sorted. An empty string clears them."),
	idParam,
	mcp.WithString("tags", mcp.Description("Comma-separated tags")),
)

var updateLanguageToolDef = mcp.NewTool("snippet_update_language",
	mcp.WithDescription("Correct a snippet's language. An empty string clears it."),
	idParam,
	mcp.WithString("language", mcp.Description("Language name, e.g. python")),
)

var updateSummaryToolDef = mcp.NewTool("snippet_update_summary",
	mcp.WithDescription("Replace a snippet's summary. Omit the summary to clear it."),
	idParam,
	mcp.WithString("summary", mcp.Description("Summary text (markdown)")),
)

var editToolDef = mcp.NewTool("snippet_edit",
	mcp.WithDescription("Edit content and tags together. Fields equal to the stored values are skipped; changed=false means nothing was written."),
	idParam,
	mcp.WithString("content", mcp.Description("New content")),
	mcp.WithString("tags", mcp.Description("Comma-separated tags")),
)

var exportToolDef = mcp.NewTool("snippet_export",
	mcp.WithDescription("Export every snippet to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination .jsonl file; defaults to the exports directory")),
)

var importToolDef = mcp.NewTool("snippet_import",
	mcp.WithDescription("Import snippets from a JSONL export. Records get fresh ids."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl file")),
	mcp.WithString("mode",
		mcp.Description("error (default): abort on any invalid line; skip: import valid lines only"),
		mcp.Enum("error", "skip"),
	),
)

var askToolDef = mcp.NewTool("ai_ask",
	mcp.WithDescription("Send a free-form prompt to the configured AI model."),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("Prompt text")),
)

var askAboutToolDef = mcp.NewTool("snippet_ask_about",
	mcp.WithDescription("Ask the AI model to explain a stored snippet."),
	idParam,
)
