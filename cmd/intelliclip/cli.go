package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/intelliclip/internal/capture"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/ops"
	"github.com/hpungsan/intelliclip/internal/web"
)

// newCLIApp creates the CLI application with all commands. svc may be nil
// when only help or version output is needed.
func newCLIApp(svc *services) *cli.App {
	app := &cli.App{
		Name:    "intelliclip",
		Usage:   "Clipboard snippet store with language detection and AI summaries",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(svc),
			watchCmd(svc),
			listCmd(svc),
			searchCmd(svc),
			getCmd(svc),
			copyCmd(svc),
			editCmd(svc),
			tagCmd(svc),
			langCmd(svc),
			summaryCmd(svc),
			deleteCmd(svc),
			askCmd(svc),
			askAboutCmd(svc),
			exportCmd(svc),
			importCmd(svc),
			serveCmd(svc),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Store text as a new snippet (argument, or stdin when piped)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text, err := textArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Capture(c.Context, svc.trigger, ops.CaptureInput{Text: text})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Capture every clipboard change until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Usage: "Polling interval (default from config)"},
			&cli.BoolFlag{Name: "initial", Usage: "Also capture the clipboard content present at start"},
		},
		Action: func(c *cli.Context) error {
			if cb, ok := svc.clipboard.(capture.SystemClipboard); ok && cb.Unsupported() {
				return outputError(errors.NewInvalidRequest("no clipboard backend available (install xclip, xsel or wl-clipboard)"))
			}
			return newWatcher(svc, c).Run(c.Context)
		},
	}
}

func newWatcher(svc *services, c *cli.Context) *capture.Watcher {
	interval := c.Duration("interval")
	if interval <= 0 {
		interval = time.Duration(svc.cfg.WatchIntervalMS) * time.Millisecond
	}
	return capture.NewWatcher(svc.clipboard, svc.trigger, capture.WatcherOptions{
		Interval:       interval,
		Logger:         svc.logger,
		CaptureInitial: c.Bool("initial"),
	})
}

// listCmd creates the list command.
func listCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List snippets, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Filter by language"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum items (0 = all)"},
			&cli.IntFlag{Name: "offset", Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, svc.store, ops.ListInput{
				Language: c.String("language"),
				Tag:      c.String("tag"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Fuzzy search snippets",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "threshold", Usage: "Match looseness 0..1 (default from config)"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum items (0 = all)"},
			&cli.IntFlag{Name: "offset", Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Query:  strings.Join(c.Args().Slice(), " "),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}
			if c.IsSet("threshold") {
				threshold := c.Float64("threshold")
				input.Threshold = &threshold
			}
			output, err := ops.Search(c.Context, svc.store, svc.cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one snippet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Get(c.Context, svc.store, ops.GetInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// copyCmd creates the copy command.
func copyCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy a snippet's content back to the clipboard",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Get(c.Context, svc.store, ops.GetInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			if err := svc.clipboard.WriteAll(output.Content); err != nil {
				return outputError(errors.NewInternal(fmt.Errorf("write clipboard: %w", err)))
			}
			return outputJSON(map[string]any{"id": id, "copied": true})
		},
	}
}

// editCmd creates the edit command.
func editCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit content (--content or stdin) and tags (--tags) together",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "New content"},
			&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags"},
		},
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			input := ops.EditInput{ID: id}
			if c.IsSet("content") {
				content := c.String("content")
				input.Content = &content
			} else if stdinHasData() {
				content, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.Content = &content
			}
			if c.IsSet("tags") {
				tags := c.String("tags")
				input.Tags = &tags
			}
			output, err := ops.Edit(c.Context, svc.store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// tagCmd creates the tag command.
func tagCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "Replace a snippet's tags (omit tags to clear)",
		ArgsUsage: "<id> [tags]",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			tags := strings.Join(c.Args().Tail(), ",")
			output, err := ops.UpdateTags(c.Context, svc.store, ops.UpdateTagsInput{ID: id, Tags: tags})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// langCmd creates the lang command.
func langCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "lang",
		Usage:     "Set a snippet's language (omit to clear)",
		ArgsUsage: "<id> [language]",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.UpdateLanguage(c.Context, svc.store, ops.UpdateLanguageInput{ID: id, Language: c.Args().Get(1)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Replace a snippet's summary (argument or stdin; --clear removes it)",
		ArgsUsage: "<id> [summary]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "clear", Usage: "Remove the summary"},
		},
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			input := ops.UpdateSummaryInput{ID: id}
			if !c.Bool("clear") {
				var text string
				if c.NArg() > 1 {
					text = strings.Join(c.Args().Tail(), " ")
				} else if stdinHasData() {
					if text, err = readStdin(); err != nil {
						return outputError(errors.NewInternal(err))
					}
				}
				if text == "" {
					return outputError(errors.NewInvalidRequest("summary text is required (or pass --clear)"))
				}
				input.Summary = &text
			}
			output, err := ops.UpdateSummary(c.Context, svc.store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a snippet permanently",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Delete(c.Context, svc.store, ops.DeleteInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// askCmd creates the ask command.
func askCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a prompt to the AI model (argument, or stdin when piped)",
		ArgsUsage: "[prompt]",
		Action: func(c *cli.Context) error {
			prompt, err := textArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Ask(c.Context, svc.summarizer, ops.AskInput{Prompt: prompt})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// askAboutCmd creates the ask-about command.
func askAboutCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "ask-about",
		Usage:     "Ask the AI model to explain a stored snippet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.AskAbout(c.Context, svc.store, svc.summarizer, ops.AskAboutInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all snippets to JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.intelliclip/exports/intelliclip-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, svc.store, svc.cfg, svc.exportsDir, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import snippets from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Invalid lines: error|skip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			output, err := ops.Import(c.Context, svc.store, svc.cfg, svc.exportsDir, ops.ImportInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(svc *services) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
			&cli.BoolFlag{Name: "watch", Usage: "Also capture clipboard changes"},
		},
		Action: func(c *cli.Context) error {
			bind := c.String("bind")
			if bind == "" {
				bind = svc.cfg.HTTPBind
			}
			port := c.Int("port")
			if port == 0 {
				port = svc.cfg.HTTPPort
			}

			if c.Bool("watch") {
				w := newWatcher(svc, c)
				go func() {
					if err := w.Run(c.Context); err != nil {
						svc.logger.Error("capture: watcher stopped", "error", err)
					}
				}()
			}

			srv := web.NewServer(web.Deps{
				Store:      svc.store,
				Config:     svc.cfg,
				Trigger:    svc.trigger,
				Broker:     svc.broker,
				Worker:     svc.worker,
				Summarizer: svc.summarizer,
				Logger:     svc.logger,
				Version:    Version,
			}, bind, port)
			return web.Run(c.Context, srv, svc.logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// idArg parses the first positional argument as a snippet id.
func idArg(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid id: %q", c.Args().First()))
	}
	return id, nil
}

// textArg joins positional arguments, falling back to piped stdin.
func textArg(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if stdinHasData() {
		text, err := readStdin()
		if err != nil {
			return "", errors.NewInternal(err)
		}
		return text, nil
	}
	return "", errors.NewInvalidRequest("text must be given as an argument or piped via stdin")
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin. Captured text is kept verbatim.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
