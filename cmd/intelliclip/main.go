package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hpungsan/intelliclip/internal/capture"
	"github.com/hpungsan/intelliclip/internal/classify"
	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/db"
	"github.com/hpungsan/intelliclip/internal/enrich"
	"github.com/hpungsan/intelliclip/internal/mcp"
	"github.com/hpungsan/intelliclip/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// drainTimeout bounds how long exit waits for queued summaries.
const drainTimeout = 90 * time.Second

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"capture": true, "watch": true, "list": true, "search": true,
	"get": true, "copy": true, "edit": true, "tag": true, "lang": true,
	"summary": true, "delete": true, "ask": true, "ask-about": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// clipboardIO reads and writes the clipboard.
type clipboardIO interface {
	capture.ClipboardReader
	capture.ClipboardWriter
}

// services holds the wired components shared by CLI, MCP and HTTP.
type services struct {
	cfg        *config.Config
	store      *store.Store
	summarizer enrich.Summarizer
	worker     *enrich.Worker
	broker     *capture.Broker
	trigger    *capture.Trigger
	clipboard  clipboardIO
	exportsDir string
	logger     *slog.Logger
}

func newServices(database *sql.DB, cfg *config.Config, baseDir string, summarizer enrich.Summarizer, logger *slog.Logger) *services {
	st := store.New(database, logger)
	worker := enrich.NewWorker(st, summarizer, enrich.WorkerOptions{
		Workers:   cfg.EnrichWorkers,
		QueueSize: cfg.EnrichQueueSize,
		Timeout:   time.Duration(cfg.EnrichTimeoutSeconds) * time.Second,
		Logger:    logger,
	})
	broker := capture.NewBroker()
	return &services{
		cfg:        cfg,
		store:      st,
		summarizer: summarizer,
		worker:     worker,
		broker:     broker,
		trigger:    capture.NewTrigger(st, classify.New(), worker, broker, logger),
		clipboard:  capture.SystemClipboard{},
		exportsDir: config.ExportsDir(baseDir),
		logger:     logger,
	}
}

// close waits for queued enrichment so summaries requested by this
// process are written before exit.
func (s *services) close() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := s.worker.Close(ctx); err != nil {
		s.logger.Warn("enrich: pending summaries abandoned", "error", err, "pending", s.worker.Stats().Pending)
	}
}

func (s *services) mcpDeps() mcp.Deps {
	return mcp.Deps{
		Store:      s.store,
		Config:     s.cfg,
		Trigger:    s.trigger,
		Summarizer: s.summarizer,
		ExportsDir: s.exportsDir,
		Logger:     s.logger,
	}
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  intelliclip

  Clipboard snippets: captured, classified, summarized, searchable

  Usage: intelliclip <command> [options]
         intelliclip --help

  MCP server mode requires piped input.`)
}

// newLogger builds the process logger. Output goes to stderr so stdout
// stays clean for JSON and MCP.
func newLogger(level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatal("could not determine base directory: %v", err)
	}

	config.LoadDotEnv(baseDir)
	cfg, err := config.Load(baseDir)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		fatal("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summarizer, err := enrich.FromConfig(ctx, cfg)
	if err != nil {
		logger.Warn("enrich: provider unavailable, summaries disabled", "error", err)
		summarizer = nil
	}

	svc := newServices(database, cfg, baseDir, summarizer, logger)
	defer svc.close()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(svc)
		if err := app.RunContext(ctx, os.Args); err != nil {
			svc.close()
			database.Close()
			fatal("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'intelliclip --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(svc.mcpDeps(), Version); err != nil {
		logger.Error("mcp: server stopped", "error", err)
		svc.close()
		database.Close()
		os.Exit(1)
	}
}
