package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultSearchThreshold      = 0.5
	DefaultAIModel              = "gemini-1.5-flash"
	DefaultEnrichWorkers        = 2
	DefaultEnrichQueueSize      = 64
	DefaultEnrichTimeoutSeconds = 60
	DefaultWatchIntervalMS      = 500
	DefaultHTTPBind             = "127.0.0.1"
	DefaultHTTPPort             = 8765
)

// DirName is the base directory name under the user's home.
const DirName = ".intelliclip"

// Environment variables read by ApplyEnv.
const (
	EnvHome            = "INTELLICLIP_HOME"
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvModel           = "INTELLICLIP_MODEL"
	EnvSearchThreshold = "INTELLICLIP_SEARCH_THRESHOLD"
	EnvLogLevel        = "LOG_LEVEL"
)

// Config holds application configuration.
type Config struct {
	// SearchThreshold controls fuzzy match looseness: 0 accepts only exact
	// substring hits, 1 accepts anything. Nil means DefaultSearchThreshold.
	SearchThreshold *float64 `json:"search_threshold,omitempty"`

	// AIModel is the summarization model name.
	AIModel string `json:"ai_model,omitempty"`

	// AIAPIKey enables enrichment. Prefer GEMINI_API_KEY in the environment
	// or a .env file over storing the key here.
	AIAPIKey string `json:"ai_api_key,omitempty"`

	// EnrichWorkers is the number of concurrent enrichment goroutines.
	EnrichWorkers int `json:"enrich_workers,omitempty"`

	// EnrichQueueSize bounds the number of pending enrichment jobs.
	EnrichQueueSize int `json:"enrich_queue_size,omitempty"`

	// EnrichTimeoutSeconds bounds a single summarization call.
	EnrichTimeoutSeconds int `json:"enrich_timeout_seconds,omitempty"`

	// WatchIntervalMS is the clipboard polling interval for `watch`.
	WatchIntervalMS int `json:"watch_interval_ms,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.intelliclip/exports require either being in this list or
	// AllowUnsafePaths=true. Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// HTTPBind and HTTPPort configure `serve`.
	HTTPBind string `json:"http_bind,omitempty"`
	HTTPPort int    `json:"http_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	threshold := DefaultSearchThreshold
	return &Config{
		SearchThreshold:      &threshold,
		AIModel:              DefaultAIModel,
		EnrichWorkers:        DefaultEnrichWorkers,
		EnrichQueueSize:      DefaultEnrichQueueSize,
		EnrichTimeoutSeconds: DefaultEnrichTimeoutSeconds,
		WatchIntervalMS:      DefaultWatchIntervalMS,
		LogLevel:             "info",
		HTTPBind:             DefaultHTTPBind,
		HTTPPort:             DefaultHTTPPort,
	}
}

// Threshold returns the effective search threshold.
func (c *Config) Threshold() float64 {
	if c == nil || c.SearchThreshold == nil {
		return DefaultSearchThreshold
	}
	return *c.SearchThreshold
}

// AIEnabled reports whether an enrichment provider can be constructed.
func (c *Config) AIEnabled() bool {
	return c != nil && strings.TrimSpace(c.AIAPIKey) != ""
}

// Validate checks that configured values are within range.
func (c *Config) Validate() error {
	if t := c.Threshold(); t < 0 || t > 1 {
		return fmt.Errorf("search_threshold must be between 0 and 1, got %v", t)
	}
	if c.EnrichWorkers < 0 {
		return fmt.Errorf("enrich_workers must be non-negative")
	}
	if c.EnrichQueueSize < 0 {
		return fmt.Errorf("enrich_queue_size must be non-negative")
	}
	if c.EnrichTimeoutSeconds < 0 {
		return fmt.Errorf("enrich_timeout_seconds must be non-negative")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port out of range: %d", c.HTTPPort)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// BaseDir returns $INTELLICLIP_HOME if set, otherwise ~/.intelliclip.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// ExportsDir returns the default import/export directory under baseDir.
func ExportsDir(baseDir string) string {
	return filepath.Join(baseDir, "exports")
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.intelliclip.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadDotEnv loads KEY=value pairs from baseDir/.env and ./.env into the
// process environment. Variables already set are never overridden and
// missing files are skipped.
func LoadDotEnv(baseDir string) []string {
	var loaded []string
	for _, path := range []string{filepath.Join(baseDir, ".env"), ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("config: .env file not loaded", "path", path, "error", err)
			continue
		}
		loaded = append(loaded, path)
	}
	return loaded
}

// ApplyEnv overlays environment variables onto cfg. getenv is usually
// os.Getenv; tests pass a map lookup.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if key := strings.TrimSpace(getenv(EnvAPIKey)); key != "" {
		cfg.AIAPIKey = key
	}
	if model := strings.TrimSpace(getenv(EnvModel)); model != "" {
		cfg.AIModel = model
	}
	if raw := strings.TrimSpace(getenv(EnvSearchThreshold)); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSearchThreshold, err)
		}
		cfg.SearchThreshold = &threshold
	}
	if level := strings.TrimSpace(getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = level
	}
	return nil
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SearchThreshold = overlay.SearchThreshold
	if result.SearchThreshold == nil {
		result.SearchThreshold = base.SearchThreshold
	}

	result.AIModel = firstString(overlay.AIModel, base.AIModel)
	result.AIAPIKey = firstString(overlay.AIAPIKey, base.AIAPIKey)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.HTTPBind = firstString(overlay.HTTPBind, base.HTTPBind)

	result.EnrichWorkers = firstInt(overlay.EnrichWorkers, base.EnrichWorkers)
	result.EnrichQueueSize = firstInt(overlay.EnrichQueueSize, base.EnrichQueueSize)
	result.EnrichTimeoutSeconds = firstInt(overlay.EnrichTimeoutSeconds, base.EnrichTimeoutSeconds)
	result.WatchIntervalMS = firstInt(overlay.WatchIntervalMS, base.WatchIntervalMS)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.HTTPPort = firstInt(overlay.HTTPPort, base.HTTPPort)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
