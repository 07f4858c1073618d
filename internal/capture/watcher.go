package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
)

const defaultWatchInterval = 500 * time.Millisecond

// ClipboardReader reads the current clipboard text.
type ClipboardReader interface {
	ReadAll() (string, error)
}

// ClipboardWriter replaces the clipboard text.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

// ReadAll reads the OS clipboard.
func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// WriteAll writes the OS clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Unsupported reports whether the OS clipboard has no usable backend.
func (SystemClipboard) Unsupported() bool {
	return clipboard.Unsupported
}

// Capturer is the capture entry point the watcher drives. *Trigger
// satisfies it.
type Capturer interface {
	Capture(ctx context.Context, text string) (Result, error)
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Interval time.Duration
	Logger   *slog.Logger
	// CaptureInitial captures the clipboard content present at start.
	// By default it only becomes the baseline.
	CaptureInitial bool
}

// Watcher polls the clipboard and captures each new distinct value.
type Watcher struct {
	reader  ClipboardReader
	capture Capturer
	opts    WatcherOptions

	last    string
	primed  bool
	readErr bool
}

// NewWatcher creates a watcher.
func NewWatcher(reader ClipboardReader, capture Capturer, opts WatcherOptions) *Watcher {
	if reader == nil {
		reader = SystemClipboard{}
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultWatchInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{reader: reader, capture: capture, opts: opts}
}

// Run polls until ctx is done. Capture errors are logged and polling
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	w.opts.Logger.Info("watch: polling clipboard", "interval", w.opts.Interval)
	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	text, err := w.reader.ReadAll()
	if err != nil {
		// Log the first failure of a streak only.
		if !w.readErr {
			w.opts.Logger.Warn("watch: clipboard read failed", "error", err)
		}
		w.readErr = true
		return
	}
	w.readErr = false

	if w.primed && text == w.last {
		return
	}
	first := !w.primed
	w.last, w.primed = text, true
	if first && !w.opts.CaptureInitial {
		return
	}

	res, err := w.capture.Capture(ctx, text)
	if err != nil {
		w.opts.Logger.Error("watch: capture failed", "error", err)
		return
	}
	if res.Created {
		w.opts.Logger.Debug("watch: captured", "id", res.ID, "language", res.Language)
	}
}
