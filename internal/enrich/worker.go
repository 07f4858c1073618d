package enrich

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrorPrefix starts every stored summary that records a failed generation.
const ErrorPrefix = "Error generating summary: "

var (
	// ErrDisabled is returned by Submit when no summarizer is configured.
	ErrDisabled = errors.New("enrich: summarizer not configured")
	// ErrWorkerClosed is returned by Submit after Close.
	ErrWorkerClosed = errors.New("enrich: worker closed")
	// ErrQueueFull is returned when the job queue has no free slot.
	ErrQueueFull = errors.New("enrich: queue full")
	// ErrAlreadyQueued is returned when the snippet already has a pending or
	// running job.
	ErrAlreadyQueued = errors.New("enrich: snippet already queued")
)

const (
	defaultWorkers   = 2
	defaultQueueSize = 64
	defaultTimeout   = 60 * time.Second
)

// SummaryWriter persists an enrichment outcome. *store.Store satisfies it.
type SummaryWriter interface {
	ResolveSummary(ctx context.Context, id int64, summary *string) error
}

// Job is one enrichment request for a stored snippet.
type Job struct {
	ID       int64
	Content  string
	Language string
}

// WorkerOptions configures a Worker. Zero values pick defaults.
type WorkerOptions struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Logger    *slog.Logger
	// Prompt builds the prompt for a job. Defaults to SummaryPrompt.
	Prompt func(content, language string) string
}

// Stats is a snapshot of worker counters.
type Stats struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Pending   int   `json:"pending"`
}

type task struct {
	Job
	taskID ulid.ULID
}

// Worker runs enrichment jobs on a fixed goroutine pool. Jobs are
// independent; their write-backs are not ordered relative to each other.
type Worker struct {
	writer     SummaryWriter
	summarizer Summarizer
	timeout    time.Duration
	prompt     func(content, language string) string
	logger     *slog.Logger

	queue chan task
	wg    sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	pending map[int64]ulid.ULID
	entropy io.Reader

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewWorker starts a worker pool. A nil summarizer yields a disabled
// worker whose Submit always returns ErrDisabled.
func NewWorker(writer SummaryWriter, summarizer Summarizer, opts WorkerOptions) *Worker {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Prompt == nil {
		opts.Prompt = SummaryPrompt
	}

	w := &Worker{
		writer:     writer,
		summarizer: summarizer,
		timeout:    opts.Timeout,
		prompt:     opts.Prompt,
		logger:     opts.Logger,
		queue:      make(chan task, opts.QueueSize),
		pending:    make(map[int64]ulid.ULID),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if summarizer == nil {
		w.logger.Info("enrich: summarizer not configured, summaries disabled")
		return w
	}
	for i := 0; i < opts.Workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

// Enabled reports whether a summarizer is configured.
func (w *Worker) Enabled() bool {
	return w != nil && w.summarizer != nil
}

// Submit enqueues a job without blocking.
func (w *Worker) Submit(job Job) error {
	if !w.Enabled() {
		return ErrDisabled
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}
	if _, ok := w.pending[job.ID]; ok {
		return ErrAlreadyQueued
	}

	t := task{Job: job, taskID: ulid.MustNew(ulid.Timestamp(time.Now()), w.entropy)}
	select {
	case w.queue <- t:
	default:
		return ErrQueueFull
	}
	w.pending[job.ID] = t.taskID
	w.submitted.Add(1)
	w.logger.Debug("enrich: job queued", "task", t.taskID.String(), "id", job.ID)
	return nil
}

// Pending reports whether the snippet has a queued or running job.
func (w *Worker) Pending(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.pending[id]
	return ok
}

// Stats returns a snapshot of the counters.
func (w *Worker) Stats() Stats {
	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	return Stats{
		Submitted: w.submitted.Load(),
		Completed: w.completed.Load(),
		Failed:    w.failed.Load(),
		Pending:   pending,
	}
}

// Close stops intake and waits until queued and running jobs have written
// their outcome, or ctx is done.
func (w *Worker) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	defer w.wg.Done()
	for t := range w.queue {
		w.process(t)
	}
}

func (w *Worker) process(t task) {
	defer func() {
		w.mu.Lock()
		delete(w.pending, t.ID)
		w.mu.Unlock()
	}()

	log := w.logger.With("task", t.taskID.String(), "id", t.ID)
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	summary, err := w.generate(ctx, t)
	if err != nil {
		w.failed.Add(1)
		log.Warn("enrich: generation failed", "error", err, "elapsed", time.Since(start))
		summary = FailureSummary(err)
	} else {
		w.completed.Add(1)
		log.Debug("enrich: summary generated", "elapsed", time.Since(start))
	}

	if err := w.writer.ResolveSummary(context.WithoutCancel(ctx), t.ID, &summary); err != nil {
		log.Error("enrich: write-back failed", "error", err)
	}
}

// generate calls the summarizer, turning a panic into an error.
func (w *Worker) generate(ctx context.Context, t task) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("summarizer panic: %v", r)
		}
	}()
	return w.summarizer.Generate(ctx, w.prompt(t.Content, t.Language))
}

// FailureSummary is the stored summary for a failed generation.
func FailureSummary(err error) string {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "unknown AI error"
	}
	return ErrorPrefix + msg
}
