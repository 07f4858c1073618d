// Package capture turns raw clipboard text into stored snippets.
package capture

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/hpungsan/intelliclip/internal/classify"
	"github.com/hpungsan/intelliclip/internal/enrich"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

// Enrichment outcomes reported in Result.
const (
	EnrichmentQueued   = "queued"
	EnrichmentDisabled = "disabled"
	EnrichmentSkipped  = "skipped"
)

// Creator persists a new snippet and records enrichment outcomes.
// *store.Store satisfies it.
type Creator interface {
	Create(ctx context.Context, content string, language, summary *string) (int64, error)
	ResolveSummary(ctx context.Context, id int64, summary *string) error
}

// Submitter accepts enrichment jobs. *enrich.Worker satisfies it.
type Submitter interface {
	Submit(job enrich.Job) error
}

// Result describes one capture.
type Result struct {
	ID         int64  `json:"id,omitempty"`
	Created    bool   `json:"created"`
	Language   string `json:"language,omitempty"`
	Enrichment string `json:"enrichment,omitempty"`
}

// Trigger runs captures one at a time.
type Trigger struct {
	store      Creator
	classifier classify.Classifier
	worker     Submitter
	broker     *Broker
	logger     *slog.Logger

	mu sync.Mutex
}

// NewTrigger wires a trigger. worker and broker may be nil.
func NewTrigger(store Creator, classifier classify.Classifier, worker Submitter, broker *Broker, logger *slog.Logger) *Trigger {
	if classifier == nil {
		classifier = classify.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{
		store:      store,
		classifier: classifier,
		worker:     worker,
		broker:     broker,
		logger:     logger,
	}
}

// Capture classifies and persists text, announces it, then queues its
// enrichment. Blank text is ignored. A persistence error is returned and
// nothing is announced or queued; enrichment problems never fail a capture.
func (t *Trigger) Capture(ctx context.Context, text string) (Result, error) {
	if snippet.IsBlank(text) {
		return Result{}, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	language := t.classify(text)
	var langPtr *string
	if language != "" {
		langPtr = &language
	}

	id, err := t.store.Create(ctx, text, langPtr, nil)
	if err != nil {
		return Result{}, err
	}

	t.broker.Publish(Event{ID: id})
	t.logger.Info("capture: snippet saved", "id", id, "language", language)

	return Result{
		ID:         id,
		Created:    true,
		Language:   language,
		Enrichment: t.enqueue(ctx, enrich.Job{ID: id, Content: text, Language: language}),
	}, nil
}

func (t *Trigger) classify(text string) (language string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("capture: classifier panicked", "panic", r)
			language = ""
		}
	}()
	return t.classifier.Classify(text)
}

// enqueue submits the enrichment job. A rejected submission is resolved
// right away with a failure summary so the snippet never stays unresolved.
func (t *Trigger) enqueue(ctx context.Context, job enrich.Job) string {
	if t.worker == nil {
		return EnrichmentDisabled
	}
	err := t.worker.Submit(job)
	switch {
	case err == nil:
		return EnrichmentQueued
	case stderrors.Is(err, enrich.ErrDisabled):
		t.logger.Info("capture: enrichment not configured, summary left empty", "id", job.ID)
		return EnrichmentDisabled
	default:
		t.logger.Warn("capture: enrichment not queued", "id", job.ID, "error", err)
		summary := enrich.FailureSummary(err)
		if err := t.store.ResolveSummary(context.WithoutCancel(ctx), job.ID, &summary); err != nil {
			t.logger.Error("capture: failure summary not stored", "id", job.ID, "error", err)
		}
		return EnrichmentSkipped
	}
}
