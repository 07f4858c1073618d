package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// sequenceClipboard returns the queued values in order, then repeats the
// last one. done is closed once every value has been read.
type sequenceClipboard struct {
	mu     sync.Mutex
	values []string
	errs   []error
	i      int
	done   chan struct{}
}

func newSequenceClipboard(values []string, errs []error) *sequenceClipboard {
	return &sequenceClipboard{values: values, errs: errs, done: make(chan struct{})}
}

func (c *sequenceClipboard) ReadAll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.i >= len(c.values) {
		return c.values[len(c.values)-1], nil
	}
	v, err := c.values[c.i], error(nil)
	if c.i < len(c.errs) {
		err = c.errs[c.i]
	}
	c.i++
	if c.i == len(c.values) {
		close(c.done)
	}
	return v, err
}

type recordingCapturer struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recordingCapturer) Capture(_ context.Context, text string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return Result{ID: int64(len(r.texts)), Created: true}, r.err
}

func (r *recordingCapturer) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func runWatcher(t *testing.T, clip *sequenceClipboard, rec *recordingCapturer, opts WatcherOptions) {
	t.Helper()
	opts.Interval = time.Millisecond
	opts.Logger = quietLogger()
	w := NewWatcher(clip, rec, opts)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	select {
	case <-clip.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not consume clipboard sequence")
	}
	time.Sleep(5 * time.Millisecond)
	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWatcher_CapturesEachDistinctValue(t *testing.T) {
	clip := newSequenceClipboard([]string{"initial", "initial", "a", "a", "b", "a"}, nil)
	rec := &recordingCapturer{}
	runWatcher(t, clip, rec, WatcherOptions{})

	if got, want := rec.got(), []string{"a", "b", "a"}; !equal(got, want) {
		t.Errorf("captured %q, want %q", got, want)
	}
}

func TestWatcher_CaptureInitial(t *testing.T) {
	clip := newSequenceClipboard([]string{"initial", "next"}, nil)
	rec := &recordingCapturer{}
	runWatcher(t, clip, rec, WatcherOptions{CaptureInitial: true})

	if got, want := rec.got(), []string{"initial", "next"}; !equal(got, want) {
		t.Errorf("captured %q, want %q", got, want)
	}
}

func TestWatcher_ReadErrorsSkipped(t *testing.T) {
	boom := errors.New("no clipboard")
	clip := newSequenceClipboard(
		[]string{"", "", "x", "x"},
		[]error{nil, boom, boom, nil},
	)
	rec := &recordingCapturer{}
	runWatcher(t, clip, rec, WatcherOptions{})

	if got, want := rec.got(), []string{"x"}; !equal(got, want) {
		t.Errorf("captured %q, want %q", got, want)
	}
}

func TestWatcher_CaptureErrorKeepsPolling(t *testing.T) {
	clip := newSequenceClipboard([]string{"start", "one", "two"}, nil)
	rec := &recordingCapturer{err: errors.New("storage fault")}
	runWatcher(t, clip, rec, WatcherOptions{})

	if got, want := rec.got(), []string{"one", "two"}; !equal(got, want) {
		t.Errorf("captured %q, want %q", got, want)
	}
}
