package web

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hpungsan/intelliclip/internal/errors"
)

const keepAliveInterval = 15 * time.Second

// HandleEvents handles GET /api/events: a server-sent event stream with one
// "created" event per captured snippet.
func (h *handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || h.broker == nil {
		h.renderError(w, r, errors.NewInternal(stderrors.New("event stream unavailable")))
		return
	}

	events, cancel := h.broker.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: created\nid: %d\ndata: {\"id\":%d}\n\n", ev.ID, ev.ID)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
