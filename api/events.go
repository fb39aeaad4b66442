/*
events.go - Server-sent events stream for room screens

PURPOSE:
  A room screen keeps two things fresh: the room data (after any
  mutation) and the open-period progress bar (as wall-clock time passes).
  This stream serves both:

  - "change" events fire whenever the room is mutated, via the service's
    watch hub. The event carries no payload; clients refetch the view.
  - "tick" events fire every 30 seconds so progress bars advance even
    when nothing changes.

  The handler holds the connection open until the client disconnects.
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// windowTickInterval drives the progress-bar refresh cadence.
const windowTickInterval = 30 * time.Second

// StreamEvents serves the SSE stream for one room.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	roomID := chi.URLParam(r, "id")
	if _, err := h.Service.GetRoom(r.Context(), roomID); err != nil {
		h.writeServiceError(w, "Failed to open event stream", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	// Subscribe before the headers go out: once the client sees the
	// response, mutations are guaranteed to produce a change event.
	changes, cancel := h.Service.Watch(roomID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			writeEvent(w, flusher, "change", h.now().UTC())
		case <-ticker.C:
			writeEvent(w, flusher, "tick", h.now().UTC())
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, name string, at time.Time) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, at.Format(time.RFC3339))
	flusher.Flush()
}
