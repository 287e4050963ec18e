package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/photofeed/internal/events"
)

// RegisterWatch exposes the feed's observable fields as a server-sent event
// stream: one snapshot on connect, then one per change signal. Intermediate
// states may be coalesced for slow clients.
func RegisterWatch(r chi.Router, d FeedDeps, bus *events.Bus) {
	r.Get("/feed/watch", func(w http.ResponseWriter, req *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "streaming_unsupported"})
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch, cancel := bus.Subscribe()
		defer cancel()

		send := func() {
			b, err := json.Marshal(d.Feed.Snapshot())
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", b)
			fl.Flush()
		}
		send()
		for {
			select {
			case <-req.Context().Done():
				return
			case <-ch:
				send()
			}
		}
	})
}
