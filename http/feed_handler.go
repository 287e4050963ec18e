package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/photofeed/internal/feed"
)

type FeedDeps struct {
	Feed *feed.Service
}

func RegisterFeed(r chi.Router, d FeedDeps) {
	// Snapshot of the observable feed state; compressed, it can carry a few
	// hundred photo records.
	r.Get("/feed", func(w http.ResponseWriter, req *http.Request) {
		snap := d.Feed.Snapshot()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		body := brotli.HTTPCompressor(w, req)
		defer body.Close()
		_ = json.NewEncoder(body).Encode(snap)
	})

	r.Post("/feed/refresh", func(w http.ResponseWriter, req *http.Request) {
		d.Feed.LoadNew(req.Context())
		render.JSON(w, req, d.Feed.Snapshot())
	})

	r.Post("/feed/next", func(w http.ResponseWriter, req *http.Request) {
		d.Feed.LoadNextPage(req.Context())
		render.JSON(w, req, d.Feed.Snapshot())
	})

	r.Post("/feed/retry", func(w http.ResponseWriter, req *http.Request) {
		d.Feed.Retry(req.Context())
		render.JSON(w, req, d.Feed.Snapshot())
	})

	r.Put("/feed/search", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		d.Feed.UpdateSearch(body.Query)
		render.JSON(w, req, map[string]any{"ok": true, "query": body.Query})
	})

	r.Put("/feed/columns", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Count int `json:"count"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if body.Count < 1 {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_count", "detail": "count must be >= 1"})
			return
		}
		d.Feed.ChangeColumnCount(body.Count)
		render.JSON(w, req, d.Feed.Snapshot())
	})
}
