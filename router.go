package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/photofeed/http"
	"github.com/yourorg/photofeed/internal/events"
	"github.com/yourorg/photofeed/internal/feed"
	"github.com/yourorg/photofeed/internal/store"
	"github.com/yourorg/photofeed/unsplash"
)

func BuildRouter(client *unsplash.Client, svc *feed.Service, bus *events.Bus, st *store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect upstream quota
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })

	feedDeps := httpapi.FeedDeps{Feed: svc}
	httpapi.RegisterFeed(r, feedDeps)
	httpapi.RegisterWatch(r, feedDeps, bus)
	httpapi.RegisterSettings(r, httpapi.SettingsDeps{Client: client, Store: st, Feed: svc})

	return r
}
