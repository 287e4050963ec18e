package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/yourorg/photofeed/internal/env"
	"github.com/yourorg/photofeed/internal/events"
	"github.com/yourorg/photofeed/internal/feed"
	"github.com/yourorg/photofeed/internal/redisx"
	"github.com/yourorg/photofeed/internal/store"
	"github.com/yourorg/photofeed/unsplash"
)

func main() {
	port := env.GetInt("PORT", 4005)
	accessKey := env.Get("UNSPLASH_ACCESS_KEY", "")
	colCount := feed.DefaultColumnCount
	perPage := unsplash.PerPage

	var st *store.Store
	if dsn := env.Get("DATABASE_URL", ""); dsn != "" {
		var err error
		st, err = store.Open(dsn)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("postgres ping error: %v", err)
		}
		if err := st.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("postgres migrate error: %v", err)
		}
		saved, err := st.LoadSettings(ctx)
		cancel()
		switch {
		case err == nil:
			// Saved settings win over env defaults.
			if saved.AccessKey != "" {
				accessKey = saved.AccessKey
			}
			if saved.ColumnCount > 0 {
				colCount = saved.ColumnCount
			}
			if saved.PerPage > 0 {
				perPage = saved.PerPage
			}
		case errors.Is(err, store.ErrNoSettings):
			log.Println("[INFO] no saved settings; using env configuration")
		default:
			log.Printf("[WARN] settings load failed: %v", err)
		}
	}
	if accessKey == "" {
		log.Fatal("no Unsplash access key: set UNSPLASH_ACCESS_KEY or save settings")
	}

	opts := []unsplash.Option{unsplash.WithPerPage(perPage)}
	if addr := env.Get("REDIS_ADDR", ""); addr != "" {
		rdb := redisx.New(addr, env.Get("REDIS_PASSWORD", ""), env.GetInt("REDIS_DB", 0))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx)
		cancel()
		if err != nil {
			log.Printf("[WARN] redis unavailable at %s: %v (page cache disabled)", addr, err)
		} else {
			ttl := time.Duration(env.GetInt("PAGE_CACHE_TTL_SECONDS", 86400)) * time.Second
			opts = append(opts, unsplash.WithCache(rdb, ttl))
		}
	}

	client := unsplash.NewClient(accessKey, opts...)
	bus := events.NewBus()
	svc := feed.New(client, bus, feed.Config{ColumnCount: colCount})

	router := BuildRouter(client, svc, bus, st)
	log.Printf("photofeed listening on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatal(err)
	}
}
