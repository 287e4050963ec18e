// cachewarm pre-fills the Redis page cache for a set of search queries so
// the first admin pageload after a deploy doesn't burn interactive quota.
//
//	WARM_QUERIES="nature, architecture" WARM_PAGES=2 cachewarm
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/yourorg/photofeed/internal/env"
	"github.com/yourorg/photofeed/internal/redisx"
	"github.com/yourorg/photofeed/internal/warm"
	"github.com/yourorg/photofeed/unsplash"
)

func main() {
	accessKey := env.Must("UNSPLASH_ACCESS_KEY")
	addr := env.Must("REDIS_ADDR")

	queries := splitList(os.Getenv("WARM_QUERIES"))
	if len(queries) == 0 {
		log.Fatal("WARM_QUERIES must be provided")
	}
	pages := env.GetInt("WARM_PAGES", 2)
	workers := env.GetInt("WARM_WORKERS", 2)
	ttl := time.Duration(env.GetInt("WARM_TTL_SECONDS", 86400)) * time.Second

	rdb := redisx.New(addr, env.Get("REDIS_PASSWORD", ""), env.GetInt("REDIS_DB", 0))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("redis ping error: %v", err)
	}
	cancel()

	// Another warm run may still be going; don't double-spend quota.
	if ok, err := rdb.SetNX(context.Background(), "unsplash:warm:lock", "1", 10*time.Minute); err == nil && !ok {
		log.Fatal("another cachewarm run holds the lock; aborting")
	}

	client := unsplash.NewClient(accessKey, unsplash.WithCache(rdb, ttl))

	w := warm.New(len(queries)*pages, workers, func(ctx context.Context, j warm.Job) {
		if _, err := client.SearchPhotos(ctx, j.Query, j.Page); err != nil {
			log.Printf("[WARN] warm %q page %d: %v", j.Query, j.Page, err)
			return
		}
		log.Printf("[INFO] warmed %q page %d", j.Query, j.Page)
	})
	for _, q := range queries {
		for p := 1; p <= pages; p++ {
			w.Enqueue(warm.Job{Query: q, Page: p})
		}
	}
	w.Close()
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t':
			return true
		default:
			return false
		}
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
