package warm

import (
    "context"
    "strconv"
    "sync"
    "time"

    "github.com/yourorg/photofeed/internal/canon"
)

// Job is one search page to pre-fetch into the page cache.
type Job struct {
    Query string
    Page  int
}

func (j Job) key() string { return canon.Query(j.Query) + "|" + strconv.Itoa(j.Page) }

// Warmer fans jobs out to a small worker pool, deduplicating in-flight pages
// and dropping work when saturated.
type Warmer struct {
    ch    chan Job
    inFly sync.Map // job key -> struct{}
    wg    sync.WaitGroup
    Do    func(ctx context.Context, j Job)
}

func New(capacity int, workerCount int, do func(ctx context.Context, j Job)) *Warmer {
    if capacity <= 0 { capacity = 256 }
    if workerCount <= 0 { workerCount = 2 }
    w := &Warmer{ch: make(chan Job, capacity), Do: do}
    w.wg.Add(workerCount)
    for i := 0; i < workerCount; i++ {
        go w.worker()
    }
    return w
}

func (w *Warmer) Enqueue(j Job) {
    if _, exists := w.inFly.LoadOrStore(j.key(), struct{}{}); exists {
        return
    }
    select {
    case w.ch <- j:
    default:
        // drop if saturated
        w.inFly.Delete(j.key())
    }
}

// Close stops accepting jobs and waits for the workers to drain the queue.
func (w *Warmer) Close() {
    close(w.ch)
    w.wg.Wait()
}

func (w *Warmer) worker() {
    defer w.wg.Done()
    for j := range w.ch {
        ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
        func() {
            defer func() {
                w.inFly.Delete(j.key())
                cancel()
            }()
            if w.Do != nil { w.Do(ctx, j) }
        }()
    }
}
