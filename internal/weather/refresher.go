package weather

import (
	"context"
	"log"
	"sync"
	"time"
)

type cacheEntry struct {
	current   Current
	fetchedAt time.Time
}

// Refresher serves current conditions from a cache and refreshes stale
// entries on a fixed interval, independent of task activity. Queries that
// were never requested are fetched on demand.
type Refresher struct {
	client   *Client
	interval time.Duration
	logger   *log.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry

	stop chan struct{}
	once sync.Once
}

func NewRefresher(client *Client, interval time.Duration, logger *log.Logger) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Refresher{
		client:   client,
		interval: interval,
		logger:   logger,
		entries:  map[string]cacheEntry{},
		stop:     make(chan struct{}),
	}
}

// Start launches the background refresh loop. Call Stop on shutdown.
func (r *Refresher) Start() {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.refreshAll()
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *Refresher) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Refresher) refreshAll() {
	r.mu.RLock()
	queries := make([]string, 0, len(r.entries))
	for q := range r.entries {
		queries = append(queries, q)
	}
	r.mu.RUnlock()

	for _, q := range queries {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		cur, err := r.client.CurrentConditions(ctx, q)
		cancel()
		if err != nil {
			r.logger.Printf("[weather] refresh %q: %v", q, err)
			continue
		}
		r.put(q, cur)
	}
}

func (r *Refresher) put(query string, cur Current) {
	r.mu.Lock()
	r.entries[query] = cacheEntry{current: cur, fetchedAt: time.Now()}
	r.mu.Unlock()
}

// Current returns cached conditions for the query, fetching on a cache miss.
// A stale entry is served as-is; the background loop keeps entries fresh.
func (r *Refresher) Current(ctx context.Context, query string) (Current, error) {
	r.mu.RLock()
	entry, ok := r.entries[query]
	r.mu.RUnlock()
	if ok {
		return entry.current, nil
	}

	cur, err := r.client.CurrentConditions(ctx, query)
	if err != nil {
		return Current{}, err
	}
	r.put(query, cur)
	return cur, nil
}
