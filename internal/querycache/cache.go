package querycache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	zlerrors "github.com/caffeinepub/zenlink-5/internal/errors"
	"github.com/caffeinepub/zenlink-5/internal/logging"
)

const (
	defaultMaxEntries = 256
	defaultStaleTime  = 30 * time.Second
)

// Fetcher retrieves the value for a cache key from the remote boundary.
type Fetcher func(ctx context.Context) (any, error)

// Result is the observable state of a cache entry.
type Result struct {
	Value     any
	Err       error
	UpdatedAt time.Time
	Fetched   bool // at least one fetch has settled for this key
	Stale     bool // entry was invalidated or has outlived the stale time
}

// Subscriber is notified whenever a key's entry settles or is mutated.
// Callbacks run synchronously under no cache lock; they must not call back
// into the cache's write API for the same key.
type Subscriber func(key string, res Result)

type entry struct {
	value     any
	err       error
	updatedAt time.Time
	fetched   bool
	stale     bool
}

// Config configures a Cache.
type Config struct {
	MaxEntries int
	StaleTime  time.Duration
	Logger     logging.Logger
	Metrics    *Metrics // optional
}

// Cache is a process-wide keyed read-through cache. All mutation goes through
// Read, Invalidate and SetOptimistic; no other component writes entries.
//
// Reads de-duplicate concurrent fetches per key and serve stale entries while
// revalidating in the background, so a view that was unmounted mid-fetch never
// crashes anything: the orphaned resolution settles into the cache and the
// next subscriber for the key sees it.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *entry]
	subs    map[string]map[uint64]Subscriber
	nextSub uint64

	group     singleflight.Group
	staleTime time.Duration
	logger    logging.Logger
	metrics   *Metrics
}

// New builds a cache. Zero config values fall back to defaults.
func New(cfg Config) (*Cache, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.StaleTime <= 0 {
		cfg.StaleTime = defaultStaleTime
	}
	entries, err := lru.New[string, *entry](cfg.MaxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{
		entries:   entries,
		subs:      make(map[string]map[uint64]Subscriber),
		staleTime: cfg.StaleTime,
		logger:    logging.OrNop(cfg.Logger),
		metrics:   cfg.Metrics,
	}, nil
}

// ReadOption adjusts a single Read call.
type ReadOption func(*readOptions)

type readOptions struct {
	staleTime time.Duration
	retry     zlerrors.RetryConfig
	retrySet  bool
}

// WithStaleTime overrides the cache-wide stale time for this read.
func WithStaleTime(d time.Duration) ReadOption {
	return func(o *readOptions) { o.staleTime = d }
}

// WithRetry sets the retry policy applied to the fetch.
func WithRetry(cfg zlerrors.RetryConfig) ReadOption {
	return func(o *readOptions) {
		o.retry = cfg
		o.retrySet = true
	}
}

// WithNoRetry disables automatic retries for this read. Profile reads use
// this: an absent profile is a valid, meaningful state distinct from an
// error, so failures must surface immediately.
func WithNoRetry() ReadOption {
	return WithRetry(zlerrors.NoRetry())
}

// Read returns the entry for key, fetching it when absent or stale.
//
//   - Fresh entry: returned without calling fetch.
//   - Fetch already in flight for key: attach to it, never duplicate the call.
//   - Stale-but-settled entry: returned immediately while a background
//     revalidation runs.
//   - Absent or error entry: fetch synchronously (options' retry policy
//     applies) and store the outcome, error included.
func (c *Cache) Read(ctx context.Context, key string, fetch Fetcher, opts ...ReadOption) Result {
	options := readOptions{staleTime: c.staleTime}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.retrySet {
		options.retry = zlerrors.DefaultRetryConfig()
	}

	c.mu.Lock()
	e, ok := c.entries.Get(key)
	if ok && e.fetched && e.err == nil {
		fresh := !e.stale && time.Since(e.updatedAt) < options.staleTime
		res := resultOf(e)
		c.mu.Unlock()
		if fresh {
			c.metrics.RecordHit(ctx, key)
			return res
		}
		// Serve stale, revalidate in the background.
		c.metrics.RecordStaleServe(ctx, key)
		go func() {
			ch := c.startFlight(ctx, key, fetch, options.retry)
			<-ch
		}()
		return res
	}
	c.mu.Unlock()

	c.metrics.RecordMiss(ctx, key)
	ch := c.startFlight(ctx, key, fetch, options.retry)
	select {
	case <-ch:
		c.mu.Lock()
		e, ok := c.entries.Get(key)
		var res Result
		if ok {
			res = resultOf(e)
		}
		c.mu.Unlock()
		return res
	case <-ctx.Done():
		// The flight keeps running detached; its resolution settles into the
		// cache for the next caller.
		return Result{Err: ctx.Err()}
	}
}

// startFlight begins (or joins) the single fetch for key. The returned
// channel closes once the flight has stored its outcome and notified
// subscribers.
func (c *Cache) startFlight(ctx context.Context, key string, fetch Fetcher, retry zlerrors.RetryConfig) <-chan struct{} {
	done := make(chan struct{})
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		start := time.Now()
		value, err := zlerrors.RetryWithResult(flightCtx, retry, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
		c.metrics.RecordFetch(flightCtx, key, time.Since(start), err)
		c.store(key, value, err)
		return value, err
	})
	go func() {
		res := <-ch
		if res.Shared {
			c.metrics.RecordDedup(flightCtx, key)
		}
		close(done)
	}()
	return done
}

func (c *Cache) store(key string, value any, err error) {
	c.mu.Lock()
	e, ok := c.entries.Get(key)
	if !ok {
		e = &entry{}
		c.entries.Add(key, e)
	}
	e.updatedAt = time.Now()
	e.fetched = true
	e.err = err
	if err == nil {
		e.value = value
		e.stale = false
	} else {
		// Keep the last good value for display; the error rides alongside.
		e.stale = true
	}
	res := resultOf(e)
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("fetch for %q failed: %v", key, err)
	}
	c.notify(key, res)
}

// Invalidate marks an entry stale so the next Read issues a new fetch.
// Every mutating operation calls this for the keys whose displayed data it
// touched.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	e, ok := c.entries.Get(key)
	if ok {
		e.stale = true
	}
	var res Result
	if ok {
		res = resultOf(e)
	} else {
		res = Result{Stale: true}
	}
	c.mu.Unlock()

	c.metrics.RecordInvalidation(context.Background(), key)
	c.notify(key, res)
}

// SetOptimistic overwrites an entry before the network confirms it, so the
// next Read returns the value immediately. Callers must follow up with
// Invalidate(key) so a later read reconciles with the authoritative value;
// a failed write never corrupts the entry permanently because that
// invalidation forces a refetch.
func (c *Cache) SetOptimistic(key string, value any) {
	c.mu.Lock()
	e, ok := c.entries.Get(key)
	if !ok {
		e = &entry{}
		c.entries.Add(key, e)
	}
	e.value = value
	e.err = nil
	e.fetched = true
	e.stale = false
	e.updatedAt = time.Now()
	res := resultOf(e)
	c.mu.Unlock()

	c.metrics.RecordOptimisticSet(context.Background(), key)
	c.notify(key, res)
}

// Peek returns the current entry state without triggering any fetch.
func (c *Cache) Peek(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Peek(key)
	if !ok {
		return Result{}, false
	}
	return resultOf(e), true
}

// Subscribe registers a callback for key and returns its unsubscribe func.
func (c *Cache) Subscribe(key string, fn Subscriber) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.subs[key] == nil {
		c.subs[key] = make(map[uint64]Subscriber)
	}
	c.subs[key][id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		if subs, ok := c.subs[key]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(c.subs, key)
			}
		}
		c.mu.Unlock()
	}
}

func (c *Cache) notify(key string, res Result) {
	c.mu.Lock()
	subs := make([]Subscriber, 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(key, res)
	}
}

func resultOf(e *entry) Result {
	return Result{
		Value:     e.value,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Fetched:   e.fetched,
		Stale:     e.stale,
	}
}

// ReadAs is a typed wrapper over Cache.Read.
func ReadAs[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error), opts ...ReadOption) (T, Result) {
	res := c.Read(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}, opts...)
	var zero T
	if res.Value == nil {
		return zero, res
	}
	typed, ok := res.Value.(T)
	if !ok {
		return zero, res
	}
	return typed, res
}
