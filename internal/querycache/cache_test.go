package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	zlerrors "github.com/caffeinepub/zenlink-5/internal/errors"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(Config{MaxEntries: 16, StaleTime: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestReadFetchesOnceWhileInFlight(t *testing.T) {
	c := newTestCache(t)

	var calls atomic.Int64
	gate := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return "value", nil
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]Result, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Read(context.Background(), "k", fetch, WithNoRetry())
		}(i)
	}

	waitFor(t, func() bool { return calls.Load() == 1 })
	close(gate)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("fetcher called %d times, want 1", calls.Load())
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("reader %d got error: %v", i, res.Err)
		}
		if res.Value != "value" {
			t.Fatalf("reader %d got %v", i, res.Value)
		}
	}
}

func TestFreshReadSkipsFetcher(t *testing.T) {
	c := newTestCache(t)

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "v1", nil
	}

	for i := 0; i < 5; i++ {
		res := c.Read(context.Background(), "k", fetch, WithNoRetry())
		if res.Value != "v1" {
			t.Fatalf("read %d: %v", i, res.Value)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("fetcher called %d times, want 1", calls.Load())
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := newTestCache(t)

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			return "v1", nil
		}
		return "v2", nil
	}

	if res := c.Read(context.Background(), "k", fetch, WithNoRetry()); res.Value != "v1" {
		t.Fatalf("first read: %v", res.Value)
	}

	c.Invalidate("k")

	// The stale entry is served immediately while revalidation runs.
	res := c.Read(context.Background(), "k", fetch, WithNoRetry())
	if !res.Stale && res.Value != "v2" {
		t.Fatalf("expected stale serve or fresh value, got %+v", res)
	}
	waitFor(t, func() bool { return calls.Load() == 2 })

	waitFor(t, func() bool {
		r, ok := c.Peek("k")
		return ok && r.Value == "v2" && !r.Stale
	})
}

func TestSetOptimisticVisibleImmediately(t *testing.T) {
	c := newTestCache(t)

	fetchStarted := make(chan struct{})
	gate := make(chan struct{})
	defer close(gate)
	slowFetch := func(ctx context.Context) (any, error) {
		close(fetchStarted)
		<-gate
		return "network", nil
	}

	go c.Read(context.Background(), "k", slowFetch, WithNoRetry())
	<-fetchStarted

	c.SetOptimistic("k", "optimistic")

	var calls atomic.Int64
	res := c.Read(context.Background(), "k", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("should not be called")
	}, WithNoRetry())
	if res.Value != "optimistic" {
		t.Fatalf("expected optimistic value, got %v", res.Value)
	}
	if calls.Load() != 0 {
		t.Fatal("optimistic read must not hit the network")
	}
}

func TestFailedReadStoresErrorState(t *testing.T) {
	c := newTestCache(t)

	boom := &zlerrors.PermanentError{Err: errors.New("boom")}
	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	res := c.Read(context.Background(), "k", fetch, WithNoRetry())
	if res.Err == nil {
		t.Fatal("expected error result")
	}
	if !res.Fetched {
		t.Fatal("error entries still count as fetched")
	}

	// No silent retry happened on the failed read itself.
	if calls.Load() != 1 {
		t.Fatalf("fetcher called %d times, want 1", calls.Load())
	}

	// The next read tries again rather than caching the failure forever.
	c.Read(context.Background(), "k", fetch, WithNoRetry())
	if calls.Load() != 2 {
		t.Fatalf("fetcher called %d times after second read, want 2", calls.Load())
	}
}

func TestOrphanedResolutionSettlesIntoCache(t *testing.T) {
	c := newTestCache(t)

	gate := make(chan struct{})
	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return "late", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() {
		done <- c.Read(ctx, "k", fetch, WithNoRetry())
	}()
	waitFor(t, func() bool { return calls.Load() == 1 })

	// Caller goes away mid-flight.
	cancel()
	res := <-done
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}

	// The flight still lands, delivered to no subscriber, without error.
	close(gate)
	waitFor(t, func() bool {
		r, ok := c.Peek("k")
		return ok && r.Value == "late"
	})

	// A later mount for the same key reads the settled result with no refetch.
	res = c.Read(context.Background(), "k", fetch, WithNoRetry())
	if res.Value != "late" {
		t.Fatalf("expected settled value, got %v", res.Value)
	}
	if calls.Load() != 1 {
		t.Fatalf("fetcher called %d times, want 1", calls.Load())
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	c := newTestCache(t)

	var mu sync.Mutex
	var seen []Result
	unsubscribe := c.Subscribe("k", func(key string, res Result) {
		mu.Lock()
		seen = append(seen, res)
		mu.Unlock()
	})

	c.Read(context.Background(), "k", func(ctx context.Context) (any, error) {
		return "v1", nil
	}, WithNoRetry())

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 1
	})

	c.SetOptimistic("k", "v2")
	c.Invalidate("k")

	mu.Lock()
	count := len(seen)
	last := seen[count-1]
	mu.Unlock()
	if count < 3 {
		t.Fatalf("expected at least 3 notifications, got %d", count)
	}
	if !last.Stale {
		t.Fatal("invalidation notification should be stale")
	}

	unsubscribe()
	c.SetOptimistic("k", "v3")

	mu.Lock()
	after := len(seen)
	mu.Unlock()
	if after != count {
		t.Fatalf("expected no notifications after unsubscribe, got %d extra", after-count)
	}
}

func TestStaleTimeOverridePerRead(t *testing.T) {
	c := newTestCache(t)

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	}

	c.Read(context.Background(), "k", fetch, WithNoRetry())
	time.Sleep(5 * time.Millisecond)

	// A zero stale time treats every settled entry as expired.
	c.Read(context.Background(), "k", fetch, WithNoRetry(), WithStaleTime(time.Nanosecond))
	waitFor(t, func() bool { return calls.Load() == 2 })
}
