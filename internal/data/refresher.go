package data

import (
	"context"
	"time"
)

// StartStatsRefresher re-fetches the global stats on a fixed interval,
// overriding the default stale-time policy: aggregate community metrics are
// display-only and should tick along even while a view sits idle on them.
// The refresher stops when ctx is cancelled or the returned stop func runs.
func (s *Store) StartStatsRefresher(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	refreshCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if !s.Ready() {
					continue
				}
				s.cache.Invalidate(KeyGlobalStats)
				res := s.GlobalStats(refreshCtx)
				if res.Err != nil {
					s.logger.Debug("stats refresh failed: %v", res.Err)
				}
			}
		}
	}()

	return cancel
}
