package shop

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often expired state is purged.
const DefaultSweepInterval = 5 * time.Minute

// Sweep periodically drops expired KV rows and cached search results. It
// blocks until ctx is cancelled.
func (a *App) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweepOnce(ctx)
		}
	}
}

func (a *App) sweepOnce(ctx context.Context) (rows int64, cached int) {
	cached = a.Upsells.PurgeCache()

	rows, err := a.KV.SweepExpired(ctx)
	if err != nil {
		a.Logger.Debug().Err(err).Msg("kv sweep failed")
		return 0, cached
	}
	if rows > 0 || cached > 0 {
		a.Logger.Debug().Int64("rows", rows).Int("cached", cached).Msg("swept expired entries")
	}
	return rows, cached
}
