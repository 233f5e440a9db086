package session

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically sweeps expired runs out of a Store.
type Janitor struct {
	store    *Store
	interval time.Duration
}

// NewJanitor creates a new Janitor. A non-positive interval defaults to one minute.
func NewJanitor(store *Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{store: store, interval: interval}
}

// Start runs the sweep loop until ctx is canceled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("session.Janitor: started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("session.Janitor: shutdown complete")
			return
		case <-ticker.C:
			if n := j.store.Sweep(); n > 0 {
				slog.Debug("session.Janitor: swept expired batches", "removed", n, "remaining", j.store.Len())
			}
		}
	}
}
