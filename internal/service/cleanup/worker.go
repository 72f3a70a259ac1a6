// Package cleanup runs the background sweep that revokes sessions whose
// owners walked away without logging out. It only exists when an idle
// timeout is configured; explicit logout stays the primary invalidation
// path either way.
package cleanup

import (
	"context"
	"log"
	"time"
)

type IdleRevoker interface {
	RevokeIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Worker struct {
	store       IdleRevoker
	idleTimeout time.Duration
	interval    time.Duration
}

func NewWorker(store IdleRevoker, idleTimeout time.Duration) *Worker {
	return &Worker{
		store:       store,
		idleTimeout: idleTimeout,
		interval:    idleTimeout / 2,
	}
}

// Start launches the periodic sweep. It returns immediately; the sweep stops
// when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.sweep(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	log.Printf("[CLEANUP] Idle session sweep started (timeout %s)", w.idleTimeout)
}

func (w *Worker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.idleTimeout)
	revoked, err := w.store.RevokeIdleBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[CLEANUP] Error revoking idle sessions: %v", err)
		return
	}
	if revoked > 0 {
		log.Printf("[CLEANUP] Revoked %d idle sessions", revoked)
	}
}
