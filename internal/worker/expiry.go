// Package worker contains long-running background loops started from main.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
)

// StartExpirySweeper runs a ticker loop that expires overdue pending rental
// requests. A request is overdue once the current day is past its start
// date; the sweep flips each one to EXPIRED so owners no longer see stale
// requests in their inbox. The loop stops when ctx is cancelled.
func StartExpirySweeper(ctx context.Context, lc *rental.Lifecycle, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := lc.ExpireDue(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("expiry-sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry-sweeper: expired %d overdue request(s)", n)
			}
		}
	}
}
