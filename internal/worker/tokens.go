package worker

import (
	"context"
	"log"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
)

// StartTokenPruner periodically deletes refresh tokens that expired before
// the current time. Revoked rows are kept until they expire so that audit
// queries can still see them. The loop stops when ctx is cancelled.
func StartTokenPruner(ctx context.Context, tokens *repository.TokenRepo, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("token-pruner: prune failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("token-pruner: removed %d expired refresh token(s)", n)
			}
		}
	}
}
