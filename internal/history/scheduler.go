package history

import (
	"context"
	"log/slog"
	"time"
)

// StartFlushScheduler removes expired entries once immediately and then every
// interval until ctx is cancelled. It blocks, so callers run it in a
// goroutine.
func (s *Store) StartFlushScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	slog.Info("history flush scheduler started",
		"namespace", s.namespace,
		"interval", interval.String(),
	)

	s.runFlush(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history flush scheduler stopped")
			return
		case <-ticker.C:
			s.runFlush(ctx)
		}
	}
}

func (s *Store) runFlush(ctx context.Context) {
	start := time.Now()
	removed := s.Flush(ctx)
	if removed > 0 {
		slog.Info("flushed expired history entries",
			"entries_removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
