package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/krishisakhi/backend/internal/observability/metrics"
)

// Purger drops expired entries and reports how many it removed.
type Purger interface {
	PurgeExpired() int
}

// Janitor periodically reclaims expired entries from in-process caches. Reads
// already ignore expired entries; the janitor only bounds memory.
type Janitor struct {
	targets  map[string]Purger
	logger   *slog.Logger
	interval time.Duration
}

// NewJanitor creates a janitor sweeping the named targets every interval.
func NewJanitor(targets map[string]Purger, logger *slog.Logger, interval time.Duration) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{targets: targets, logger: logger, interval: interval}
}

// Start sweeps until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("cache janitor started", slog.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cache janitor stopped")
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep purges every target once and returns the total removed.
func (j *Janitor) Sweep() int {
	total := 0
	for name, target := range j.targets {
		n := target.PurgeExpired()
		if n > 0 {
			j.logger.Debug("expired cache entries purged",
				slog.String("cache", name),
				slog.Int("count", n),
			)
		}
		total += n
	}
	metrics.ObserveCacheEvictions(total)
	return total
}
