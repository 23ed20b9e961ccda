/*
Package chat contains the core logic for presence tracking and message broadcasting
in the single shared room.

This file defines the Janitor, the scheduled retention sweep owned by the process
lifecycle. It runs the store's cleanup on a fixed cadence and stops cleanly when
the process shuts down.
*/
package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tinychat/internal/app/store"
	"tinychat/internal/pkg/logx"
)

// CleanupInterval is the cadence of the retention sweep.
const CleanupInterval = time.Hour

// Janitor periodically invokes the store's retention sweep. The sweep takes
// the same store lock as interactive operations; it is not exempted from
// serialization.
type Janitor struct {
	store    *store.Store
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitor returns a janitor sweeping at the given interval. A
// non-positive interval falls back to CleanupInterval.
func NewJanitor(st *store.Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = CleanupInterval
	}

	return &Janitor{
		store:    st,
		interval: interval,
		logger:   logx.Logger().With().Str("component", "Janitor").Logger(),
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled. It is meant to
// be started in its own goroutine from main.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info().Dur("interval", j.interval).Msg("Retention janitor started.")

	for {
		select {
		case <-ticker.C:
			j.store.Cleanup()

		case <-ctx.Done():
			j.logger.Info().Msg("Retention janitor stopped.")
			return
		}
	}
}
