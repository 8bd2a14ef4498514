package session

import (
	"time"

	"go.uber.org/zap"
)

const defaultMaxSessionAge = 2 * time.Hour

// Watchdog stops sessions that exceed a maximum age so a client that never
// sends stop or disconnect cannot pin a transcription stream forever.
type Watchdog struct {
	registry *Registry
	maxAge   time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewWatchdog creates a watchdog for the registry. A non-positive maxAge
// falls back to the default.
func NewWatchdog(registry *Registry, maxAge time.Duration, logger *zap.Logger) *Watchdog {
	if maxAge <= 0 {
		maxAge = defaultMaxSessionAge
	}
	return &Watchdog{
		registry: registry,
		maxAge:   maxAge,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *Watchdog) Start() {
	go w.sweepLoop()
	w.logger.Info("session watchdog started", zap.Duration("maxAge", w.maxAge))
}

// Stop gracefully stops the watchdog.
func (w *Watchdog) Stop() {
	close(w.stopChan)
	w.logger.Info("session watchdog stopped")
}

func (w *Watchdog) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if n := w.registry.StopStale(w.maxAge); n > 0 {
				w.logger.Info("stale sessions stopped", zap.Int("count", n))
			}
		}
	}
}
