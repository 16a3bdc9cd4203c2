package dataset

import (
	"context"
	"time"

	"VolPulse/internal/domain/repository"
	"VolPulse/pkg/logger"
)

// Watcher polls the source fingerprint and invalidates the cached table when
// it changes, then notifies subscribers (the websocket hub) so open pages
// re-fetch. One goroutine, stopped by context cancellation.
type Watcher struct {
	source   repository.TableSource
	loader   repository.Loader
	interval time.Duration
	log      *logger.Logger
	onChange func()

	lastFP string
}

// NewWatcher creates a dataset change watcher.
func NewWatcher(source repository.TableSource, loader repository.Loader, interval time.Duration, log *logger.Logger, onChange func()) *Watcher {
	return &Watcher{
		source:   source,
		loader:   loader,
		interval: interval,
		log:      log,
		onChange: onChange,
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if fp, err := w.source.Fingerprint(ctx); err == nil {
		w.lastFP = fp
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	fp, err := w.source.Fingerprint(ctx)
	if err != nil {
		// Source may be mid-rewrite; keep the cached table until it settles.
		w.log.Warn("dataset fingerprint check failed", logger.Error(err))
		return
	}
	if fp == w.lastFP {
		return
	}

	w.log.Info("dataset change detected",
		logger.String("source", w.source.Identity()),
		logger.String("fingerprint", fp),
	)
	w.lastFP = fp

	if err := w.loader.Invalidate(ctx); err != nil {
		w.log.Warn("dataset cache invalidation failed", logger.Error(err))
	}
	if w.onChange != nil {
		w.onChange()
	}
}
