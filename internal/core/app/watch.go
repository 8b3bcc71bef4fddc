package app

import (
	"context"
	"log/slog"

	"depgraph/internal/core/watcher"
	"depgraph/internal/engine/scanner"
	"depgraph/internal/shared/observability"
	"depgraph/internal/shared/util"
)

// Watch reruns the full analysis of root after every debounced batch of source
// changes until ctx is done. Reruns are at least watch.min_interval apart;
// batches arriving in between are coalesced into the next rerun.
func (a *App) Watch(ctx context.Context, root string, onResult func(*Result, error)) error {
	abs, err := scanner.ValidateRoot(root)
	if err != nil {
		return err
	}
	matcher, err := scanner.NewMatcher(a.scanOptions())
	if err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, matcher, func(paths []string) {
		slog.Info("detected changes", "count", len(paths))
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Watch([]string{abs}); err != nil {
		return err
	}

	limiter := util.NewLimiterEvery(a.Config.Watch.MinInterval, 1)
	// The caller has just run an analysis; the first rerun waits a full interval.
	limiter.Allow(1)

	slog.Info("watching for changes", "root", abs, "debounce", a.Config.Watch.Debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}
		if err := limiter.Wait(ctx, 1); err != nil {
			return nil
		}

		res, err := a.Analyze(ctx, abs)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			observability.WatchRerunsTotal.WithLabelValues("error").Inc()
			slog.Error("rerun failed", "root", abs, "error", err)
		} else {
			observability.WatchRerunsTotal.WithLabelValues("ok").Inc()
		}
		if onResult != nil {
			onResult(res, err)
		}
	}
}
