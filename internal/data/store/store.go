// Package store persists graph models through an idempotent upsert contract.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"depgraph/internal/engine/graph"
	"depgraph/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store receives graph nodes and edges. Every upsert must be repeatable with the
// same arguments without creating duplicates.
type Store interface {
	UpsertFile(ctx context.Context, path, name string) error
	UpsertDependency(ctx context.Context, fromPath, toPath string) error
	UpsertFunction(ctx context.Context, id, name, path string, line int) error
	UpsertContains(ctx context.Context, filePath, functionID string) error
	UpsertCalls(ctx context.Context, callerID, calleeID string) error
	ClearAll(ctx context.Context) error
	Close() error
}

// Batcher is implemented by stores that can apply a whole load atomically.
type Batcher interface {
	Batch(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunRecorder is implemented by stores that keep a history of analysis runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}

type Run struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      graph.Stats
}

type LoadOptions struct {
	Clear bool
	Run   *Run
}

type LoadStats struct {
	Cleared   bool
	Files     int
	Functions int
	DependsOn int
	Contains  int
	Calls     int
	Duration  time.Duration
}

func (s LoadStats) Total() int {
	return s.Files + s.Functions + s.DependsOn + s.Contains + s.Calls
}

// Load writes m into s: all File and Function nodes first, then DependsOn,
// Contains and Calls edges. With opts.Clear the store is emptied beforehand.
func Load(ctx context.Context, s Store, m *graph.Model, opts LoadOptions) (LoadStats, error) {
	ctx, span := observability.Tracer.Start(ctx, "store.Load", trace.WithAttributes(
		attribute.Bool("clear", opts.Clear),
		attribute.Int("files", m.Stats().Files),
	))
	defer span.End()

	start := time.Now()
	var stats LoadStats
	if opts.Clear {
		slog.Info("clearing graph store")
		if err := s.ClearAll(ctx); err != nil {
			observability.StoreErrorsTotal.Inc()
			span.RecordError(err)
			return stats, fmt.Errorf("clear store: %w", err)
		}
		stats.Cleared = true
	}

	load := func(ctx context.Context) error {
		return loadModel(ctx, s, m, &stats)
	}
	var err error
	if b, ok := s.(Batcher); ok {
		err = b.Batch(ctx, load)
	} else {
		err = load(ctx)
	}
	if err != nil {
		observability.StoreErrorsTotal.Inc()
		span.RecordError(err)
		return stats, err
	}

	if opts.Run != nil {
		if rr, ok := s.(RunRecorder); ok {
			if err := rr.RecordRun(ctx, *opts.Run); err != nil {
				slog.Warn("failed to record analysis run", "run_id", opts.Run.ID, "error", err)
			}
		}
	}

	stats.Duration = time.Since(start)
	observability.AnalysisDuration.WithLabelValues("store_load").Observe(stats.Duration.Seconds())
	slog.Debug("graph store loaded", "writes", stats.Total(), "duration", stats.Duration)
	return stats, nil
}

func loadModel(ctx context.Context, s Store, m *graph.Model, stats *LoadStats) error {
	for _, f := range m.Files() {
		if err := s.UpsertFile(ctx, f.Path, f.Name()); err != nil {
			return fmt.Errorf("upsert file %s: %w", f.Path, err)
		}
		stats.Files++
	}
	observability.StoreWritesTotal.WithLabelValues("file").Add(float64(stats.Files))

	for _, fn := range m.Functions() {
		if err := s.UpsertFunction(ctx, fn.ID.String(), fn.Name, fn.File, fn.Line); err != nil {
			return fmt.Errorf("upsert function %s: %w", fn.ID, err)
		}
		stats.Functions++
	}
	observability.StoreWritesTotal.WithLabelValues("function").Add(float64(stats.Functions))

	for _, e := range m.DependsOn() {
		if err := s.UpsertDependency(ctx, e.From, e.To); err != nil {
			return fmt.Errorf("upsert dependency %s -> %s: %w", e.From, e.To, err)
		}
		stats.DependsOn++
	}
	observability.StoreWritesTotal.WithLabelValues("depends_on").Add(float64(stats.DependsOn))

	for _, e := range m.Contains() {
		if err := s.UpsertContains(ctx, e.File, e.Function.String()); err != nil {
			return fmt.Errorf("upsert contains %s -> %s: %w", e.File, e.Function, err)
		}
		stats.Contains++
	}
	observability.StoreWritesTotal.WithLabelValues("contains").Add(float64(stats.Contains))

	for _, e := range m.Calls() {
		if err := s.UpsertCalls(ctx, e.Caller.String(), e.Callee.String()); err != nil {
			return fmt.Errorf("upsert calls %s -> %s: %w", e.Caller, e.Callee, err)
		}
		stats.Calls++
	}
	observability.StoreWritesTotal.WithLabelValues("calls").Add(float64(stats.Calls))
	return nil
}
