// Package app runs the analysis pipeline: scan, parse and extract in parallel,
// assemble the model, then hand it to a store and the exporters.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"depgraph/internal/core/config"
	"depgraph/internal/core/errors"
	"depgraph/internal/engine/extract"
	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"
	"depgraph/internal/engine/scanner"
	"depgraph/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Config *config.Config
	Parser *parser.Parser

	mu   sync.RWMutex
	last *Result
}

// Result is one complete analysis of a root.
type Result struct {
	RunID      string
	Root       string
	Model      *graph.Model
	Cycles     [][]string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	loader, err := parser.NewGrammarLoader(cfg.Scan.Extensions)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg}
	a.Parser = parser.NewParser(loader, a.workers())
	return a, nil
}

// Close releases the parser pool.
func (a *App) Close() {
	if a.Parser != nil {
		a.Parser.Close()
	}
}

func (a *App) scanOptions() scanner.Options {
	return scanner.Options{
		Extensions:   a.Parser.SupportedExtensions(),
		ExcludeDirs:  a.Config.Scan.ExcludeDirs,
		ExcludeFiles: a.Config.Scan.ExcludeFiles,
	}
}

func (a *App) workers() int {
	if a.Config.Scan.Workers > 0 {
		return a.Config.Scan.Workers
	}
	return runtime.NumCPU()
}

// Analyze builds the graph model for every source file under root. Unreadable
// and unparsable files are recorded as skipped; an invalid root is the only
// fatal condition apart from cancellation.
func (a *App) Analyze(ctx context.Context, root string) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze", trace.WithAttributes(attribute.String("root", root)))
	defer span.End()

	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	span.SetAttributes(attribute.String("run_id", res.RunID))

	scan, err := scanner.Scan(ctx, root, a.scanOptions())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	res.Root = scan.Root
	slog.Info("scanned source tree", "root", scan.Root, "files", len(scan.Files), "run_id", res.RunID)

	parts := make([]graph.FilePart, len(scan.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, file := range scan.Files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			part, err := a.analyzeFile(gctx, scan, file)
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assembleStart := time.Now()
	res.Model = graph.Assemble(parts)
	res.Cycles = res.Model.ImportCycles()
	observability.AnalysisDuration.WithLabelValues("assemble").Observe(time.Since(assembleStart).Seconds())
	res.FinishedAt = time.Now()

	stats := res.Model.Stats()
	publishStats(stats)
	for _, sk := range res.Model.Skipped() {
		slog.Warn("skipped file", "path", sk.Path, "reason", string(sk.Reason), "error", sk.Err)
	}
	slog.Info("analysis complete",
		"run_id", res.RunID,
		"files", stats.Files,
		"functions", stats.Functions,
		"depends_on", stats.DependsOn,
		"calls", stats.Calls,
		"skipped", stats.Skipped,
		"unresolved_calls", stats.Unresolved,
		"duration", res.Duration(),
	)
	span.SetAttributes(
		attribute.Int("files", stats.Files),
		attribute.Int("functions", stats.Functions),
		attribute.Int("skipped", stats.Skipped),
	)
	observability.AnalysisDuration.WithLabelValues("analyze").Observe(res.Duration().Seconds())

	a.mu.Lock()
	a.last = res
	a.mu.Unlock()
	return res, nil
}

// analyzeFile only fails on cancellation; read and parse errors become a skipped part.
func (a *App) analyzeFile(ctx context.Context, scan *scanner.Result, file graph.SourceFile) (graph.FilePart, error) {
	start := time.Now()
	content, err := readSource(scan.AbsPath(file))
	if err != nil {
		observability.FilesSkippedTotal.WithLabelValues(string(graph.SkipRead)).Inc()
		return extract.SkippedPart(file, graph.SkipRead, err), nil
	}

	tree, err := a.Parser.ParseFile(ctx, file.Path, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return graph.FilePart{}, ctxErr
		}
		observability.FilesSkippedTotal.WithLabelValues(string(graph.SkipParse)).Inc()
		return extract.SkippedPart(file, graph.SkipParse, err), nil
	}
	defer tree.Close()

	part := extract.FilePart(file, tree, scan.Index)
	observability.ParsingDuration.WithLabelValues(tree.Language).Observe(time.Since(start).Seconds())
	observability.FilesAnalyzedTotal.Inc()
	return part, nil
}

func readSource(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeReadError, "read source file"), errors.CtxPath, path)
	}
	if !utf8.Valid(content) {
		return nil, errors.AddContext(errors.New(errors.CodeReadError, "source file is not valid UTF-8"), errors.CtxPath, path)
	}
	return content, nil
}

func publishStats(s graph.Stats) {
	observability.GraphNodes.WithLabelValues("file").Set(float64(s.Files))
	observability.GraphNodes.WithLabelValues("function").Set(float64(s.Functions))
	observability.GraphEdges.WithLabelValues("depends_on").Set(float64(s.DependsOn))
	observability.GraphEdges.WithLabelValues("contains").Set(float64(s.Contains))
	observability.GraphEdges.WithLabelValues("calls").Set(float64(s.Calls))
	observability.UnresolvedCallsTotal.Add(float64(s.Unresolved))
}

// Last returns the most recent successful analysis, or nil.
func (a *App) Last() *Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Summary is a one-line description of a result for logs and prompts.
func (r *Result) Summary() string {
	s := r.Model.Stats()
	return fmt.Sprintf("%d files, %d functions, %d dependencies, %d calls, %d skipped",
		s.Files, s.Functions, s.DependsOn, s.Calls, s.Skipped)
}
