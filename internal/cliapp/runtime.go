// Package cliapp implements the depgraph command line: analyze a root, load the
// graph into the configured store, write exports and optionally keep watching.
package cliapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreapp "depgraph/internal/core/app"
	"depgraph/internal/core/config"
	"depgraph/internal/data/store"
	"depgraph/internal/engine/scanner"
	"depgraph/internal/output"
	"depgraph/internal/shared/observability"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "depgraph v%s\n", versionString)
		return exitOK
	}

	configureLogging(stderr, opts.verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitError
	}

	shutdownTracing := startTracing(ctx, cfg)
	defer shutdownTracing()

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitError
	}
	defer app.Close()

	root, err := scanner.ValidateRoot(opts.root())
	if err != nil {
		slog.Error("invalid root path", "root", opts.root(), "error", err)
		return exitError
	}

	if opts.trace {
		return traceImportChain(ctx, app, root, opts.args[1], opts.args[2], stdout)
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		slog.Error("graph store unavailable", "store", store.Describe(cfg.Store), "error", err)
		return exitError
	}
	if st != nil {
		defer func() {
			if err := st.Close(); err != nil {
				slog.Warn("failed to close graph store", "error", err)
			}
		}()
	}

	if cfg.Observability.Enabled {
		srv := observability.NewServer(cfg.Observability.Address, coreapp.NewHealthService(app))
		if err := srv.Start(ctx); err != nil {
			slog.Warn("observability server not started", "addr", cfg.Observability.Address, "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Stop(shutdownCtx)
			}()
		}
	}

	r := &runner{app: app, cfg: cfg, store: st, stdout: stdout}
	if err := r.once(ctx, root, opts.clear); err != nil {
		return exitError
	}

	if !opts.watch {
		return exitOK
	}

	err = app.Watch(ctx, root, func(res *coreapp.Result, err error) {
		if err != nil {
			return
		}
		// Reruns clear the store so nodes of deleted files disappear.
		_ = r.finish(ctx, res, true)
	})
	if err != nil {
		slog.Error("failed to start watcher", "error", err)
		return exitError
	}
	return exitOK
}

// traceImportChain analyzes root without persisting and prints the shortest
// import chain between from and to.
func traceImportChain(ctx context.Context, app *coreapp.App, root, from, to string, stdout io.Writer) int {
	res, err := app.Analyze(ctx, root)
	if err != nil {
		slog.Error("analysis failed", "root", root, "error", err)
		return exitError
	}
	out, err := res.TraceImportChain(from, to)
	if err != nil {
		slog.Error("trace failed", "from", from, "to", to, "error", err)
		return exitError
	}
	fmt.Fprintln(stdout, out)
	return exitOK
}

type runner struct {
	app    *coreapp.App
	cfg    *config.Config
	store  store.Store
	stdout io.Writer
}

func (r *runner) once(ctx context.Context, root string, clear bool) error {
	res, err := r.app.Analyze(ctx, root)
	if err != nil {
		slog.Error("analysis failed", "root", root, "error", err)
		return err
	}
	return r.finish(ctx, res, clear)
}

// finish persists res, writes the configured exports and prints the summary.
func (r *runner) finish(ctx context.Context, res *coreapp.Result, clear bool) error {
	loadStats, err := r.app.Persist(ctx, r.store, res, clear)
	if err != nil {
		slog.Error("failed to load graph into store", "store", store.Describe(r.cfg.Store), "error", err)
		return err
	}

	written, err := output.WriteAll(res.Model, res.Cycles, output.Targets{
		DOT:     r.cfg.Output.DOT,
		Mermaid: r.cfg.Output.Mermaid,
		TSV:     r.cfg.Output.TSV,
	})
	if err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}

	printSummary(r.stdout, summaryInput{
		Result:  res,
		Load:    loadStats,
		Store:   r.storeLabel(),
		Exports: written,
		Cypher:  r.cfg.Store.Driver == config.StoreDriverCypher,
	})
	return nil
}

func (r *runner) storeLabel() string {
	if r.store == nil {
		return ""
	}
	return store.Describe(r.cfg.Store)
}

func loadConfig(opts cliOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.store != "" {
		cfg.Store.Driver = opts.store
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func startTracing(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Observability.EnableTracing {
		return func() {}
	}
	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  cfg.Observability.ServiceName,
		Version:      versionString,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		Insecure:     true,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}
}

func configureLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
