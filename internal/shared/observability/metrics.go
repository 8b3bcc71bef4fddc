package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depgraph_parsing_seconds",
		Help:    "Time spent parsing and extracting a single source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_files_analyzed_total",
		Help: "Total number of source files successfully parsed and extracted.",
	})

	FilesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_files_skipped_total",
		Help: "Total number of source files skipped because they could not be read or parsed.",
	}, []string{"reason"})

	GraphNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "depgraph_graph_nodes",
		Help: "Number of nodes in the most recent graph model, by kind.",
	}, []string{"kind"})

	GraphEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "depgraph_graph_edges",
		Help: "Number of edges in the most recent graph model, by kind.",
	}, []string{"kind"})

	UnresolvedCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_unresolved_calls_total",
		Help: "Total number of call sites with no project-wide candidate.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depgraph_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	StoreWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_store_writes_total",
		Help: "Total number of upserts issued to the graph store, by entity.",
	}, []string{"entity"})

	StoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_store_errors_total",
		Help: "Total number of failed graph store operations.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatchRerunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_watch_reruns_total",
		Help: "Total number of analysis reruns triggered by the watcher, by outcome.",
	}, []string{"outcome"})
)
