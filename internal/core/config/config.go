package config

import (
	"runtime"
	"strings"
	"time"
)

const (
	DefaultConfigPath  = "./depgraph.toml"
	ExampleConfigPath  = "./depgraph.example.toml"
	DefaultStorePath   = "data/depgraph.db"
	DefaultCypherPath  = "data/depgraph.cypher"
	DefaultMetricsAddr = "127.0.0.1:9464"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverCypher = "cypher"
	StoreDriverMemory = "memory"
	StoreDriverNone   = "none"
)

type Config struct {
	Version       int           `toml:"version"`
	Scan          Scan          `toml:"scan"`
	Store         Store         `toml:"store"`
	Output        Output        `toml:"output"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Scan struct {
	Extensions   []string `toml:"extensions"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	Workers      int      `toml:"workers"`
}

type Store struct {
	Driver      string        `toml:"driver"`
	Path        string        `toml:"path"`
	CypherPath  string        `toml:"cypher_path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Output struct {
	DOT     string `toml:"dot"`
	Mermaid string `toml:"mermaid"`
	TSV     string `toml:"tsv"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	EnableTracing bool   `toml:"enable_tracing"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	ServiceName   string `toml:"service_name"`
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{".py"}
	}
	if cfg.Scan.Workers <= 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}

	if strings.TrimSpace(cfg.Store.Driver) == "" {
		cfg.Store.Driver = StoreDriverSQLite
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if strings.TrimSpace(cfg.Store.CypherPath) == "" {
		cfg.Store.CypherPath = DefaultCypherPath
	}
	if cfg.Store.BusyTimeout <= 0 {
		cfg.Store.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = 2 * time.Second
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = DefaultMetricsAddr
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "depgraph"
	}
}

func normalize(cfg *Config) {
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Store.Path = strings.TrimSpace(cfg.Store.Path)
	cfg.Store.CypherPath = strings.TrimSpace(cfg.Store.CypherPath)
	cfg.Output.DOT = strings.TrimSpace(cfg.Output.DOT)
	cfg.Output.Mermaid = strings.TrimSpace(cfg.Output.Mermaid)
	cfg.Output.TSV = strings.TrimSpace(cfg.Output.TSV)
	cfg.Observability.Address = strings.TrimSpace(cfg.Observability.Address)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}
