package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a fully defaulted config.
func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateScan(cfg); err != nil {
		return err
	}
	if err := validateStore(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	if err := validateWatch(cfg); err != nil {
		return err
	}
	return validateObservability(cfg)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for _, ext := range cfg.Scan.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("scan.extensions must not contain empty values")
		}
	}
	for _, p := range cfg.Scan.ExcludeDirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("scan.exclude_dirs: invalid pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Scan.ExcludeFiles {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("scan.exclude_files: invalid pattern %q: %w", p, err)
		}
	}
	if cfg.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be >= 1, got %d", cfg.Scan.Workers)
	}
	return nil
}

func validateStore(cfg *Config) error {
	switch cfg.Store.Driver {
	case StoreDriverSQLite:
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path must not be empty for the sqlite driver")
		}
	case StoreDriverCypher:
		if cfg.Store.CypherPath == "" {
			return fmt.Errorf("store.cypher_path must not be empty for the cypher driver")
		}
	case StoreDriverMemory, StoreDriverNone:
	default:
		return fmt.Errorf("store.driver must be one of: sqlite, cypher, memory, none (got %q)", cfg.Store.Driver)
	}
	return nil
}

// validateOutput rejects two artifacts written to the same file.
func validateOutput(cfg *Config) error {
	type target struct{ key, path string }
	targets := []target{
		{"output.dot", cfg.Output.DOT},
		{"output.mermaid", cfg.Output.Mermaid},
		{"output.tsv", cfg.Output.TSV},
	}
	switch cfg.Store.Driver {
	case StoreDriverSQLite:
		targets = append(targets, target{"store.path", cfg.Store.Path})
	case StoreDriverCypher:
		targets = append(targets, target{"store.cypher_path", cfg.Store.CypherPath})
	}

	seen := make(map[string]string, len(targets))
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		key := filepath.Clean(t.path)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("output conflict: %s and %s share the same path %q", prev, t.key, t.path)
		}
		seen[key] = t.key
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MinInterval < 0 {
		return fmt.Errorf("watch.min_interval must not be negative")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when tracing is enabled")
	}
	return nil
}
