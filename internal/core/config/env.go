package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DEPGRAPH_[SECTION]_[KEY] (e.g., DEPGRAPH_STORE_PATH).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvList(&cfg.Scan.Extensions, "DEPGRAPH_SCAN_EXTENSIONS")
	setEnvList(&cfg.Scan.ExcludeDirs, "DEPGRAPH_SCAN_EXCLUDE_DIRS")
	setEnvList(&cfg.Scan.ExcludeFiles, "DEPGRAPH_SCAN_EXCLUDE_FILES")
	setEnvInt(&cfg.Scan.Workers, "DEPGRAPH_SCAN_WORKERS")

	// Store
	setEnvString(&cfg.Store.Driver, "DEPGRAPH_STORE_DRIVER")
	setEnvString(&cfg.Store.Path, "DEPGRAPH_STORE_PATH")
	setEnvString(&cfg.Store.CypherPath, "DEPGRAPH_STORE_CYPHER_PATH")
	setEnvDuration(&cfg.Store.BusyTimeout, "DEPGRAPH_STORE_BUSY_TIMEOUT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DEPGRAPH_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "DEPGRAPH_WATCH_MIN_INTERVAL")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "DEPGRAPH_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "DEPGRAPH_OBSERVABILITY_ADDRESS")
	setEnvBool(&cfg.Observability.EnableTracing, "DEPGRAPH_OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DEPGRAPH_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = out
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
