package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depgraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[scan]
extensions = [".py", ".pyi"]
exclude_dirs = [".git", "__pycache__"]
exclude_files = ["*_pb2.py"]
workers = 3

[store]
driver = "cypher"
cypher_path = "out/graph.cypher"
busy_timeout = "2s"

[output]
dot = "graph.dot"
mermaid = "graph.mmd"
tsv = "deps.tsv"

[watch]
debounce = "1s"
min_interval = "5s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".py", ".pyi"}, cfg.Scan.Extensions)
	assert.Equal(t, []string{".git", "__pycache__"}, cfg.Scan.ExcludeDirs)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, StoreDriverCypher, cfg.Store.Driver)
	assert.Equal(t, "out/graph.cypher", cfg.Store.CypherPath)
	assert.Equal(t, 2*time.Second, cfg.Store.BusyTimeout)
	assert.Equal(t, "graph.dot", cfg.Output.DOT)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 5*time.Second, cfg.Watch.MinInterval)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ``))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, []string{".py"}, cfg.Scan.Extensions)
	assert.Empty(t, cfg.Scan.ExcludeDirs)
	assert.GreaterOrEqual(t, cfg.Scan.Workers, 1)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, DefaultStorePath, cfg.Store.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, DefaultMetricsAddr, cfg.Observability.Address)
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "Version", content: "version = 3", want: "unsupported config version"},
		{name: "Driver", content: "[store]\ndriver = \"neo4j\"", want: "store.driver"},
		{name: "ExcludeGlob", content: "[scan]\nexclude_dirs = [\"[oops\"]", want: "scan.exclude_dirs"},
		{name: "Tracing", content: "[observability]\nenable_tracing = true", want: "otlp_endpoint"},
		{name: "Debounce", content: "[watch]\ndebounce = \"-1s\"", want: "watch.debounce"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), "unexpected error: %v", err)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEPGRAPH_STORE_DRIVER", "memory")
	t.Setenv("DEPGRAPH_SCAN_EXTENSIONS", ".py, .pyw")
	t.Setenv("DEPGRAPH_SCAN_WORKERS", "2")
	t.Setenv("DEPGRAPH_WATCH_DEBOUNCE", "250ms")
	t.Setenv("DEPGRAPH_OBSERVABILITY_ENABLED", "true")

	cfg, err := Load(writeConfig(t, "[store]\ndriver = \"sqlite\""))
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, []string{".py", ".pyw"}, cfg.Scan.Extensions)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Observability.Enabled)
}

func TestLoadOrDefault_ExplicitMissingPath(t *testing.T) {
	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadOrDefault_DefaultPathFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault(DefaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
}
