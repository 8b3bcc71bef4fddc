// Package output renders a graph model as DOT, Mermaid and TSV documents.
package output

import (
	"log/slog"

	"depgraph/internal/engine/graph"
	"depgraph/internal/shared/util"
)

// Targets names the files to write; empty paths are skipped.
type Targets struct {
	DOT     string
	Mermaid string
	TSV     string
}

func (t Targets) Empty() bool {
	return t.DOT == "" && t.Mermaid == "" && t.TSV == ""
}

// WriteAll renders m into every configured target and returns the paths written.
func WriteAll(m *graph.Model, cycles [][]string, t Targets) ([]string, error) {
	metrics := m.ComputeFileMetrics()
	var written []string

	if t.DOT != "" {
		gen := NewDOTGenerator(m)
		gen.SetFileMetrics(metrics)
		dot, err := gen.Generate(cycles)
		if err != nil {
			return written, err
		}
		if err := util.WriteStringWithDirs(t.DOT, dot, 0o644); err != nil {
			return written, err
		}
		written = append(written, t.DOT)
	}

	if t.Mermaid != "" {
		gen := NewMermaidGenerator(m)
		gen.SetFileMetrics(metrics)
		gen.IncludeCalls(true)
		mmd, err := gen.Generate(cycles)
		if err != nil {
			return written, err
		}
		if err := util.WriteStringWithDirs(t.Mermaid, mmd, 0o644); err != nil {
			return written, err
		}
		written = append(written, t.Mermaid)
	}

	if t.TSV != "" {
		tsv, err := NewTSVGenerator(m).Generate()
		if err != nil {
			return written, err
		}
		if err := util.WriteStringWithDirs(t.TSV, tsv, 0o644); err != nil {
			return written, err
		}
		written = append(written, t.TSV)
	}

	for _, path := range written {
		slog.Debug("wrote graph export", "path", path)
	}
	return written, nil
}

func cycleEdgeSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		if len(cycle) < 2 {
			continue
		}
		for i := 0; i < len(cycle); i++ {
			from := cycle[i]
			to := cycle[(i+1)%len(cycle)]
			out[from+"->"+to] = true
		}
	}
	return out
}

func cycleMemberSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for _, path := range cycle {
			out[path] = true
		}
	}
	return out
}

func skippedSet(m *graph.Model) map[string]bool {
	out := make(map[string]bool)
	for _, s := range m.Skipped() {
		out[s.Path] = true
	}
	return out
}

func functionsPerFile(m *graph.Model) map[string]int {
	out := make(map[string]int)
	for _, fn := range m.Functions() {
		if fn.ID.IsModuleBody() {
			continue
		}
		out[fn.File]++
	}
	return out
}
