package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"depgraph/internal/core/errors"
	"depgraph/internal/engine/graph"
)

// TraceImportChain renders the shortest DependsOn path between two analyzed
// files. from and to are root-relative file paths or module names; a module
// name provided by several files uses whichever pairing gives the shortest chain.
func (r *Result) TraceImportChain(from, to string) (string, error) {
	if r == nil || r.Model == nil {
		return "", errors.New(errors.CodeInternal, "trace: no analysis result")
	}
	idx := graph.NewModuleIndex(r.Model.Files())

	sources := r.chainEndpoints(idx, from)
	if len(sources) == 0 {
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("source module not found: %s", from))
	}
	targets := r.chainEndpoints(idx, to)
	if len(targets) == 0 {
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("target module not found: %s", to))
	}

	var best []string
	for _, src := range sources {
		for _, dst := range targets {
			chain, ok := r.Model.FindImportChain(src, dst)
			if ok && (best == nil || len(chain) < len(best)) {
				best = chain
			}
		}
	}
	if best == nil {
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("no import chain found from %s to %s", from, to))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Import chain: %s -> %s\n\n", from, to))
	for i, file := range best {
		if i > 0 {
			b.WriteString("  -> ")
		}
		b.WriteString(file)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// chainEndpoints resolves name to the files it denotes: an exact relative path
// wins over a module name.
func (r *Result) chainEndpoints(idx *graph.ModuleIndex, name string) []string {
	clean := filepath.ToSlash(filepath.Clean(strings.TrimSpace(name)))
	for _, f := range r.Model.Files() {
		if f.Path == clean {
			return []string{f.Path}
		}
	}
	if idx.Has(name) {
		return idx.Lookup(name)
	}
	return nil
}
