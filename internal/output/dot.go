package output

import (
	"fmt"
	"strings"

	"depgraph/internal/engine/graph"
)

type DOTGenerator struct {
	model   *graph.Model
	metrics map[string]graph.FileMetrics
}

func NewDOTGenerator(m *graph.Model) *DOTGenerator {
	return &DOTGenerator{model: m}
}

func (d *DOTGenerator) SetFileMetrics(metrics map[string]graph.FileMetrics) {
	d.metrics = metrics
}

// Generate renders the file dependency graph. Files in an import cycle and the
// cycle edges themselves are highlighted.
func (d *DOTGenerator) Generate(cycles [][]string) (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	cycleEdges := cycleEdgeSet(cycles)
	cycleFiles := cycleMemberSet(cycles)
	skipped := skippedSet(d.model)
	funcCount := functionsPerFile(d.model)

	buf.WriteString("  subgraph cluster_files {\n")
	buf.WriteString("    label=\"Source Files\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")
	for _, f := range d.model.Files() {
		label := fmt.Sprintf("%s\\n(%d funcs)", f.Path, funcCount[f.Path])
		if m, ok := d.metrics[f.Path]; ok {
			label += fmt.Sprintf("\\n(d=%d in=%d out=%d)", m.Depth, m.FanIn, m.FanOut)
		}
		switch {
		case cycleFiles[f.Path]:
			fmt.Fprintf(&buf, "    %s [label=%s, fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", dotQuote(f.Path), dotQuote(label))
		case skipped[f.Path]:
			fmt.Fprintf(&buf, "    %s [label=%s, fillcolor=\"gainsboro\", color=\"grey\", style=\"rounded,filled,dashed\"];\n", dotQuote(f.Path), dotQuote(label))
		default:
			fmt.Fprintf(&buf, "    %s [label=%s, color=\"darkslategrey\"];\n", dotQuote(f.Path), dotQuote(label))
		}
	}
	buf.WriteString("  }\n\n")

	for _, e := range d.model.DependsOn() {
		if cycleEdges[e.From+"->"+e.To] {
			fmt.Fprintf(&buf, "  %s -> %s [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", dotQuote(e.From), dotQuote(e.To))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [color=\"forestgreen\", penwidth=1.8];\n", dotQuote(e.From), dotQuote(e.To))
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_file [label=\"Source File\", fillcolor=\"white\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_skipped [label=\"Skipped File\", fillcolor=\"gainsboro\", style=\"rounded,filled,dashed\"];\n")
	buf.WriteString("    legend_cycle [label=\"Circular Import\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\"];\n")
	buf.WriteString("  }\n")
	buf.WriteString("}\n")

	return buf.String(), nil
}

// GenerateCalls renders the call graph with one cluster per file.
func (d *DOTGenerator) GenerateCalls() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph calls {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n\n")

	byFile := make(map[string][]graph.FunctionNode)
	for _, fn := range d.model.Functions() {
		byFile[fn.File] = append(byFile[fn.File], fn)
	}
	for i, f := range d.model.Files() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%s;\n", dotQuote(f.Path))
		for _, fn := range byFile[f.Path] {
			label := fmt.Sprintf("%s:%d", fn.Name, fn.Line)
			if fn.ID.IsModuleBody() {
				fmt.Fprintf(&buf, "    %s [label=%s, style=\"rounded,dashed\"];\n", dotQuote(fn.ID.String()), dotQuote(fn.Name))
				continue
			}
			fmt.Fprintf(&buf, "    %s [label=%s];\n", dotQuote(fn.ID.String()), dotQuote(label))
		}
		buf.WriteString("  }\n")
	}
	buf.WriteString("\n")
	for _, e := range d.model.Calls() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(e.Caller.String()), dotQuote(e.Callee.String()))
	}
	buf.WriteString("}\n")

	return buf.String(), nil
}

func dotQuote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}
