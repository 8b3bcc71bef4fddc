package output

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"depgraph/internal/engine/graph"
)

type MermaidGenerator struct {
	model        *graph.Model
	metrics      map[string]graph.FileMetrics
	includeCalls bool
}

func NewMermaidGenerator(m *graph.Model) *MermaidGenerator {
	return &MermaidGenerator{model: m}
}

func (m *MermaidGenerator) SetFileMetrics(metrics map[string]graph.FileMetrics) {
	if len(metrics) == 0 {
		m.metrics = nil
		return
	}
	m.metrics = make(map[string]graph.FileMetrics, len(metrics))
	for path, metric := range metrics {
		m.metrics[path] = metric
	}
}

// IncludeCalls adds one subgraph of functions per file and the resolved calls.
func (m *MermaidGenerator) IncludeCalls(on bool) {
	m.includeCalls = on
}

func (m *MermaidGenerator) Generate(cycles [][]string) (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 80, 'rankSpacing': 110, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	files := m.model.Files()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	ids := makeMermaidIDs(paths, "f_")
	funcCount := functionsPerFile(m.model)

	for _, path := range paths {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", ids[path], escapeMermaidLabel(m.fileLabel(path, funcCount[path])))
	}

	var fnIDs map[string]string
	if m.includeCalls {
		fnIDs = m.writeFunctionSubgraphs(&b, ids)
	}

	b.WriteString("\n")
	if len(paths) > 0 {
		b.WriteString("  classDef fileNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(paths, ids), ","))
		b.WriteString(" fileNode;\n")
	}
	if skipped := sortedKeys(skippedSet(m.model)); len(skipped) > 0 {
		b.WriteString("  classDef skippedNode fill:#efefef,stroke:#808080,stroke-dasharray:4 3;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(skipped, ids), ","))
		b.WriteString(" skippedNode;\n")
	}
	if cycleFiles := intersectOrdered(paths, cycleMemberSet(cycles)); len(cycleFiles) > 0 {
		b.WriteString("  classDef cycleNode fill:#ffecec,stroke:#cc0000,stroke-width:2px;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(cycleFiles, ids), ","))
		b.WriteString(" cycleNode;\n")
	}

	b.WriteString("\n")
	cycleEdges := cycleEdgeSet(cycles)
	linkIndex := 0
	cycleLinkIndexes := make([]int, 0)
	callLinkIndexes := make([]int, 0)
	for _, e := range m.model.DependsOn() {
		label := ""
		if cycleEdges[e.From+"->"+e.To] {
			label = "|CYCLE|"
			cycleLinkIndexes = append(cycleLinkIndexes, linkIndex)
		}
		fmt.Fprintf(&b, "  %s -->%s %s\n", ids[e.From], label, ids[e.To])
		linkIndex++
	}
	if m.includeCalls {
		for _, e := range m.model.Calls() {
			fmt.Fprintf(&b, "  %s -.-> %s\n", fnIDs[e.Caller.String()], fnIDs[e.Callee.String()])
			callLinkIndexes = append(callLinkIndexes, linkIndex)
			linkIndex++
		}
	}

	if len(cycleLinkIndexes) > 0 || len(callLinkIndexes) > 0 {
		b.WriteString("\n")
	}
	if len(cycleLinkIndexes) > 0 {
		fmt.Fprintf(&b, "  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(cycleLinkIndexes))
	}
	if len(callLinkIndexes) > 0 {
		fmt.Fprintf(&b, "  linkStyle %s stroke:#777777,stroke-dasharray:4 3;\n", joinInts(callLinkIndexes))
	}

	return b.String(), nil
}

func (m *MermaidGenerator) writeFunctionSubgraphs(b *strings.Builder, fileIDs map[string]string) map[string]string {
	fns := m.model.Functions()
	keys := make([]string, 0, len(fns))
	for _, fn := range fns {
		keys = append(keys, fn.ID.String())
	}
	ids := makeMermaidIDs(keys, "fn_")

	byFile := make(map[string][]graph.FunctionNode)
	for _, fn := range fns {
		byFile[fn.File] = append(byFile[fn.File], fn)
	}
	b.WriteString("\n")
	for _, f := range m.model.Files() {
		fmt.Fprintf(b, "  subgraph %s_fns[\"%s\"]\n", fileIDs[f.Path], escapeMermaidLabel(f.Path))
		for _, fn := range byFile[f.Path] {
			label := fn.Name
			if !fn.ID.IsModuleBody() {
				label = fmt.Sprintf("%s:%d", fn.Name, fn.Line)
			}
			fmt.Fprintf(b, "    %s[\"%s\"]\n", ids[fn.ID.String()], escapeMermaidLabel(label))
		}
		b.WriteString("  end\n")
	}
	return ids
}

func (m *MermaidGenerator) fileLabel(path string, funcs int) string {
	parts := []string{fmt.Sprintf("%s\\n(%d funcs)", path, funcs)}
	if metric, ok := m.metrics[path]; ok {
		parts = append(parts, fmt.Sprintf("(d=%d in=%d out=%d)", metric.Depth, metric.FanIn, metric.FanOut))
	}
	return strings.Join(parts, "\\n")
}

func sanitizeMermaidID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}

func makeMermaidIDs(names []string, prefix string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := prefix + sanitizeMermaidID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func intersectOrdered(ordered []string, set map[string]bool) []string {
	out := make([]string, 0)
	for _, item := range ordered {
		if set[item] {
			out = append(out, item)
		}
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}
