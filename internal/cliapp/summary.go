package cliapp

import (
	"fmt"
	"io"
	"strings"
	"time"

	coreapp "depgraph/internal/core/app"
	"depgraph/internal/data/store"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Width(12)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// cypherHints are starter queries for browsing a loaded graph.
var cypherHints = []struct{ title, query string }{
	{"Files", "MATCH (f:File)-[r:DEPENDS_ON]->(g:File) RETURN f, r, g;"},
	{"Functions (structure)", "MATCH (f:File)-[:CONTAINS]->(fn:Function) RETURN f, fn LIMIT 100;"},
	{"Function calls", "MATCH (fn:Function)-[c:CALLS]->(callee:Function) RETURN fn, c, callee LIMIT 100;"},
}

type summaryInput struct {
	Result  *coreapp.Result
	Load    store.LoadStats
	Store   string
	Exports []string
	Cypher  bool
}

func printSummary(w io.Writer, in summaryInput) {
	fmt.Fprint(w, renderSummary(in))
}

func renderSummary(in summaryInput) string {
	res := in.Result
	stats := res.Model.Stats()
	var b strings.Builder

	b.WriteString(titleStyle.Render("depgraph " + res.Root))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString("  " + labelStyle.Render(label) + value + "\n")
	}
	row("run", res.RunID)
	row("files", fmt.Sprintf("%d", stats.Files))
	row("functions", fmt.Sprintf("%d", stats.Functions))
	row("depends_on", fmt.Sprintf("%d", stats.DependsOn))
	row("contains", fmt.Sprintf("%d", stats.Contains))
	row("calls", fmt.Sprintf("%d (%d of %d call sites unresolved)", stats.Calls, stats.Unresolved, stats.CallSites))
	row("duration", res.Duration().Round(time.Millisecond).String())
	if in.Store != "" {
		load := fmt.Sprintf("%s (%d upserts", in.Store, in.Load.Total())
		if in.Load.Cleared {
			load += ", cleared first"
		}
		row("store", load+")")
	}

	skipped := res.Model.Skipped()
	if len(skipped) > 0 {
		b.WriteString("\n" + skippedStyle.Render(fmt.Sprintf("Skipped files (%d)", len(skipped))) + "\n")
		for _, s := range skipped {
			b.WriteString("  - " + s.String() + "\n")
		}
	}

	if len(res.Cycles) > 0 {
		b.WriteString("\n" + cycleStyle.Render(fmt.Sprintf("Import cycles (%d)", len(res.Cycles))) + "\n")
		for _, cycle := range res.Cycles {
			b.WriteString("  - " + strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ") + "\n")
		}
	}

	if len(in.Exports) > 0 {
		b.WriteString("\nExports\n")
		for _, path := range in.Exports {
			b.WriteString("  - " + path + "\n")
		}
	}

	if len(skipped) == 0 && len(res.Cycles) == 0 {
		b.WriteString("\n" + successStyle.Render("All files analyzed") + "\n")
	}

	if in.Cypher {
		b.WriteString("\n" + hintStyle.Render("Pipe the script into cypher-shell, then try:") + "\n")
		for _, h := range cypherHints {
			b.WriteString("  " + h.title + ":\n    " + h.query + "\n")
		}
	}
	return b.String()
}
