package output

import (
	"fmt"
	"strings"

	"depgraph/internal/engine/graph"
)

type TSVGenerator struct {
	model *graph.Model
}

func NewTSVGenerator(m *graph.Model) *TSVGenerator {
	return &TSVGenerator{model: m}
}

// Generate lists every edge of the model, one per row, in the order a store
// receives them.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Kind\tFrom\tTo\n")
	for _, e := range t.model.DependsOn() {
		fmt.Fprintf(&buf, "depends_on\t%s\t%s\n", tsvField(e.From), tsvField(e.To))
	}
	for _, e := range t.model.Contains() {
		fmt.Fprintf(&buf, "contains\t%s\t%s\n", tsvField(e.File), tsvField(e.Function.String()))
	}
	for _, e := range t.model.Calls() {
		fmt.Fprintf(&buf, "calls\t%s\t%s\n", tsvField(e.Caller.String()), tsvField(e.Callee.String()))
	}

	return buf.String(), nil
}

// GenerateSkipped lists files that were kept in the graph without analysis.
func (t *TSVGenerator) GenerateSkipped() (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tReason\tError\n")
	for _, s := range t.model.Skipped() {
		msg := ""
		if s.Err != nil {
			msg = s.Err.Error()
		}
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", tsvField(s.Path), s.Reason, tsvField(msg))
	}

	return buf.String(), nil
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func tsvField(s string) string {
	return tsvEscaper.Replace(s)
}
