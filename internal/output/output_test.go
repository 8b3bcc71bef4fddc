package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depgraph/internal/engine/graph"
)

// cyclicModel has a.py <-> b.py, a call from a.run to b.helper, and an
// unparsable c.py.
func cyclicModel() *graph.Model {
	run := graph.NewFunctionNode("a.py", "run", 2)
	helper := graph.NewFunctionNode("b.py", "helper", 4)
	withBody := func(path string, fns ...graph.FunctionNode) graph.FilePart {
		p := graph.FilePart{File: graph.NewSourceFile(path)}
		p.Functions = append([]graph.FunctionNode{graph.ModuleBodyNode(path)}, fns...)
		for _, fn := range p.Functions {
			p.Contains = append(p.Contains, graph.ContainsEdge{File: path, Function: fn.ID})
		}
		return p
	}
	a := withBody("a.py", run)
	a.DependsOn = []graph.DependsOnEdge{{From: "a.py", To: "b.py"}}
	a.CallSites = []graph.CallSite{{Caller: run.ID, Callee: "helper", Line: 3}}
	b := withBody("b.py", helper)
	b.DependsOn = []graph.DependsOnEdge{{From: "b.py", To: "a.py"}}
	c := withBody("c.py")
	c.Skipped = &graph.SkippedFile{Path: "c.py", Reason: graph.SkipParse, Err: errors.New("syntax error at line 1, column 4")}
	return graph.Assemble([]graph.FilePart{a, b, c})
}

func TestDOTGenerator(t *testing.T) {
	m := cyclicModel()
	gen := NewDOTGenerator(m)
	dot, err := gen.Generate(m.ImportCycles())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(dot, "digraph dependencies") {
		t.Error("DOT output missing digraph header")
	}
	if !strings.Contains(dot, "\"a.py\" -> \"b.py\"") {
		t.Error("DOT output missing edge a.py -> b.py")
	}
	if !strings.Contains(dot, "CYCLE") {
		t.Error("DOT output missing CYCLE label")
	}
	if !strings.Contains(dot, "\"c.py\" [label=\"c.py\\n(0 funcs)\", fillcolor=\"gainsboro\"") {
		t.Errorf("DOT output missing skipped file styling:\n%s", dot)
	}
}

func TestDOTGenerator_Calls(t *testing.T) {
	dot, err := NewDOTGenerator(cyclicModel()).GenerateCalls()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot, "\"a.py:run:2\" -> \"b.py:helper:4\";") {
		t.Errorf("call edge missing:\n%s", dot)
	}
	if !strings.Contains(dot, "\"c.py:__module__:0\" [label=\"__module__\"") {
		t.Errorf("module body node missing:\n%s", dot)
	}
}

func TestMermaidGenerator(t *testing.T) {
	m := cyclicModel()
	gen := NewMermaidGenerator(m)
	gen.SetFileMetrics(m.ComputeFileMetrics())
	gen.IncludeCalls(true)
	out, err := gen.Generate(m.ImportCycles())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"flowchart LR",
		"f_a_py -->|CYCLE| f_b_py",
		"fn_a_py_run_2 -.-> fn_b_py_helper_4",
		"class f_c_py skippedNode;",
		"subgraph f_a_py_fns[\"a.py\"]",
		"linkStyle 2 stroke:#777777",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}
}

func TestMakeMermaidIDs_Unique(t *testing.T) {
	ids := makeMermaidIDs([]string{"a.py", "a_py", "a-py"}, "f_")
	if ids["a.py"] != "f_a_py" || ids["a_py"] != "f_a_py_2" || ids["a-py"] != "f_a_py_3" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestTSVGenerator(t *testing.T) {
	gen := NewTSVGenerator(cyclicModel())
	tsv, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	// header + 2 depends_on + 5 contains + 1 calls
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines in TSV, got %d:\n%s", len(lines), tsv)
	}
	if lines[1] != "depends_on\ta.py\tb.py" {
		t.Errorf("unexpected TSV line: %s", lines[1])
	}
	if lines[8] != "calls\ta.py:run:2\tb.py:helper:4" {
		t.Errorf("unexpected TSV line: %s", lines[8])
	}

	skipped, err := gen.GenerateSkipped()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(skipped, "c.py\tparse\tsyntax error at line 1, column 4") {
		t.Errorf("unexpected skipped TSV:\n%s", skipped)
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	m := cyclicModel()
	targets := Targets{
		DOT: filepath.Join(dir, "out", "graph.dot"),
		TSV: filepath.Join(dir, "graph.tsv"),
	}
	written, err := WriteAll(m, m.ImportCycles(), targets)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 files written, got %v", written)
	}
	if _, err := os.Stat(targets.DOT); err != nil {
		t.Fatalf("dot file missing: %v", err)
	}
	if (Targets{}).Empty() != true || targets.Empty() {
		t.Fatal("Empty reported wrong value")
	}
}
