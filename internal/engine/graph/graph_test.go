package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func part(path string, fns ...FunctionNode) FilePart {
	file := NewSourceFile(path)
	body := ModuleBodyNode(file.Path)
	p := FilePart{
		File:      file,
		Functions: append([]FunctionNode{body}, fns...),
	}
	for _, fn := range p.Functions {
		p.Contains = append(p.Contains, ContainsEdge{File: file.Path, Function: fn.ID})
	}
	return p
}

func TestNewSourceFile(t *testing.T) {
	tests := []struct {
		in     string
		path   string
		module string
		name   string
	}{
		{"main.py", "main.py", "main", "main.py"},
		{"helpers/helper.py", "helpers/helper.py", "helper", "helper.py"},
		{`pkg\sub\__init__.py`, "pkg/sub/__init__.py", "__init__", "__init__.py"},
		{"./a/b.pyw", "a/b.pyw", "b", "b.pyw"},
	}
	for _, tt := range tests {
		f := NewSourceFile(tt.in)
		if f.Path != tt.path || f.Module != tt.module || f.Name() != tt.name {
			t.Errorf("NewSourceFile(%q) = %+v name=%q, want path=%q module=%q name=%q",
				tt.in, f, f.Name(), tt.path, tt.module, tt.name)
		}
	}
}

func TestFunctionID(t *testing.T) {
	id := NewFunctionNode("a/b.py", "run", 12).ID
	assert.Equal(t, "a/b.py:run:12", id.String())
	assert.False(t, id.IsModuleBody())

	body := ModuleBodyID("a/b.py")
	assert.Equal(t, "a/b.py:__module__:0", body.String())
	assert.True(t, body.IsModuleBody())
	assert.Equal(t, body, ModuleBodyNode("a/b.py").ID)
}

func TestModuleIndex(t *testing.T) {
	idx := NewModuleIndex([]SourceFile{
		NewSourceFile("z/util.py"),
		NewSourceFile("a/util.py"),
		NewSourceFile("main.py"),
	})
	assert.Equal(t, []string{"a/util.py", "z/util.py"}, idx.Lookup("util"))
	assert.True(t, idx.Has("main"))
	assert.False(t, idx.Has("os"))
	assert.Nil(t, idx.Lookup("os"))
	assert.Equal(t, 2, idx.Len())

	var empty *ModuleIndex
	assert.False(t, empty.Has("x"))
	assert.Equal(t, 0, empty.Len())
}

func TestModuleIndex_LookupQualified(t *testing.T) {
	idx := NewModuleIndex([]SourceFile{
		NewSourceFile("src/helpers/helper.py"),
		NewSourceFile("helpers/helper.py"),
		NewSourceFile("pkg/__init__.py"),
		NewSourceFile("pkg/sub/__init__.py"),
		NewSourceFile("main.py"),
	})

	assert.Equal(t, []string{"helpers/helper.py", "src/helpers/helper.py"}, idx.LookupQualified("helpers.helper"))
	assert.Equal(t, []string{"src/helpers/helper.py"}, idx.LookupQualified("src.helpers.helper"))
	assert.Equal(t, []string{"pkg/__init__.py"}, idx.LookupQualified("pkg"))
	assert.Equal(t, []string{"pkg/sub/__init__.py"}, idx.LookupQualified("pkg.sub"))
	assert.Equal(t, []string{"pkg/sub/__init__.py"}, idx.LookupQualified("sub"))
	assert.Empty(t, idx.LookupQualified("main"), "single segments only match packages")
	assert.Empty(t, idx.LookupQualified(""))

	var empty *ModuleIndex
	assert.Nil(t, empty.LookupQualified("a.b"))
}

func TestFunctionIndex_FanOut(t *testing.T) {
	helperA := NewFunctionNode("a.py", "helper", 3)
	helperB := NewFunctionNode("b.py", "helper", 7)
	caller := NewFunctionNode("c.py", "run", 1)

	idx := NewFunctionIndex([]FunctionNode{
		helperB, helperA, caller, ModuleBodyNode("a.py"),
	})
	assert.Equal(t, []FunctionID{helperA.ID, helperB.ID}, idx.Candidates("helper"))
	assert.Empty(t, idx.Candidates(ModuleBodyName), "module body must not be callable")

	edges, unresolved := idx.Resolve([]CallSite{
		{Caller: caller.ID, Callee: "helper"},
		{Caller: caller.ID, Callee: "print"},
	})
	require.Len(t, edges, 2)
	assert.Equal(t, CallsEdge{Caller: caller.ID, Callee: helperA.ID}, edges[0])
	assert.Equal(t, CallsEdge{Caller: caller.ID, Callee: helperB.ID}, edges[1])
	assert.Equal(t, 1, unresolved)
}

func TestAssemble_Empty(t *testing.T) {
	m := Assemble(nil)
	assert.Equal(t, Stats{}, m.Stats())
	assert.Empty(t, m.Files())
	assert.Empty(t, m.ImportCycles())
}

func TestAssemble_MergesParts(t *testing.T) {
	greet := NewFunctionNode("utils.py", "greet", 1)
	mainFn := NewFunctionNode("main.py", "main", 4)

	mainPart := part("main.py", mainFn)
	mainPart.DependsOn = []DependsOnEdge{{From: "main.py", To: "utils.py"}}
	mainPart.CallSites = []CallSite{
		{Caller: mainFn.ID, Callee: "greet", Line: 5},
		{Caller: ModuleBodyID("main.py"), Callee: "greet", Line: 7},
		{Caller: mainFn.ID, Callee: "print", Line: 6},
	}
	broken := part("broken.py")
	broken.Skipped = &SkippedFile{Path: "broken.py", Reason: SkipParse, Err: errors.New("syntax")}

	m := Assemble([]FilePart{mainPart, part("utils.py", greet), broken})

	stats := m.Stats()
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 5, stats.Functions)
	assert.Equal(t, 1, stats.DependsOn)
	assert.Equal(t, 5, stats.Contains)
	assert.Equal(t, 2, stats.Calls)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3, stats.CallSites)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, 8, stats.Nodes())
	assert.Equal(t, 8, stats.Edges())

	assert.ElementsMatch(t, []CallsEdge{
		{Caller: mainFn.ID, Callee: greet.ID},
		{Caller: ModuleBodyID("main.py"), Callee: greet.ID},
	}, m.Calls())
	assert.Equal(t, "broken.py (parse): syntax", m.Skipped()[0].String())
}

func TestModel_AccessorsReturnCopies(t *testing.T) {
	m := Assemble([]FilePart{part("a.py")})
	files := m.Files()
	files[0].Path = "mutated.py"
	assert.Equal(t, "a.py", m.Files()[0].Path)

	fns := m.Functions()
	fns[0].Name = "x"
	assert.Equal(t, ModuleBodyName, m.Functions()[0].Name)
}

func TestModel_EveryFileHasOneModuleBody(t *testing.T) {
	m := Assemble([]FilePart{part("a.py", NewFunctionNode("a.py", "f", 1)), part("b.py")})
	bodies := make(map[string]int)
	for _, c := range m.Contains() {
		if c.Function.IsModuleBody() {
			bodies[c.File]++
		}
	}
	assert.Equal(t, map[string]int{"a.py": 1, "b.py": 1}, bodies)
}

func importModel(edges ...DependsOnEdge) *Model {
	seen := make(map[string]bool)
	var parts []FilePart
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			parts = append(parts, part(p))
		}
	}
	for _, e := range edges {
		add(e.From)
		add(e.To)
	}
	if len(parts) > 0 {
		parts[0].DependsOn = edges
	}
	return Assemble(parts)
}

func TestImportCycles(t *testing.T) {
	m := importModel(
		DependsOnEdge{From: "a.py", To: "b.py"},
		DependsOnEdge{From: "b.py", To: "c.py"},
		DependsOnEdge{From: "c.py", To: "a.py"},
		DependsOnEdge{From: "c.py", To: "d.py"},
	)
	cycles := m.ImportCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, cycles[0])

	acyclic := importModel(DependsOnEdge{From: "a.py", To: "b.py"})
	assert.Empty(t, acyclic.ImportCycles())
}

func TestFindImportChain(t *testing.T) {
	m := importModel(
		DependsOnEdge{From: "a.py", To: "b.py"},
		DependsOnEdge{From: "b.py", To: "c.py"},
		DependsOnEdge{From: "a.py", To: "d.py"},
	)
	chain, ok := m.FindImportChain("a.py", "c.py")
	require.True(t, ok)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, chain)

	_, ok = m.FindImportChain("c.py", "a.py")
	assert.False(t, ok)
	_, ok = m.FindImportChain("a.py", "missing.py")
	assert.False(t, ok)
	self, ok := m.FindImportChain("a.py", "a.py")
	require.True(t, ok)
	assert.Equal(t, []string{"a.py"}, self)
}

func TestComputeFileMetrics(t *testing.T) {
	m := importModel(
		DependsOnEdge{From: "a.py", To: "b.py"},
		DependsOnEdge{From: "a.py", To: "b.py"},
		DependsOnEdge{From: "b.py", To: "c.py"},
		DependsOnEdge{From: "c.py", To: "b.py"},
	)
	metrics := m.ComputeFileMetrics()
	assert.Equal(t, FileMetrics{Depth: 1, FanIn: 0, FanOut: 1}, metrics["a.py"])
	assert.Equal(t, FileMetrics{Depth: 0, FanIn: 2, FanOut: 1}, metrics["b.py"])
	assert.Equal(t, FileMetrics{Depth: 0, FanIn: 1, FanOut: 1}, metrics["c.py"])
}
