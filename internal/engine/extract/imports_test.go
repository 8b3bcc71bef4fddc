package extract

import (
	"context"
	"testing"

	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, path, src string) *parser.Tree {
	t.Helper()
	loader, err := parser.NewGrammarLoader(nil)
	require.NoError(t, err)
	tree, err := parser.NewParser(loader, 1).ParseFile(context.Background(), path, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func modules(targets []ImportTarget) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.Module)
	}
	return out
}

func TestImportTargets(t *testing.T) {
	src := `from __future__ import annotations
import os
import a.b.c
import x.y as z, json
from pkg.mod import thing, other as o
from .rel.sub import r
from . import sibling
from .. import parent
from star import *

def lazy():
    import inner

if TYPE_CHECKING:
    from typing_mod import T
`
	targets := ImportTargets(parse(t, "m.py", src))

	assert.Equal(t, []string{
		"__future__", "os", "a.b.c", "x.y", "json", "pkg.mod", "rel.sub", "star", "inner", "typing_mod",
	}, modules(targets))
	tops := make([]string, 0, len(targets))
	for _, tg := range targets {
		tops = append(tops, tg.Top())
	}
	assert.Equal(t, []string{
		"__future__", "os", "a", "x", "json", "pkg", "rel", "star", "inner", "typing_mod",
	}, tops)

	byModule := make(map[string]ImportTarget)
	for _, tg := range targets {
		byModule[tg.Module] = tg
	}
	assert.Equal(t, []string{"thing", "other"}, byModule["pkg.mod"].Names)
	assert.True(t, byModule["rel.sub"].Relative)
	assert.False(t, byModule["pkg.mod"].Relative)
	assert.Equal(t, []string{"annotations"}, byModule["__future__"].Names)
	assert.Empty(t, byModule["star"].Names)
	assert.Equal(t, 3, byModule["a.b.c"].Line)
	assert.Equal(t, 12, byModule["inner"].Line)
}

func TestImportTargets_NoImports(t *testing.T) {
	assert.Empty(t, ImportTargets(parse(t, "m.py", "x = 1\n")))
	assert.Empty(t, ImportTargets(parse(t, "m.py", "")))
}

func TestDependencyEdges(t *testing.T) {
	idx := graph.NewModuleIndex([]graph.SourceFile{
		graph.NewSourceFile("main.py"),
		graph.NewSourceFile("utils.py"),
		graph.NewSourceFile("lib/utils.py"),
		graph.NewSourceFile("helpers/__init__.py"),
		graph.NewSourceFile("helpers/helper.py"),
	})

	tests := []struct {
		name    string
		path    string
		targets []ImportTarget
		want    []graph.DependsOnEdge
	}{
		{
			name:    "external import",
			path:    "main.py",
			targets: []ImportTarget{{Module: "os"}, {Module: "requests.adapters"}},
			want:    []graph.DependsOnEdge{},
		},
		{
			name:    "ambiguous module fans out",
			path:    "main.py",
			targets: []ImportTarget{{Module: "utils"}},
			want: []graph.DependsOnEdge{
				{From: "main.py", To: "lib/utils.py"},
				{From: "main.py", To: "utils.py"},
			},
		},
		{
			name:    "self import excluded",
			path:    "utils.py",
			targets: []ImportTarget{{Module: "utils"}, {Module: "utils", Names: []string{"utils"}}},
			want:    []graph.DependsOnEdge{{From: "utils.py", To: "lib/utils.py"}},
		},
		{
			name:    "dotted from-import matches path",
			path:    "main.py",
			targets: []ImportTarget{{Module: "helpers.helper", Names: []string{"add_numbers"}}},
			want:    []graph.DependsOnEdge{{From: "main.py", To: "helpers/helper.py"}},
		},
		{
			name:    "package import matches initialiser",
			path:    "main.py",
			targets: []ImportTarget{{Module: "helpers"}},
			want:    []graph.DependsOnEdge{{From: "main.py", To: "helpers/__init__.py"}},
		},
		{
			name:    "submodule from-import",
			path:    "main.py",
			targets: []ImportTarget{{Module: "lib", Names: []string{"utils"}}},
			want:    []graph.DependsOnEdge{{From: "main.py", To: "lib/utils.py"}},
		},
		{
			name:    "duplicate imports collapse",
			path:    "main.py",
			targets: []ImportTarget{{Module: "helper"}, {Module: "helper"}},
			want:    []graph.DependsOnEdge{{From: "main.py", To: "helpers/helper.py"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DependencyEdges(tt.path, tt.targets, idx))
		})
	}
}

func TestDependencyEdges_OneDirection(t *testing.T) {
	files := []graph.SourceFile{graph.NewSourceFile("a.py"), graph.NewSourceFile("b.py")}
	idx := graph.NewModuleIndex(files)

	aEdges := DependencyEdges("a.py", ImportTargets(parse(t, "a.py", "import b\n")), idx)
	bEdges := DependencyEdges("b.py", ImportTargets(parse(t, "b.py", "import os\n")), idx)

	assert.Equal(t, []graph.DependsOnEdge{{From: "a.py", To: "b.py"}}, aEdges)
	assert.Empty(t, bEdges)
}
