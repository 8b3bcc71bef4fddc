// Package extract derives imports, function definitions and call sites from
// parsed Python syntax trees.
package extract

import (
	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ImportTarget is one imported module path as written, without relative dots.
type ImportTarget struct {
	Module   string   // dotted path, e.g. "helpers.helper"
	Names    []string // imported names of a from-import
	Relative bool
	Line     int
}

// Top returns the first component of the module path.
func (t ImportTarget) Top() string {
	top, _, _ := strings.Cut(t.Module, ".")
	return top
}

// ImportTargets collects every import statement in the tree, including ones nested
// in functions or conditionals. "from . import x" carries no module path and is dropped.
func ImportTargets(tree *parser.Tree) []ImportTarget {
	var out []ImportTarget
	parser.Walk(tree.Root(), func(n *sitter.Node) bool {
		line := parser.NodeLocation(n).Line
		switch n.Kind() {
		case "import_statement":
			for _, name := range parser.FieldChildren(n, "name") {
				if module := importedName(tree, name); module != "" {
					out = append(out, ImportTarget{Module: module, Line: line})
				}
			}
			return false
		case "import_from_statement":
			target := ImportTarget{Line: line}
			moduleNode := n.ChildByFieldName("module_name")
			if moduleNode != nil && moduleNode.Kind() == "relative_import" {
				target.Relative = true
				moduleNode = parser.ChildOfKind(moduleNode, "dotted_name")
			}
			target.Module = dottedName(tree, moduleNode)
			if target.Module == "" {
				return false
			}
			target.Names = importedNames(tree, n)
			out = append(out, target)
			return false
		case "future_import_statement":
			out = append(out, ImportTarget{
				Module: "__future__",
				Names:  importedNames(tree, n),
				Line:   line,
			})
			return false
		}
		return true
	})
	return out
}

// DependencyEdges links path to every scanned file providing one of targets.
// A target matches by its top-level name against module names, and by its full
// dotted path (or path.name for from-imports) against file path suffixes.
// Unknown modules produce nothing and the file never depends on itself.
func DependencyEdges(path string, targets []ImportTarget, idx *graph.ModuleIndex) []graph.DependsOnEdge {
	found := make(map[string]bool)
	add := func(files []string) {
		for _, f := range files {
			if f != path {
				found[f] = true
			}
		}
	}
	for _, t := range targets {
		if t.Module == "" {
			continue
		}
		add(idx.Lookup(t.Top()))
		add(idx.LookupQualified(t.Module))
		for _, name := range t.Names {
			add(idx.LookupQualified(t.Module + "." + name))
		}
	}

	targetsSorted := make([]string, 0, len(found))
	for f := range found {
		targetsSorted = append(targetsSorted, f)
	}
	sort.Strings(targetsSorted)

	edges := make([]graph.DependsOnEdge, 0, len(targetsSorted))
	for _, to := range targetsSorted {
		edges = append(edges, graph.DependsOnEdge{From: path, To: to})
	}
	return edges
}

// importedName handles dotted_name and aliased_import ("a.b as c" yields "a.b").
func importedName(tree *parser.Tree, n *sitter.Node) string {
	if n.Kind() == "aliased_import" {
		return dottedName(tree, n.ChildByFieldName("name"))
	}
	return dottedName(tree, n)
}

func importedNames(tree *parser.Tree, stmt *sitter.Node) []string {
	var names []string
	for _, name := range parser.FieldChildren(stmt, "name") {
		if text := importedName(tree, name); text != "" {
			names = append(names, text)
		}
	}
	return names
}

// dottedName joins the identifiers of a dotted_name, ignoring whitespace and comments.
func dottedName(tree *parser.Tree, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "identifier" {
		return tree.Text(n)
	}
	var parts []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && child.Kind() == "identifier" {
			parts = append(parts, tree.Text(child))
		}
	}
	return strings.Join(parts, ".")
}
