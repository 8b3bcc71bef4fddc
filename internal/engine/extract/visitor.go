package extract

import (
	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// FileFunctions is the function-level view of one file.
type FileFunctions struct {
	Nodes    []graph.FunctionNode // module-body node first
	Calls    []graph.CallSite
	Contains []graph.ContainsEdge
}

// ModuleBodyOnly is the function view of a file that could not be analysed.
func ModuleBodyOnly(path string) FileFunctions {
	body := graph.ModuleBodyNode(path)
	return FileFunctions{
		Nodes:    []graph.FunctionNode{body},
		Contains: []graph.ContainsEdge{{File: path, Function: body.ID}},
	}
}

type functionVisitor struct {
	tree *parser.Tree
	path string
	out  *FileFunctions
}

// VisitFunctions records every function definition and call site in the tree.
// Each call is attributed to its nearest enclosing def, or to the module body.
func VisitFunctions(tree *parser.Tree) FileFunctions {
	out := ModuleBodyOnly(tree.Path)
	v := &functionVisitor{tree: tree, path: tree.Path, out: &out}
	v.visit(tree.Root(), graph.ModuleBodyID(tree.Path))
	return out
}

// visit walks n with scope as the enclosing function. scope is passed by value,
// so returning from a nested def restores the outer scope.
func (v *functionVisitor) visit(n *sitter.Node, scope graph.FunctionID) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "function_definition":
		fn := v.define(n)
		v.visitChildren(n, fn.ID)
		return
	case "decorated_definition":
		// Decorators of a def run as part of that def; class decorators stay in scope.
		def := n.ChildByFieldName("definition")
		if def == nil || def.Kind() != "function_definition" {
			break
		}
		fn := v.define(def)
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil && child.Kind() == "decorator" {
				v.visit(child, fn.ID)
			}
		}
		v.visitChildren(def, fn.ID)
		return
	case "call":
		if callee := calleeName(v.tree, n.ChildByFieldName("function")); callee != "" {
			v.out.Calls = append(v.out.Calls, graph.CallSite{
				Caller: scope,
				Callee: callee,
				Line:   parser.NodeLocation(n).Line,
			})
		}
	}
	v.visitChildren(n, scope)
}

// define records the function declared by a function_definition node.
func (v *functionVisitor) define(def *sitter.Node) graph.FunctionNode {
	fn := graph.NewFunctionNode(v.path, v.tree.Text(def.ChildByFieldName("name")), parser.NodeLocation(def).Line)
	v.out.Nodes = append(v.out.Nodes, fn)
	v.out.Contains = append(v.out.Contains, graph.ContainsEdge{File: v.path, Function: fn.ID})
	return fn
}

func (v *functionVisitor) visitChildren(n *sitter.Node, scope graph.FunctionID) {
	for i := uint(0); i < n.ChildCount(); i++ {
		v.visit(n.Child(i), scope)
	}
}

// calleeName returns "foo" for foo(...) and for any receiver.foo(...).
// Other call targets such as f()() or x[0]() have no simple name.
func calleeName(tree *parser.Tree, target *sitter.Node) string {
	if target == nil {
		return ""
	}
	switch target.Kind() {
	case "identifier":
		return tree.Text(target)
	case "attribute":
		return tree.Text(target.ChildByFieldName("attribute"))
	}
	return ""
}
