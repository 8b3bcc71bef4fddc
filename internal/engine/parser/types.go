// # internal/engine/parser/types.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree is a parsed source file. It owns the underlying tree-sitter tree and must be closed.
type Tree struct {
	Path     string
	Language string
	Source   []byte
	tree     *sitter.Tree
}

type Location struct {
	File   string
	Line   int
	Column int
}

func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

func (t *Tree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}

// Text returns the source text spanned by node.
func (t *Tree) Text(node *sitter.Node) string {
	return Text(node, t.Source)
}

func (t *Tree) Location(node *sitter.Node) Location {
	loc := NodeLocation(node)
	loc.File = t.Path
	return loc
}
