package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Text returns the source slice spanned by node, or "" for a nil node.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

// NodeLocation returns the 1-based line and column of node's first byte.
func NodeLocation(node *sitter.Node) Location {
	if node == nil {
		return Location{}
	}
	pos := node.StartPosition()
	return Location{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// ChildOfKind returns the first direct child with the given kind.
func ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// FirstError returns the first ERROR or MISSING node in document order.
func FirstError(node *sitter.Node) *sitter.Node {
	if node == nil || !node.HasError() {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := FirstError(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}

// FirstOfKind returns the first node in document order whose kind is in kinds.
func FirstOfKind(node *sitter.Node, kinds map[string]string) *sitter.Node {
	var found *sitter.Node
	Walk(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if _, ok := kinds[n.Kind()]; ok {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits node and its descendants depth-first. Returning false from fn skips the node's children.
func Walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		Walk(node.Child(i), fn)
	}
}

// FieldChildren returns every child of node stored under field, in source order.
func FieldChildren(node *sitter.Node, field string) []*sitter.Node {
	if node == nil {
		return nil
	}
	cursor := node.Walk()
	defer cursor.Close()
	children := node.ChildrenByFieldName(field, cursor)
	out := make([]*sitter.Node, 0, len(children))
	for i := range children {
		out = append(out, &children[i])
	}
	return out
}
