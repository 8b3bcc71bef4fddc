package extract

import (
	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"
)

// FilePart runs both extractors over a parsed file.
func FilePart(file graph.SourceFile, tree *parser.Tree, idx *graph.ModuleIndex) graph.FilePart {
	fns := VisitFunctions(tree)
	return graph.FilePart{
		File:      file,
		DependsOn: DependencyEdges(file.Path, ImportTargets(tree), idx),
		Functions: fns.Nodes,
		Contains:  fns.Contains,
		CallSites: fns.Calls,
	}
}

// SkippedPart keeps an unreadable or unparsable file in the graph with only its module body.
func SkippedPart(file graph.SourceFile, reason graph.SkipReason, err error) graph.FilePart {
	fns := ModuleBodyOnly(file.Path)
	return graph.FilePart{
		File:      file,
		Functions: fns.Nodes,
		Contains:  fns.Contains,
		Skipped:   &graph.SkippedFile{Path: file.Path, Reason: reason, Err: err},
	}
}
