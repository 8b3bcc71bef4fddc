package graph

import (
	"sort"
)

// FunctionIndex maps a simple function name to every function declared with it.
// Module-body markers are not callable and are never indexed.
type FunctionIndex struct {
	byName map[string][]FunctionID
}

func NewFunctionIndex(nodes []FunctionNode) *FunctionIndex {
	idx := &FunctionIndex{byName: make(map[string][]FunctionID)}
	for _, n := range nodes {
		if n.ID.IsModuleBody() {
			continue
		}
		idx.byName[n.Name] = append(idx.byName[n.Name], n.ID)
	}
	for name := range idx.byName {
		ids := idx.byName[name]
		sort.Slice(ids, func(i, j int) bool {
			return lessFunctionID(ids[i], ids[j])
		})
	}
	return idx
}

// Candidates returns every function named name, in file then line order.
func (idx *FunctionIndex) Candidates(name string) []FunctionID {
	return append([]FunctionID(nil), idx.byName[name]...)
}

// Resolve emits one Calls edge per (site, candidate). Names with no candidate are dropped;
// names with several candidates fan out to all of them.
func (idx *FunctionIndex) Resolve(sites []CallSite) ([]CallsEdge, int) {
	var edges []CallsEdge
	unresolved := 0
	for _, site := range sites {
		candidates := idx.byName[site.Callee]
		if len(candidates) == 0 {
			unresolved++
			continue
		}
		for _, callee := range candidates {
			edges = append(edges, CallsEdge{Caller: site.Caller, Callee: callee})
		}
	}
	return edges, unresolved
}

func lessFunctionID(a, b FunctionID) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Name < b.Name
}
