// # internal/engine/graph/detect.go
package graph

import "sort"

// importAdjacency returns the sorted, de-duplicated DependsOn targets per file.
func (m *Model) importAdjacency() ([]string, map[string][]string) {
	nodes := make([]string, 0, len(m.files))
	for _, f := range m.files {
		nodes = append(nodes, f.Path)
	}
	sort.Strings(nodes)

	sets := make(map[string]map[string]bool, len(nodes))
	for _, e := range m.dependsOn {
		if sets[e.From] == nil {
			sets[e.From] = make(map[string]bool)
		}
		sets[e.From][e.To] = true
	}
	adjacency := make(map[string][]string, len(sets))
	for from, targets := range sets {
		list := make([]string, 0, len(targets))
		for to := range targets {
			list = append(list, to)
		}
		sort.Strings(list)
		adjacency[from] = list
	}
	return nodes, adjacency
}

// ImportCycles lists the import cycles found by a depth-first walk over
// DependsOn edges. Each cycle starts at the file where the walk entered it.
func (m *Model) ImportCycles() [][]string {
	nodes, adjacency := m.importAdjacency()

	var cycles [][]string
	visited := make(map[string]bool, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if !visited[n] {
			findCycles(n, adjacency, visited, onStack, nil, &cycles)
		}
	}
	return cycles
}

func findCycles(curr string, adjacency map[string][]string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range adjacency[curr] {
		if onStack[next] {
			for i, p := range path {
				if p == next {
					cycle := make([]string, len(path)-i)
					copy(cycle, path[i:])
					*cycles = append(*cycles, cycle)
					break
				}
			}
		} else if !visited[next] {
			findCycles(next, adjacency, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// FindImportChain returns the shortest DependsOn path from one file to another.
func (m *Model) FindImportChain(from, to string) ([]string, bool) {
	nodes, adjacency := m.importAdjacency()
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}
	if !known[from] || !known[to] {
		return nil, false
	}
	if from == to {
		return []string{from}, true
	}

	queue := []string{from}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[curr] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr
			if next == to {
				chain := []string{to}
				for at := curr; at != from; at = prev[at] {
					chain = append(chain, at)
				}
				chain = append(chain, from)
				for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
					chain[i], chain[j] = chain[j], chain[i]
				}
				return chain, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}
