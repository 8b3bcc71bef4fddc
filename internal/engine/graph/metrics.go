package graph

import "sort"

type FileMetrics struct {
	Depth     int // longest import chain below this file, cycles collapsed
	FanIn     int
	FanOut    int
	Functions int
	CallsOut  int
}

// ComputeFileMetrics summarises each file's position in the import graph and its call volume.
func (m *Model) ComputeFileMetrics() map[string]FileMetrics {
	nodes, adjacency := m.importAdjacency()

	fanIn := make(map[string]int, len(nodes))
	for _, from := range nodes {
		for _, to := range adjacency[from] {
			fanIn[to]++
		}
	}

	componentOf, components := stronglyConnectedComponents(nodes, adjacency)
	componentEdges := make(map[int]map[int]bool, len(components))
	for _, from := range nodes {
		for _, to := range adjacency[from] {
			fc, tc := componentOf[from], componentOf[to]
			if fc == tc {
				continue
			}
			if componentEdges[fc] == nil {
				componentEdges[fc] = make(map[int]bool)
			}
			componentEdges[fc][tc] = true
		}
	}

	depthByComp := make(map[int]int, len(components))
	var depth func(int) int
	depth = func(comp int) int {
		if d, ok := depthByComp[comp]; ok {
			return d
		}
		best := 0
		for next := range componentEdges[comp] {
			if d := 1 + depth(next); d > best {
				best = d
			}
		}
		depthByComp[comp] = best
		return best
	}

	functions := make(map[string]int, len(nodes))
	for _, fn := range m.functions {
		if !fn.ID.IsModuleBody() {
			functions[fn.File]++
		}
	}
	callsOut := make(map[string]int, len(nodes))
	for _, c := range m.calls {
		callsOut[c.Caller.File]++
	}

	out := make(map[string]FileMetrics, len(nodes))
	for _, n := range nodes {
		out[n] = FileMetrics{
			Depth:     depth(componentOf[n]),
			FanIn:     fanIn[n],
			FanOut:    len(adjacency[n]),
			Functions: functions[n],
			CallsOut:  callsOut[n],
		}
	}
	return out
}

// stronglyConnectedComponents is Tarjan's algorithm over a sorted node list.
func stronglyConnectedComponents(nodes []string, adjacency map[string][]string) (map[string]int, [][]string) {
	index := 0
	stack := make([]string, 0, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	indexByNode := make(map[string]int, len(nodes))
	lowLink := make(map[string]int, len(nodes))
	componentOf := make(map[string]int, len(nodes))
	var components [][]string

	var strongConnect func(string)
	strongConnect = func(v string) {
		indexByNode[v] = index
		lowLink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adjacency[v] {
			if _, seen := indexByNode[w]; !seen {
				strongConnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] && indexByNode[w] < lowLink[v] {
				lowLink[v] = indexByNode[w]
			}
		}
		if lowLink[v] != indexByNode[v] {
			return
		}

		var component []string
		for {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[last] = false
			component = append(component, last)
			if last == v {
				break
			}
		}
		sort.Strings(component)
		id := len(components)
		components = append(components, component)
		for _, n := range component {
			componentOf[n] = id
		}
	}

	for _, n := range nodes {
		if _, seen := indexByNode[n]; !seen {
			strongConnect(n)
		}
	}
	return componentOf, components
}
