package cycles

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// TarjanSCC finds all strongly connected components using Tarjan's algorithm.
// Nodes and successors are visited in ascending ID order, so the result is
// the same for the same graph.
type TarjanSCC struct {
	graph      graph.Directed
	index      int
	stack      []int64
	onStack    map[int64]bool
	indices    map[int64]int
	lowLink    map[int64]int
	components [][]int64
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g graph.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph:      g,
		index:      0,
		stack:      make([]int64, 0),
		onStack:    make(map[int64]bool),
		indices:    make(map[int64]int),
		lowLink:    make(map[int64]int),
		components: make([][]int64, 0),
	}
}

// Components returns every strongly connected component, singletons
// included, in reverse topological order: a component comes after all
// components reachable from it.
func (t *TarjanSCC) Components() [][]int64 {
	if len(t.indices) == 0 {
		for _, id := range sortedIDs(t.graph.Nodes()) {
			if _, visited := t.indices[id]; !visited {
				t.strongConnect(id)
			}
		}
	}
	return t.components
}

// FindSCCs returns only the components with more than one node (cycles)
func (t *TarjanSCC) FindSCCs() [][]int64 {
	var sccs [][]int64
	for _, c := range t.Components() {
		if len(c) > 1 {
			sccs = append(sccs, c)
		}
	}
	return sccs
}

// strongConnect performs the recursive Tarjan's algorithm
func (t *TarjanSCC) strongConnect(nodeID int64) {
	// Set the depth index for this node
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	// Push node onto stack
	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true

	// Consider successors of node
	for _, successorID := range sortedIDs(t.graph.From(nodeID)) {
		if _, visited := t.indices[successorID]; !visited {
			// Successor has not yet been visited; recurse on it
			t.strongConnect(successorID)
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.lowLink[successorID])
		} else if t.onStack[successorID] {
			// Successor is on stack and hence in the current SCC
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.indices[successorID])
		}
	}

	// If nodeID is a root node, pop the stack and create an SCC
	if t.lowLink[nodeID] == t.indices[nodeID] {
		scc := make([]int64, 0)
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == nodeID {
				break
			}
		}
		t.components = append(t.components, scc)
	}
}

func sortedIDs(it graph.Nodes) []int64 {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
