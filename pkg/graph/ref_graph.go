// Package graph keeps the reference graph of a pathway document. An edge
// points from an element to an element whose geometry depends on it: a
// link target to the line linking it, a line to its anchors, a member to
// its group, a data node to its states.
package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// RefGraph is a directed graph keyed by element id.
type RefGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // Map from element id to graph ID
	names  map[int64]string // Map from graph ID to element id
	nextID int64
}

// NewRefGraph creates an empty reference graph
func NewRefGraph() *RefGraph {
	return &RefGraph{
		graph:  simple.NewDirectedGraph(),
		ids:    make(map[string]int64),
		names:  make(map[int64]string),
		nextID: 0,
	}
}

// AddNode adds an element to the graph and returns its graph ID. Adding an
// existing element returns the ID it already has.
func (rg *RefGraph) AddNode(name string) int64 {
	if id, exists := rg.ids[name]; exists {
		return id
	}

	id := rg.nextID
	rg.ids[name] = id
	rg.names[id] = name
	rg.graph.AddNode(simple.Node(id))

	rg.nextID++
	return id
}

// RemoveNode removes an element and all its edges
func (rg *RefGraph) RemoveNode(name string) {
	id, exists := rg.ids[name]
	if !exists {
		return
	}
	rg.graph.RemoveNode(id)
	delete(rg.ids, name)
	delete(rg.names, id)
}

// HasNode reports whether the element is in the graph
func (rg *RefGraph) HasNode(name string) bool {
	_, exists := rg.ids[name]
	return exists
}

// AddEdge records that to depends on from. Self edges are ignored.
func (rg *RefGraph) AddEdge(from, to string) {
	if from == to {
		return
	}
	fromID := rg.AddNode(from)
	toID := rg.AddNode(to)

	if !rg.graph.HasEdgeFromTo(fromID, toID) {
		rg.graph.SetEdge(rg.graph.NewEdge(rg.graph.Node(fromID), rg.graph.Node(toID)))
	}
}

// RemoveEdge removes the edge from -> to if present
func (rg *RefGraph) RemoveEdge(from, to string) {
	fromID, ok1 := rg.ids[from]
	toID, ok2 := rg.ids[to]
	if !ok1 || !ok2 {
		return
	}
	rg.graph.RemoveEdge(fromID, toID)
}

// HasEdge reports whether to depends directly on from
func (rg *RefGraph) HasEdge(from, to string) bool {
	fromID, ok1 := rg.ids[from]
	toID, ok2 := rg.ids[to]
	return ok1 && ok2 && rg.graph.HasEdgeFromTo(fromID, toID)
}

// ID returns the graph ID of an element
func (rg *RefGraph) ID(name string) (int64, bool) {
	id, ok := rg.ids[name]
	return id, ok
}

// Name returns the element id of a graph ID
func (rg *RefGraph) Name(id int64) string {
	return rg.names[id]
}

// Graph returns the underlying directed graph
func (rg *RefGraph) Graph() *simple.DirectedGraph {
	return rg.graph
}

// Nodes returns all element ids in insertion order
func (rg *RefGraph) Nodes() []string {
	return rg.sorted(rg.graph.Nodes())
}

// Edges returns all edges as [from, to] pairs, sorted
func (rg *RefGraph) Edges() [][2]string {
	var edges [][2]string

	iter := rg.graph.Edges()
	for iter.Next() {
		edge := iter.Edge()
		edges = append(edges, [2]string{rg.names[edge.From().ID()], rg.names[edge.To().ID()]})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// Dependents returns the elements that depend directly on name
func (rg *RefGraph) Dependents(name string) []string {
	id, exists := rg.ids[name]
	if !exists {
		return nil
	}
	return rg.sorted(rg.graph.From(id))
}

// Dependencies returns the elements name depends on directly
func (rg *RefGraph) Dependencies(name string) []string {
	id, exists := rg.ids[name]
	if !exists {
		return nil
	}
	return rg.sorted(rg.graph.To(id))
}

// Reachable returns every element reachable from the given ones,
// including them. Each element appears once no matter how many paths
// lead to it; the order within one breadth-first level is unspecified.
func (rg *RefGraph) Reachable(from ...string) []string {
	var out []string
	bf := traverse.BreadthFirst{
		Visit: func(n gonum.Node) {
			out = append(out, rg.names[n.ID()])
		},
	}
	for _, name := range from {
		id, exists := rg.ids[name]
		if !exists || bf.Visited(rg.graph.Node(id)) {
			continue
		}
		bf.Walk(rg.graph, rg.graph.Node(id), nil)
	}
	return out
}

// PathExists reports whether to is reachable from from
func (rg *RefGraph) PathExists(from, to string) bool {
	fromID, ok1 := rg.ids[from]
	toID, ok2 := rg.ids[to]
	if !ok1 || !ok2 {
		return false
	}
	if fromID == toID {
		return true
	}
	var bf traverse.BreadthFirst
	found := bf.Walk(rg.graph, rg.graph.Node(fromID), func(n gonum.Node, _ int) bool {
		return n.ID() == toID
	})
	return found != nil
}

// Induced returns the subgraph on the given elements, keeping their
// relative insertion order.
func (rg *RefGraph) Induced(names []string) *RefGraph {
	keep := make([]string, 0, len(names))
	for _, name := range names {
		if rg.HasNode(name) {
			keep = append(keep, name)
		}
	}
	sort.Slice(keep, func(i, j int) bool { return rg.ids[keep[i]] < rg.ids[keep[j]] })

	sub := NewRefGraph()
	for _, name := range keep {
		sub.AddNode(name)
	}
	for _, name := range keep {
		for _, dep := range rg.Dependents(name) {
			if sub.HasNode(dep) {
				sub.AddEdge(name, dep)
			}
		}
	}
	return sub
}

// sorted drains a node iterator into element ids ordered by graph ID.
func (rg *RefGraph) sorted(it gonum.Nodes) []string {
	nodes := gonum.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })

	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, rg.names[n.ID()])
	}
	return out
}
