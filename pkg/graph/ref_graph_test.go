package graph

import (
	"reflect"
	"sort"
	"testing"
)

func TestNewRefGraph(t *testing.T) {
	rg := NewRefGraph()
	if rg == nil {
		t.Fatal("NewRefGraph() returned nil")
	}

	if len(rg.Nodes()) != 0 {
		t.Errorf("New graph should have 0 nodes, got %d", len(rg.Nodes()))
	}
}

func TestAddNode(t *testing.T) {
	rg := NewRefGraph()

	first := rg.AddNode("shape1")
	again := rg.AddNode("shape1")

	if first != again {
		t.Errorf("Expected same ID for repeated AddNode, got %d and %d", first, again)
	}
	if len(rg.Nodes()) != 1 {
		t.Errorf("Expected 1 node, got %d", len(rg.Nodes()))
	}
	if rg.Name(first) != "shape1" {
		t.Errorf("Expected name shape1, got %s", rg.Name(first))
	}
}

func TestAddEdge(t *testing.T) {
	rg := NewRefGraph()

	rg.AddEdge("shape1", "line1")
	rg.AddEdge("shape1", "line1")
	rg.AddEdge("line1", "line1")

	edges := rg.Edges()
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(edges))
	}
	if edges[0][0] != "shape1" || edges[0][1] != "line1" {
		t.Errorf("Expected edge shape1->line1, got %v", edges[0])
	}
	if !rg.HasEdge("shape1", "line1") {
		t.Error("Expected HasEdge(shape1, line1)")
	}
}

func TestDependentsAndDependencies(t *testing.T) {
	rg := NewRefGraph()
	rg.AddNode("s")
	rg.AddEdge("s", "l2")
	rg.AddEdge("s", "l1")
	rg.AddEdge("other", "l1")

	if got := rg.Dependents("s"); !reflect.DeepEqual(got, []string{"l2", "l1"}) {
		t.Errorf("Expected dependents in insertion order [l2 l1], got %v", got)
	}
	if got := rg.Dependencies("l1"); !reflect.DeepEqual(got, []string{"s", "other"}) {
		t.Errorf("Expected dependencies [s other], got %v", got)
	}
	if got := rg.Dependents("missing"); got != nil {
		t.Errorf("Expected nil for unknown node, got %v", got)
	}
}

func TestRemoveNode(t *testing.T) {
	rg := NewRefGraph()
	rg.AddEdge("s", "l1")
	rg.AddEdge("l1", "a1")

	rg.RemoveNode("l1")

	if rg.HasNode("l1") {
		t.Error("Expected l1 to be removed")
	}
	if len(rg.Edges()) != 0 {
		t.Errorf("Expected edges of removed node to be gone, got %v", rg.Edges())
	}
}

func TestReachableVisitsEachNodeOnce(t *testing.T) {
	rg := NewRefGraph()
	// Diamond plus a cycle: s -> a -> c, s -> b -> c, c -> d -> c
	rg.AddEdge("s", "a")
	rg.AddEdge("s", "b")
	rg.AddEdge("a", "c")
	rg.AddEdge("b", "c")
	rg.AddEdge("c", "d")
	rg.AddEdge("d", "c")
	rg.AddNode("unrelated")

	got := rg.Reachable("s", "a")
	sort.Strings(got)
	want := []string{"a", "b", "c", "d", "s"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPathExists(t *testing.T) {
	rg := NewRefGraph()
	rg.AddEdge("a", "b")
	rg.AddEdge("b", "c")

	if !rg.PathExists("a", "c") {
		t.Error("Expected path a->c")
	}
	if rg.PathExists("c", "a") {
		t.Error("Expected no path c->a")
	}
	if !rg.PathExists("a", "a") {
		t.Error("Expected a node to reach itself")
	}
}

func TestInduced(t *testing.T) {
	rg := NewRefGraph()
	rg.AddEdge("a", "b")
	rg.AddEdge("b", "c")
	rg.AddEdge("c", "a")

	sub := rg.Induced([]string{"c", "a", "missing"})

	if got := sub.Nodes(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Expected nodes [a c], got %v", got)
	}
	if got := sub.Edges(); !reflect.DeepEqual(got, [][2]string{{"c", "a"}}) {
		t.Errorf("Expected only edge c->a, got %v", got)
	}
}
