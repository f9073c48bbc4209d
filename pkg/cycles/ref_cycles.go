package cycles

import (
	"sort"

	"github.com/ritzau/pathlink/pkg/graph"
)

// ReferenceCycle is a set of elements whose geometry depends on each other
type ReferenceCycle struct {
	Elements []string // Element ids in the cycle, sorted
}

// FindReferenceCycles finds all cycles in the reference graph
func FindReferenceCycles(rg *graph.RefGraph) []ReferenceCycle {
	tarjan := NewTarjanSCC(rg.Graph())

	cycles := make([]ReferenceCycle, 0)
	for _, scc := range tarjan.FindSCCs() {
		cycles = append(cycles, ReferenceCycle{Elements: names(rg, scc)})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Elements[0] < cycles[j].Elements[0]
	})
	return cycles
}

// PropagationOrder groups the given elements into strongly connected
// components of their induced subgraph and orders the components so that
// every element comes after the elements it depends on. Elements inside
// one component are sorted by id.
func PropagationOrder(rg *graph.RefGraph, elements []string) [][]string {
	sub := rg.Induced(elements)
	components := NewTarjanSCC(sub.Graph()).Components()

	order := make([][]string, 0, len(components))
	for i := len(components) - 1; i >= 0; i-- {
		order = append(order, names(sub, components[i]))
	}
	return order
}

func names(rg *graph.RefGraph, ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, rg.Name(id))
	}
	sort.Strings(out)
	return out
}
