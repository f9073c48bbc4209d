package pathway

import (
	"github.com/ritzau/pathlink/pkg/cycles"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
)

// Report describes one propagation pass.
type Report struct {
	Changed    []string   `json:"changed"`           // Elements the pass started from
	Recomputed []string   `json:"recomputed"`        // Lines in the order they were recomputed
	States     []string   `json:"states,omitempty"`  // States moved onto their hosts
	Cycles     [][]string `json:"cycles,omitempty"`  // Cyclic components met on the way
	Demoted    []PointRef `json:"demoted,omitempty"` // Points that lost their reference
	Visited    int        `json:"visited"`           // Elements reached from the changes
}

type passState struct {
	recomputed []string
}

// Propagate brings the geometry of everything that depends on the changed
// elements up to date. Each element reachable from the changes is visited
// once; upstream elements are processed before their dependents, and a
// line is recomputed at most once even when it sits on a reference cycle.
func (d *Document) Propagate(ch Changes) Report {
	report := Report{Demoted: ch.Demoted}
	if d.pass != nil {
		// Reentrant calls would break the once-per-pass guarantee.
		logging.Error("Propagate called during propagation", "changes", ch.Elements)
		return report
	}

	var origins []string
	for _, id := range ch.Elements {
		if _, ok := d.Lookup(id); ok {
			origins = append(origins, id)
		}
	}
	report.Changed = origins

	affected := d.refs.Reachable(origins...)
	report.Visited = len(affected)

	for _, id := range affected {
		if c, ok := d.cache[id]; ok {
			c.state = stateDirty
		}
	}

	d.pass = &passState{}
	defer func() { d.pass = nil }()

	for _, component := range cycles.PropagationOrder(d.refs, affected) {
		if len(component) > 1 {
			report.Cycles = append(report.Cycles, component)
		}
		for _, id := range component {
			el, ok := d.Lookup(id)
			if !ok {
				continue
			}
			switch el.Kind {
			case model.KindState:
				d.placeState(el)
				report.States = append(report.States, id)
			case model.KindLine:
				if d.cache[id].state == stateDirty {
					d.recompute(el.Line)
				}
			}
		}
	}

	report.Recomputed = d.pass.recomputed
	logging.Debug("Propagated changes",
		"changed", len(origins),
		"visited", report.Visited,
		"recomputed", len(report.Recomputed),
		"cycles", len(report.Cycles))
	return report
}

// RecomputeAll recomputes every line and state, upstream first. It is
// the initial geometry pass after loading.
func (d *Document) RecomputeAll() Report {
	ids := make([]string, 0, len(d.elements))
	for _, el := range d.elements {
		ids = append(ids, el.ID)
	}
	return d.Propagate(Changes{Elements: ids})
}
