package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
)

// PrintReport prints a nicely formatted document report with colors:
// element counts, diagnostics grouped by kind and the routing of every
// line.
func PrintReport(w io.Writer, doc *pathway.Document, diags diag.List) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	name := doc.Name
	if name == "" {
		name = "(unnamed)"
	}
	bold.Fprintf(w, "Pathway Report - %s\n", name)
	bold.Fprintln(w, "==============================")

	counts := make(map[model.ElementKind]int)
	for _, el := range doc.Elements() {
		counts[el.Kind]++
	}
	kinds := make([]model.ElementKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fmt.Fprintf(w, "Elements: %d\n", doc.Len())
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-10s %d\n", k, counts[k])
	}
	fmt.Fprintln(w)

	// Lines
	lines := doc.Lines()
	if len(lines) > 0 {
		bold.Fprintln(w, "LINES:")
		for _, el := range lines {
			shape, err := doc.Shape(el.ID)
			if err != nil || !shape.Routable() {
				red.Fprintf(w, "  %s: not routable\n", el.ID)
				continue
			}
			cyan.Fprintf(w, "  %s", el.ID)
			fmt.Fprintf(w, " %s %s -> %s, length %.1f, %d waypoint(s)",
				shape.Topology, shape.StartSide, shape.EndSide, shape.Length(), len(shape.Waypoints))
			if n := len(el.Line.Anchors); n > 0 {
				fmt.Fprintf(w, ", %d anchor(s)", n)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	// Diagnostics grouped by kind
	if len(diags) > 0 {
		yellow.Fprintf(w, "DIAGNOSTICS: %d\n", len(diags))
		order, groups := diags.ByKind()
		for _, k := range order {
			red.Fprintf(w, "  %s (%d)\n", k, len(groups[k]))
			for _, d := range groups[k] {
				fmt.Fprintf(w, "    %s: %s\n", d.ElementID, d.Reason)
			}
		}
		fmt.Fprintln(w)
	}

	// Summary
	if len(diags) == 0 {
		green.Fprintln(w, "✓ All references resolved")
	} else {
		yellow.Fprintf(w, "Summary: %d element(s), %d line(s), %d diagnostic(s)\n", doc.Len(), len(lines), len(diags))
	}
}
