package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	doc := pathway.New(pathway.DefaultOptions())
	doc.Name = "glycolysis"
	if _, _, err := doc.AddElement(model.KindDataNode, "A", geom.Rect{Center: geom.Pt(0, 0), Width: 40, Height: 40}); err != nil {
		t.Fatalf("Failed to add A: %v", err)
	}
	if _, _, err := doc.AddLine("L", model.TopologyStraight, geom.Pt(20, 0), geom.Pt(120, 0)); err != nil {
		t.Fatalf("Failed to add L: %v", err)
	}
	if _, err := doc.Link("L", 0, "A"); err != nil {
		t.Fatalf("Failed to link L: %v", err)
	}
	doc.RecomputeAll()

	var diags diag.List
	diags.Add("M", diag.KindDanglingReference, "point 1 references missing X")
	diags.Add("N", diag.KindStructuralViolation, "line has 1 point")

	var buf bytes.Buffer
	PrintReport(&buf, doc, diags)
	out := buf.String()

	for _, want := range []string{
		"Pathway Report - glycolysis",
		"Elements: 2",
		"DataNode",
		"L Straight east -> east, length 100.0, 0 waypoint(s)",
		"DIAGNOSTICS: 2",
		"DanglingReference (1)",
		"M: point 1 references missing X",
		"StructuralViolation (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintReportClean(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintReport(&buf, pathway.New(pathway.DefaultOptions()), nil)
	out := buf.String()

	if !strings.Contains(out, "(unnamed)") {
		t.Errorf("Expected unnamed header, got:\n%s", out)
	}
	if !strings.Contains(out, "All references resolved") {
		t.Errorf("Expected clean summary, got:\n%s", out)
	}
	if strings.Contains(out, "LINES:") {
		t.Errorf("Expected no line section, got:\n%s", out)
	}
}
