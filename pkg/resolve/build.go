package resolve

import (
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
)

// Build runs all passes over a raw document and computes the initial
// geometry. The error is non-nil only for hard failures; everything else
// is in the returned diagnostics.
func Build(raw *model.RawDocument, opts pathway.Options) (*pathway.Document, diag.List, error) {
	doc := pathway.New(opts)
	doc.Name = raw.Name
	r := New(doc)

	if err := r.Register(raw.Elements...); err != nil {
		return nil, r.Diagnostics(), err
	}
	if err := r.ResolveGroups(); err != nil {
		return nil, r.Diagnostics(), err
	}
	if err := r.ResolveLines(); err != nil {
		return nil, r.Diagnostics(), err
	}
	if err := r.ResolveLinks(); err != nil {
		return nil, r.Diagnostics(), err
	}

	report := doc.RecomputeAll()
	logging.Info("Resolved document",
		"name", raw.Name,
		"elements", doc.Len(),
		"lines", len(report.Recomputed),
		"diagnostics", len(r.Diagnostics()),
		"cycles", len(report.Cycles))
	return doc, r.Diagnostics(), nil
}
