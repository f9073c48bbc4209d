package watcher

import "github.com/fsnotify/fsnotify"

// ReloadPlan describes what a debounced change means for the loaded
// document
type ReloadPlan struct {
	Reload       bool // Read the file again
	Gone         bool // The file is missing; keep the loaded document
	ChangedFiles []string
}

// PlanReload decides how to react to a change of the document file
func PlanReload(event ChangeEvent) *ReloadPlan {
	plan := &ReloadPlan{ChangedFiles: event.Paths}

	switch event.Type {
	case ChangeTypeWrite:
		plan.Reload = true
	case ChangeTypeRemove:
		// Editors that save by rename remove the file first; the create
		// that follows arrives as a write in the same burst
		plan.Gone = true
	}

	return plan
}

// classify maps an fsnotify operation to a change type. Chmod alone is
// ignored.
func classify(op fsnotify.Op) (ChangeType, bool) {
	switch {
	case op.Has(fsnotify.Write), op.Has(fsnotify.Create):
		return ChangeTypeWrite, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ChangeTypeRemove, true
	}
	return 0, false
}
