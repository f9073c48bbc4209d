// Package diag defines the error kinds of the routing core and the
// diagnostics list that loading and mutation accumulate instead of
// aborting.
package diag

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateID is a hard error: an explicit id was registered twice.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrDanglingReference marks a reference to an id that does not exist.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrInvalidParameter marks an argument outside its allowed domain.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrOutOfRange is the InvalidParameter case for fractional positions.
	ErrOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidParameter)
	// ErrStructuralViolation marks malformed source structure, like a line
	// with fewer than two points or a cyclic group nesting.
	ErrStructuralViolation = errors.New("structural violation")
	// ErrNotFound is returned by lookups of ids that are not registered.
	ErrNotFound = errors.New("not found")
	// ErrLinkCycle is returned when a link would make a line depend on
	// its own geometry.
	ErrLinkCycle = errors.New("link would create a cycle")
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindDanglingReference   Kind = "DanglingReference"
	KindInvalidParameter    Kind = "InvalidParameter"
	KindStructuralViolation Kind = "StructuralViolation"
)

// Err returns the sentinel error matching the kind.
func (k Kind) Err() error {
	switch k {
	case KindDanglingReference:
		return ErrDanglingReference
	case KindInvalidParameter:
		return ErrInvalidParameter
	default:
		return ErrStructuralViolation
	}
}

// Diagnostic is one non-fatal problem tied to an element.
type Diagnostic struct {
	ElementID string `json:"elementId" yaml:"elementId" msgpack:"elementId"`
	Kind      Kind   `json:"kind" yaml:"kind" msgpack:"kind"`
	Reason    string `json:"reason" yaml:"reason" msgpack:"reason"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.ElementID, d.Kind, d.Reason)
}

// Unwrap lets errors.Is match a diagnostic against its kind's sentinel.
func (d Diagnostic) Unwrap() error {
	return d.Kind.Err()
}

// List accumulates diagnostics in the order they were found.
type List []Diagnostic

// Add appends a diagnostic built from a format string.
func (l *List) Add(id string, kind Kind, format string, args ...any) {
	*l = append(*l, Diagnostic{ElementID: id, Kind: kind, Reason: fmt.Sprintf(format, args...)})
}

// ByKind groups diagnostics by kind, kinds in sorted order.
func (l List) ByKind() ([]Kind, map[Kind][]Diagnostic) {
	groups := make(map[Kind][]Diagnostic)
	for _, d := range l {
		groups[d.Kind] = append(groups[d.Kind], d)
	}
	kinds := make([]Kind, 0, len(groups))
	for k := range groups {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds, groups
}

// For returns the diagnostics recorded against one element.
func (l List) For(id string) []Diagnostic {
	var out []Diagnostic
	for _, d := range l {
		if d.ElementID == id {
			out = append(out, d)
		}
	}
	return out
}
