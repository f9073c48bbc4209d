// Package ids owns the id to element map of a document and generates
// fresh ids that collide with nothing registered or already handed out.
package ids

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ritzau/pathlink/pkg/diag"
)

// suffixLen is the number of hex characters appended to a prefix.
const suffixLen = 5

// Registry maps element ids to values. Generated ids are reserved until
// they are registered or released, so a batch of ids generated before
// their objects exist never collides with itself.
type Registry[T any] struct {
	entries  map[string]T
	reserved map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries:  make(map[string]T),
		reserved: make(map[string]bool),
	}
}

// Register adds v under id. Registering an id that is already present is
// an ErrDuplicateID error. A reserved id is consumed.
func (r *Registry[T]) Register(id string, v T) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", diag.ErrInvalidParameter)
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("%w: %q", diag.ErrDuplicateID, id)
	}
	r.entries[id] = v
	delete(r.reserved, id)
	return nil
}

// Reserve claims an explicit id ahead of registration. It fails when the
// id is already registered or reserved.
func (r *Registry[T]) Reserve(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", diag.ErrInvalidParameter)
	}
	if r.Contains(id) {
		return fmt.Errorf("%w: %q", diag.ErrDuplicateID, id)
	}
	r.reserved[id] = true
	return nil
}

// Lookup returns the value registered under id.
func (r *Registry[T]) Lookup(id string) (T, bool) {
	v, ok := r.entries[id]
	return v, ok
}

// Contains reports whether id is registered or reserved.
func (r *Registry[T]) Contains(id string) bool {
	_, ok := r.entries[id]
	return ok || r.reserved[id]
}

// Unregister removes id. Unknown ids are ignored.
func (r *Registry[T]) Unregister(id string) {
	delete(r.entries, id)
}

// GenerateUnique returns a new id of the form prefix+hex that is neither
// registered nor previously generated and still reserved.
func (r *Registry[T]) GenerateUnique(prefix string) string {
	for {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		for n := suffixLen; n <= len(raw); n++ {
			id := prefix + raw[:n]
			if !r.Contains(id) {
				r.reserved[id] = true
				return id
			}
		}
	}
}

// Release drops the reservation of generated ids that were never
// registered.
func (r *Registry[T]) Release(ids ...string) {
	for _, id := range ids {
		delete(r.reserved, id)
	}
}

// Len returns the number of registered ids.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}

// IDs returns all registered ids in sorted order.
func (r *Registry[T]) IDs() []string {
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
