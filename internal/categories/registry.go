// Package categories holds the set of cash transaction categories.
package categories

import (
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Registry is an ordered set of category names. Names are compared
// case-sensitively. model.Uncategorized is always present.
type Registry struct {
	names []string
}

// NewRegistry creates a Registry from names, dropping blanks and duplicates
// and adding model.Uncategorized when missing.
func NewRegistry(names []string) *Registry {
	r := &Registry{}
	for _, n := range names {
		r.Add(n)
	}
	if !r.Exists(model.Uncategorized) {
		r.names = append([]string{model.Uncategorized}, r.names...)
	}
	return r
}

// Load merges saved names with every category referenced by txns.
func Load(saved []string, txns []model.CashTransaction) *Registry {
	r := NewRegistry(saved)
	for _, t := range txns {
		r.Add(t.Category)
	}
	return r
}

// All returns the names in registry order.
func (r *Registry) All() []string {
	return append([]string(nil), r.names...)
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	return r.index(name) >= 0
}

// Add registers name. Blank or already present names are ignored.
func (r *Registry) Add(name string) bool {
	if strings.TrimSpace(name) == "" || r.Exists(name) {
		return false
	}
	r.names = append(r.names, name)
	return true
}

// Rename replaces from with to in place. It refuses a blank or existing
// target, an unknown source, and renaming model.Uncategorized.
func (r *Registry) Rename(from, to string) bool {
	if strings.TrimSpace(to) == "" || to == from || r.Exists(to) || from == model.Uncategorized {
		return false
	}
	i := r.index(from)
	if i < 0 {
		return false
	}
	r.names[i] = to
	return true
}

// Delete removes name. It refuses model.Uncategorized, unknown names and
// the last remaining category.
func (r *Registry) Delete(name string) bool {
	if name == model.Uncategorized || len(r.names) <= 1 {
		return false
	}
	i := r.index(name)
	if i < 0 {
		return false
	}
	r.names = append(r.names[:i], r.names[i+1:]...)
	return true
}

func (r *Registry) index(name string) int {
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Relabel returns a copy of txns with every category from changed to to.
func Relabel(txns []model.CashTransaction, from, to string) []model.CashTransaction {
	out := make([]model.CashTransaction, len(txns))
	for i, t := range txns {
		if t.Category == from {
			t.Category = to
		}
		out[i] = t
	}
	return out
}
