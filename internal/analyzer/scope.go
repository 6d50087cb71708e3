package analyzer

import (
	"strings"

	"github.com/electwix/sqlguard/internal/catalog"
)

// bindingKind tells what a FROM-clause name is bound to.
type bindingKind int

const (
	bindTable bindingKind = iota
	bindView
	bindCTE
	bindDerived
)

// binding is one table-like name visible in a scope. For views, CTEs,
// and derived tables only column names are known; base tables carry the
// full catalog definition.
type binding struct {
	label   string
	kind    bindingKind
	name    catalog.QualifiedName
	table   *catalog.Table
	columns []string
	// opaque marks a binding whose column set is unknown, such as a
	// derived table projecting *. Column checks pass it silently.
	opaque bool
}

// hasColumn reports whether the binding exposes the named column.
func (b *binding) hasColumn(name string) bool {
	if b.kind == bindTable {
		_, ok := b.table.Column(name)
		return ok
	}
	for _, col := range b.columns {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}

// scope is one level of FROM-clause visibility. Bindings keep their
// registration order so ambiguity reports are deterministic.
type scope struct {
	bindings []*binding
}

func (s *scope) add(b *binding) {
	s.bindings = append(s.bindings, b)
}

// lookup finds a binding by alias or table name.
func (s *scope) lookup(label string) (*binding, bool) {
	for _, b := range s.bindings {
		if strings.EqualFold(b.label, label) {
			return b, true
		}
	}
	return nil, false
}

// cteDef is a CTE registered by a WITH clause; only its output column
// names are tracked.
type cteDef struct {
	name    string
	columns []string
}
