// Package dialect maps database dialect names to their catalog defaults.
package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect describes a supported database flavor.
type Dialect struct {
	// Name is the canonical dialect name.
	Name string
	// DefaultSchema is the schema used for unqualified object names.
	DefaultSchema string
}

// registry is the global dialect registry instance.
var registry = &Registry{
	dialects: make(map[string]Dialect),
	rejected: make(map[string]string),
}

// Registry resolves dialect names, including aliases, to dialects.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
	rejected map[string]string
}

// Register adds a dialect under one or more names.
// Panics if a name is already registered.
func (r *Registry) Register(d Dialect, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := r.dialects[key]; exists {
			panic(fmt.Sprintf("dialect: %q already registered", name))
		}
		r.dialects[key] = d
	}
}

// Reject marks a dialect name as recognized but unsupported. Lookups
// return the provided reason instead of the generic unknown error.
func (r *Registry) Reject(reason string, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		r.rejected[strings.ToLower(name)] = reason
	}
}

// Lookup resolves a dialect name case-insensitively.
func (r *Registry) Lookup(name string) (Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if d, ok := r.dialects[key]; ok {
		return d, nil
	}
	if reason, ok := r.rejected[key]; ok {
		return Dialect{}, fmt.Errorf("dialect %s: %s", key, reason)
	}
	return Dialect{}, fmt.Errorf("unsupported database dialect: %s (supported: %s)",
		name, strings.Join(r.names(), ", "))
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all registered dialect names sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

// Lookup resolves a dialect name against the global registry.
func Lookup(name string) (Dialect, error) {
	return registry.Lookup(name)
}

// List returns all registered dialect names.
func List() []string {
	return registry.List()
}

func init() {
	registry.Register(Dialect{Name: "postgresql", DefaultSchema: "public"},
		"postgresql", "postgres", "pg")
	registry.Register(Dialect{Name: "mysql", DefaultSchema: ""},
		"mysql", "mysql8")
	registry.Reject("not supported; sqlite schemas are dynamically typed and cannot be checked statically",
		"sqlite", "sqlite3")
}
