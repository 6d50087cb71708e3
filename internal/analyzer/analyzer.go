// Package analyzer validates SQL statements against a catalog. Name
// resolution runs first and builds a table scope; type checking reuses
// that scope for a second pass. Each statement gets fresh resolvers, so
// one analyzer can serve many inputs and a single catalog can be shared
// across goroutines analyzing different files.
package analyzer

import (
	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/sqlparse"
)

// Analyzer validates queries against a read-only catalog.
type Analyzer struct {
	Catalog *catalog.Catalog
}

// New creates an analyzer over a fully built catalog.
func New(cat *catalog.Catalog) *Analyzer {
	return &Analyzer{Catalog: cat}
}

// Analyze parses and checks every statement in sql, returning the
// collected diagnostics sorted by position.
func (a *Analyzer) Analyze(sql string) *diag.Collection {
	return a.AnalyzeFile("", sql)
}

// AnalyzeFile is Analyze with a path stamped onto each diagnostic.
func (a *Analyzer) AnalyzeFile(path, sql string) *diag.Collection {
	col := diag.NewCollection()

	script, err := sqlparse.ParseScript(sql)
	if err != nil {
		span := diag.NewSpan(0, min(len(sql), 50), 1, 1)
		col.Add(diag.New(diag.KindParseError).
			Messagef("Parse error: %v", err).
			Span(span).
			Path(path).
			Build())
		return col
	}

	for _, parsed := range script.Statements {
		if parsed.Err != nil {
			col.Add(diag.New(diag.KindParseError).
				Messagef("Parse error: %s", parsed.Err.Message).
				Span(parsed.Err.Span()).
				Path(path).
				Build())
			continue
		}

		resolver := NewNameResolver(a.Catalog)
		resolver.Resolve(parsed.Stmt)

		checker := NewTypeResolver(a.Catalog)
		checker.InheritScope(resolver)
		checker.Check(parsed.Stmt)

		for _, d := range resolver.Diagnostics() {
			d.Path = path
			col.Add(d)
		}
		for _, d := range checker.Diagnostics() {
			d.Path = path
			col.Add(d)
		}
	}

	col.SortBySpan()
	return col
}
