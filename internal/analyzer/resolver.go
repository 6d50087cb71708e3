package analyzer

import (
	"maps"
	"strconv"
	"strings"

	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/sqlparse"
)

// NameResolver validates table and column references in one statement
// against a catalog. It keeps a lexical scope stack so subqueries see
// their enclosing FROM clauses, and records every table-like name it
// registers for the type checker to reuse.
type NameResolver struct {
	catalog *catalog.Catalog
	scopes  []*scope
	ctes    map[string]*cteDef
	diags   []diag.Diagnostic

	// result is the outermost statement scope, kept after resolution
	// for TypeResolver.InheritScope.
	result *scope
}

// NewNameResolver creates a resolver bound to a catalog. A resolver
// holds per-statement state; use a fresh one for each statement.
func NewNameResolver(cat *catalog.Catalog) *NameResolver {
	return &NameResolver{
		catalog: cat,
		ctes:    make(map[string]*cteDef),
	}
}

// Diagnostics returns everything collected so far.
func (r *NameResolver) Diagnostics() []diag.Diagnostic {
	return r.diags
}

// Resolve walks one statement.
func (r *NameResolver) Resolve(stmt sqlparse.Statement) {
	switch s := stmt.(type) {
	case *sqlparse.SelectStmt:
		r.result = r.resolveSelect(s)
	case *sqlparse.InsertStmt:
		r.result = r.resolveInsert(s)
	case *sqlparse.UpdateStmt:
		r.result = r.resolveUpdate(s)
	case *sqlparse.DeleteStmt:
		r.result = r.resolveDelete(s)
	default:
		// DDL statements carry no references to resolve here.
		r.result = &scope{}
	}
}

func (r *NameResolver) push() *scope {
	sc := &scope{}
	r.scopes = append(r.scopes, sc)
	return sc
}

func (r *NameResolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *NameResolver) report(d diag.Diagnostic) {
	r.diags = append(r.diags, d)
}

// resolveSelect resolves a full SELECT including its WITH clause and
// any compound (UNION etc.) branches, returning the core scope.
func (r *NameResolver) resolveSelect(sel *sqlparse.SelectStmt) *scope {
	if sel.With != nil {
		saved := maps.Clone(r.ctes)
		r.resolveWith(sel.With)
		defer func() { r.ctes = saved }()
	}

	sc := r.push()
	for _, item := range sel.From {
		r.resolveFromItem(item, sc)
	}
	for _, item := range sel.Items {
		r.resolveSelectItem(item, sc)
	}
	if sel.Where != nil {
		r.resolveExpr(sel.Where)
	}
	for _, g := range sel.GroupBy {
		r.resolveExpr(g)
	}
	if sel.Having != nil {
		r.resolveExpr(sel.Having)
	}
	aliases := projectionAliases(sel)
	for _, o := range sel.OrderBy {
		if ref, ok := o.Expr.(*sqlparse.ColumnRef); ok && !ref.Star &&
			len(ref.Qualifier) == 0 && aliases[strings.ToLower(ref.Name.Name)] {
			continue
		}
		r.resolveExpr(o.Expr)
	}
	if sel.Limit != nil {
		r.resolveExpr(sel.Limit)
	}
	if sel.Offset != nil {
		r.resolveExpr(sel.Offset)
	}
	r.pop()

	for _, c := range sel.Compound {
		r.resolveSelect(c.Select)
	}
	return sc
}

// resolveWith validates each CTE body and registers its columns for
// the statements that follow. A recursive CTE is visible to its own
// body; its columns come from the explicit list when one is written
// and are inferred from the body's first projection otherwise.
func (r *NameResolver) resolveWith(with *sqlparse.WithClause) {
	for _, cte := range with.CTEs {
		def := &cteDef{name: cte.Name.Name}
		for _, col := range cte.Columns {
			def.columns = append(def.columns, col.Name)
		}
		if len(def.columns) == 0 {
			def.columns = inferProjectionColumns(cte.Select)
		}

		if with.Recursive {
			r.ctes[strings.ToLower(def.name)] = def
		}
		r.resolveSelect(cte.Select)
		r.ctes[strings.ToLower(def.name)] = def
	}
}

// projectionAliases collects the SELECT-item aliases, which an
// unqualified ORDER BY name may refer to in addition to the scope.
func projectionAliases(sel *sqlparse.SelectStmt) map[string]bool {
	aliases := make(map[string]bool)
	for _, item := range sel.Items {
		if item.Alias != "" {
			aliases[strings.ToLower(item.Alias)] = true
		}
	}
	return aliases
}

// inferProjectionColumns derives output column names from a projection.
// Wildcard items contribute nothing, which leaves the column list
// incomplete; hasStarItem covers that case.
func inferProjectionColumns(sel *sqlparse.SelectStmt) []string {
	var columns []string
	for i, item := range sel.Items {
		if item.Alias != "" {
			columns = append(columns, item.Alias)
			continue
		}
		switch expr := item.Expr.(type) {
		case *sqlparse.ColumnRef:
			if !expr.Star {
				columns = append(columns, expr.Name.Name)
			}
		case *sqlparse.StarExpr:
		default:
			columns = append(columns, "?column?"+strconv.Itoa(i+1))
		}
	}
	return columns
}

// hasStarItem reports whether the projection contains * or t.*, in
// which case the full output column set is unknown.
func hasStarItem(sel *sqlparse.SelectStmt) bool {
	for _, item := range sel.Items {
		switch expr := item.Expr.(type) {
		case *sqlparse.StarExpr:
			return true
		case *sqlparse.ColumnRef:
			if expr.Star {
				return true
			}
		}
	}
	return false
}

func (r *NameResolver) resolveFromItem(item sqlparse.TableExpr, sc *scope) {
	switch t := item.(type) {
	case *sqlparse.TableRef:
		r.registerTable(t, sc)
	case *sqlparse.DerivedTable:
		r.registerDerived(t, sc)
	case *sqlparse.FunctionSource:
		r.registerFunction(t, sc)
	case *sqlparse.Join:
		r.resolveFromItem(t.Left, sc)
		r.resolveFromItem(t.Right, sc)
		if t.On != nil {
			r.resolveExpr(t.On)
		}
		for _, col := range t.Using {
			r.resolveUnqualified(col)
		}
	}
}

// registerTable binds a named FROM item. Plain names resolve against
// CTEs first, then views, then base tables.
func (r *NameResolver) registerTable(t *sqlparse.TableRef, sc *scope) {
	qn := catalog.QualifiedName{Schema: t.Name.Schema(), Name: t.Name.Name()}
	label := t.Alias
	if label == "" {
		label = qn.Name
	}

	if cte, ok := r.ctes[strings.ToLower(qn.Name)]; ok {
		sc.add(&binding{
			label:   label,
			kind:    bindCTE,
			name:    catalog.QualifiedName{Name: cte.name},
			columns: cte.columns,
			opaque:  len(cte.columns) == 0,
		})
		return
	}
	if view, ok := r.catalog.View(qn); ok {
		sc.add(&binding{
			label:   label,
			kind:    bindView,
			name:    qn,
			columns: view.Columns,
		})
		return
	}
	if table, ok := r.catalog.Table(qn); ok {
		sc.add(&binding{
			label: label,
			kind:  bindTable,
			name:  qn,
			table: table,
		})
		return
	}

	r.report(diag.New(diag.KindTableNotFound).
		Messagef("Table '%s' not found", qn).
		Span(t.Name.LastToken().Span()).
		Help("Check that the table exists in your schema definition").
		Build())
}

// registerDerived resolves a FROM subquery and binds its alias. A
// LATERAL subquery sees the FROM items registered before it; an
// ordinary one resolves in isolation and must not see any outer table.
func (r *NameResolver) registerDerived(d *sqlparse.DerivedTable, sc *scope) {
	if d.Lateral {
		r.resolveSelect(d.Select)
	} else {
		saved := r.scopes
		r.scopes = nil
		r.resolveSelect(d.Select)
		r.scopes = saved
	}

	var columns []string
	if len(d.Columns) > 0 {
		for _, col := range d.Columns {
			columns = append(columns, col.Name)
		}
	} else {
		columns = inferProjectionColumns(d.Select)
	}
	sc.add(&binding{
		label:   d.Alias,
		kind:    bindDerived,
		name:    catalog.QualifiedName{Name: d.Alias},
		columns: columns,
		opaque:  len(d.Columns) == 0 && hasStarItem(d.Select),
	})
}

// registerFunction binds a set-returning function in FROM. Function
// return shapes are not inferred, so the binding is opaque unless the
// alias declares a column list.
func (r *NameResolver) registerFunction(f *sqlparse.FunctionSource, sc *scope) {
	for _, arg := range f.Args {
		r.resolveExpr(arg)
	}

	label := f.Alias
	if label == "" {
		label = f.Name.Name()
	}
	var columns []string
	for _, col := range f.Columns {
		columns = append(columns, col.Name)
	}
	sc.add(&binding{
		label:   label,
		kind:    bindDerived,
		name:    catalog.QualifiedName{Name: label},
		columns: columns,
		opaque:  len(columns) == 0,
	})
}

func (r *NameResolver) resolveSelectItem(item sqlparse.SelectItem, sc *scope) {
	switch expr := item.Expr.(type) {
	case *sqlparse.StarExpr:
		if len(sc.bindings) == 0 {
			r.report(diag.New(diag.KindTableNotFound).
				Message("SELECT * requires at least one table in FROM clause").
				Span(expr.Tok.Span()).
				Build())
		}
	case *sqlparse.ColumnRef:
		if expr.Star {
			r.resolveQualifiedStar(expr)
			return
		}
		r.resolveExpr(item.Expr)
	default:
		r.resolveExpr(item.Expr)
	}
}

// resolveQualifiedStar checks the qualifier of a t.* projection.
func (r *NameResolver) resolveQualifiedStar(ref *sqlparse.ColumnRef) {
	if len(ref.Qualifier) == 0 {
		return
	}
	q := ref.Qualifier[len(ref.Qualifier)-1]
	if _, ok := r.lookupBinding(q.Name); !ok {
		r.report(diag.New(diag.KindTableNotFound).
			Messagef("Table or alias '%s' not found in FROM clause", q.Name).
			Span(q.Tok.Span()).
			Build())
	}
}

// lookupBinding searches the scope stack innermost first.
func (r *NameResolver) lookupBinding(label string) (*binding, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i].lookup(label); ok {
			return b, true
		}
	}
	return nil, false
}

func (r *NameResolver) resolveExpr(expr sqlparse.Expr) {
	switch e := expr.(type) {
	case *sqlparse.ColumnRef:
		if e.Star {
			r.resolveQualifiedStar(e)
			return
		}
		r.resolveColumnRef(e)
	case *sqlparse.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *sqlparse.UnaryExpr:
		r.resolveExpr(e.Operand)
	case *sqlparse.FuncCall:
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *sqlparse.CastExpr:
		r.resolveExpr(e.Operand)
	case *sqlparse.InExpr:
		r.resolveExpr(e.Operand)
		for _, item := range e.List {
			r.resolveExpr(item)
		}
		if e.Select != nil {
			r.resolveSelect(e.Select)
		}
	case *sqlparse.BetweenExpr:
		r.resolveExpr(e.Operand)
		r.resolveExpr(e.Low)
		r.resolveExpr(e.High)
	case *sqlparse.CaseExpr:
		if e.Operand != nil {
			r.resolveExpr(e.Operand)
		}
		for _, when := range e.Whens {
			r.resolveExpr(when.Cond)
			r.resolveExpr(when.Result)
		}
		if e.Else != nil {
			r.resolveExpr(e.Else)
		}
	case *sqlparse.IsNullExpr:
		r.resolveExpr(e.Operand)
	case *sqlparse.SubqueryExpr:
		r.resolveSelect(e.Select)
	case *sqlparse.ExistsExpr:
		r.resolveSelect(e.Select)
	}
	// literals and parameters need no resolution
}

func (r *NameResolver) resolveColumnRef(ref *sqlparse.ColumnRef) {
	if len(ref.Qualifier) > 0 {
		q := ref.Qualifier[len(ref.Qualifier)-1]
		b, ok := r.lookupBinding(q.Name)
		if !ok {
			r.report(diag.New(diag.KindTableNotFound).
				Messagef("Table or alias '%s' not found in FROM clause", q.Name).
				Span(q.Tok.Span()).
				Build())
			return
		}
		r.checkBindingColumn(b, ref.Name)
		return
	}
	r.resolveUnqualified(ref.Name)
}

// checkBindingColumn verifies a qualified column against its binding.
func (r *NameResolver) checkBindingColumn(b *binding, col sqlparse.Ident) {
	if b.opaque || b.hasColumn(col.Name) {
		return
	}
	switch b.kind {
	case bindCTE:
		r.report(diag.New(diag.KindColumnNotFound).
			Messagef("Column '%s' not found in CTE '%s'", col.Name, b.name).
			Span(col.Tok.Span()).
			Build())
	case bindView:
		r.report(diag.New(diag.KindColumnNotFound).
			Messagef("Column '%s' not found in view '%s'", col.Name, b.name).
			Span(col.Tok.Span()).
			Build())
	default:
		d := diag.New(diag.KindColumnNotFound).
			Messagef("Column '%s' not found in table '%s'", col.Name, b.name).
			Span(col.Tok.Span())
		if b.kind == bindTable {
			if suggestion := similarColumn(b.table, col.Name); suggestion != "" {
				d.Helpf("Did you mean '%s'?", suggestion)
			}
		}
		r.report(d.Build())
	}
}

// resolveUnqualified searches the scope stack for a bare column name.
// Two or more matches in one scope is ambiguous; opaque bindings
// (derived tables of unknown shape) suppress not-found reports but
// never contribute to ambiguity.
func (r *NameResolver) resolveUnqualified(col sqlparse.Ident) {
	sawOpaque := false
	for i := len(r.scopes) - 1; i >= 0; i-- {
		var found []*binding
		for _, b := range r.scopes[i].bindings {
			if b.opaque {
				sawOpaque = true
				continue
			}
			if b.hasColumn(col.Name) {
				found = append(found, b)
			}
		}
		switch {
		case len(found) == 1:
			return
		case len(found) > 1:
			labels := make([]string, len(found))
			for j, b := range found {
				labels[j] = b.label
			}
			r.report(diag.New(diag.KindAmbiguousColumn).
				Messagef("Column '%s' is ambiguous (found in tables: %s)", col.Name, strings.Join(labels, ", ")).
				Span(col.Tok.Span()).
				Helpf("Qualify the column with a table name: %s.%s", labels[0], col.Name).
				Build())
			return
		}
	}
	if sawOpaque {
		return
	}

	d := diag.New(diag.KindColumnNotFound).
		Messagef("Column '%s' not found", col.Name).
		Span(col.Tok.Span())
	if suggestion := r.suggestAcrossScopes(col.Name); suggestion != "" {
		d.Helpf("Did you mean '%s'?", suggestion)
	}
	r.report(d.Build())
}

// suggestAcrossScopes returns the first close column name from any base
// table in scope, innermost scope first.
func (r *NameResolver) suggestAcrossScopes(name string) string {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		for _, b := range r.scopes[i].bindings {
			if b.kind != bindTable {
				continue
			}
			if s := similarColumn(b.table, name); s != "" {
				return s
			}
		}
	}
	return ""
}

// resolveInsert checks the target table, the column list, and the arity
// of each VALUES row. Value expressions are resolved for nested
// subqueries but their types are not checked.
func (r *NameResolver) resolveInsert(ins *sqlparse.InsertStmt) *scope {
	qn := catalog.QualifiedName{Schema: ins.Table.Schema(), Name: ins.Table.Name()}
	table, ok := r.catalog.Table(qn)
	if !ok {
		r.report(diag.New(diag.KindTableNotFound).
			Messagef("Table '%s' not found", qn).
			Span(ins.Table.LastToken().Span()).
			Help("Check that the table exists in your schema definition").
			Build())
		return &scope{}
	}

	for _, col := range ins.Columns {
		if _, ok := table.Column(col.Name); ok {
			continue
		}
		d := diag.New(diag.KindColumnNotFound).
			Messagef("Column '%s' not found in table '%s'", col.Name, qn).
			Span(col.Tok.Span())
		if suggestion := similarColumn(table, col.Name); suggestion != "" {
			d.Helpf("Did you mean '%s'?", suggestion)
		}
		r.report(d.Build())
	}

	expected := len(ins.Columns)
	if expected == 0 {
		expected = len(table.Columns)
	}
	r.push()
	for i, row := range ins.Rows {
		if len(row) != expected {
			d := diag.New(diag.KindColumnCountMismatch).
				Messagef("INSERT has %d value(s) but %d column(s) were specified", len(row), expected)
			if len(ins.Columns) == 0 {
				d.Helpf("Table '%s' has %d columns. Specify columns explicitly or provide %d values",
					qn, expected, expected)
			} else {
				d.Helpf("Provide %d value(s) to match the column list", expected)
			}
			if i < len(ins.RowTokens) {
				d.Span(ins.RowTokens[i].Span())
			}
			r.report(d.Build())
		}
		for _, expr := range row {
			r.resolveExpr(expr)
		}
	}
	r.pop()

	if ins.Select != nil {
		r.resolveSelect(ins.Select)
	}
	return &scope{}
}

// resolveUpdate validates SET targets against the table and resolves
// value and WHERE expressions with the table in scope.
func (r *NameResolver) resolveUpdate(upd *sqlparse.UpdateStmt) *scope {
	sc := r.push()

	qn := catalog.QualifiedName{Schema: upd.Table.Schema(), Name: upd.Table.Name()}
	table, ok := r.catalog.Table(qn)
	if ok {
		label := upd.Alias
		if label == "" {
			label = qn.Name
		}
		sc.add(&binding{label: label, kind: bindTable, name: qn, table: table})
	} else {
		r.report(diag.New(diag.KindTableNotFound).
			Messagef("Table '%s' not found", qn).
			Span(upd.Table.LastToken().Span()).
			Help("Check that the table exists in your schema definition").
			Build())
	}

	for _, item := range upd.From {
		r.resolveFromItem(item, sc)
	}

	for _, assign := range upd.Set {
		if table != nil {
			if _, ok := table.Column(assign.Column.Name); !ok {
				d := diag.New(diag.KindColumnNotFound).
					Messagef("Column '%s' not found in table '%s'", assign.Column.Name, qn).
					Span(assign.Column.Tok.Span())
				if suggestion := similarColumn(table, assign.Column.Name); suggestion != "" {
					d.Helpf("Did you mean '%s'?", suggestion)
				}
				r.report(d.Build())
			}
		}
		r.resolveExpr(assign.Value)
	}

	if upd.Where != nil {
		r.resolveExpr(upd.Where)
	}
	r.pop()
	return sc
}

func (r *NameResolver) resolveDelete(del *sqlparse.DeleteStmt) *scope {
	sc := r.push()

	qn := catalog.QualifiedName{Schema: del.Table.Schema(), Name: del.Table.Name()}
	if table, ok := r.catalog.Table(qn); ok {
		label := del.Alias
		if label == "" {
			label = qn.Name
		}
		sc.add(&binding{label: label, kind: bindTable, name: qn, table: table})
	} else {
		r.report(diag.New(diag.KindTableNotFound).
			Messagef("Table '%s' not found", qn).
			Span(del.Table.LastToken().Span()).
			Help("Check that the table exists in your schema definition").
			Build())
	}

	for _, item := range del.Using {
		r.resolveFromItem(item, sc)
	}

	if del.Where != nil {
		r.resolveExpr(del.Where)
	}
	r.pop()
	return sc
}
